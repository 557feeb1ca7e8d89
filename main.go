package main

import (
	"os"

	"github.com/abhisek/escaperoom/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
