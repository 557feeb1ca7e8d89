package service

// Config holds game-flow settings.
type Config struct {
	// InitialPuzzles caps the puzzles generated when a game is created.
	InitialPuzzles int `mapstructure:"initial_puzzles"`

	// EnhanceK is the number of passages requested from the enhancer.
	EnhanceK int `mapstructure:"enhance_k"`

	// EnhanceSource is the base directory, URL or s3:// prefix holding
	// per-theme source texts. Empty disables enhancement.
	EnhanceSource string `mapstructure:"enhance_source"`

	// MinPasswordLen is the shortest accepted password.
	MinPasswordLen int `mapstructure:"min_password_len"`
}

// DefaultConfig returns the default game-flow settings.
func DefaultConfig() Config {
	return Config{
		InitialPuzzles: 4,
		EnhanceK:       4,
		MinPasswordLen: 8,
	}
}

func (c Config) initialPuzzles() int {
	if c.InitialPuzzles < 1 {
		return 1
	}
	return c.InitialPuzzles
}
