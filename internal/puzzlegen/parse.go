package puzzlegen

import "strings"

const (
	prefixQuestion = "Question:"
	prefixAnswer   = "Answer:"
	prefixHint     = "Hint:"
)

// ParseContent extracts the question, answer and hint from completion
// text. Each field comes from the first line starting with its
// case-sensitive prefix, with the prefix removed and whitespace trimmed.
// Missing fields are left empty.
func ParseContent(text string) Content {
	var c Content
	var haveQ, haveA, haveH bool

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case !haveQ && strings.HasPrefix(line, prefixQuestion):
			c.Question = strings.TrimSpace(strings.TrimPrefix(line, prefixQuestion))
			haveQ = true
		case !haveA && strings.HasPrefix(line, prefixAnswer):
			c.Answer = strings.TrimSpace(strings.TrimPrefix(line, prefixAnswer))
			haveA = true
		case !haveH && strings.HasPrefix(line, prefixHint):
			c.Hint = strings.TrimSpace(strings.TrimPrefix(line, prefixHint))
			haveH = true
		}
	}
	return c
}
