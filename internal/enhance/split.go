package enhance

import "strings"

// Default chunking parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 0
	chunkSeparator      = "\n\n"
)

// SplitText splits text on blank lines and greedily merges the pieces
// into chunks of at most size characters. A single piece longer than
// size becomes a chunk on its own. overlap is the number of trailing
// characters of the previous chunk repeated at the start of the next.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var pieces []string
	for _, p := range strings.Split(text, chunkSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			pieces = append(pieces, p)
		}
	}

	var chunks []string
	var cur []string
	curLen := 0
	sepLen := len([]rune(chunkSeparator))

	flush := func() {
		if len(cur) == 0 {
			return
		}
		chunk := strings.Join(cur, chunkSeparator)
		chunks = append(chunks, chunk)
		cur, curLen = nil, 0
		if overlap > 0 {
			r := []rune(chunk)
			if len(r) > overlap {
				tail := string(r[len(r)-overlap:])
				cur, curLen = []string{tail}, overlap
			}
		}
	}

	for _, p := range pieces {
		n := len([]rune(p))
		extra := n
		if len(cur) > 0 {
			extra += sepLen
		}
		if curLen+extra > size && len(cur) > 0 {
			flush()
			extra = n
			if len(cur) > 0 {
				extra += sepLen
			}
		}
		cur = append(cur, p)
		curLen += extra
	}
	if len(cur) > 0 && (len(chunks) == 0 || overlap == 0 || curLen > overlap) {
		chunks = append(chunks, strings.Join(cur, chunkSeparator))
	}
	return chunks
}
