package extract

import "strings"

// Block is a span of the cleaned text holding one question.
type Block struct {
	Offset int
	Text   string
}

// SplitBlocks cuts text before every occurrence of marker. The first
// block starts at offset 0 and may not begin with the marker; every other
// block does. Concatenating the block texts gives back text.
func SplitBlocks(text, marker string) []Block {
	var blocks []Block
	start := 0
	for {
		next := -1
		if marker != "" && start+1 <= len(text) {
			if i := strings.Index(text[start+1:], marker); i >= 0 {
				next = start + 1 + i
			}
		}
		if next < 0 {
			return append(blocks, Block{Offset: start, Text: text[start:]})
		}
		blocks = append(blocks, Block{Offset: start, Text: text[start:next]})
		start = next
	}
}
