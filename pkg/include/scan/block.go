package scan

var blockScanner = NewScanner(nil, InlineCode, FenceOpen, FenceClose)

// MatchBlock finds the fence closing the block whose opener ends at offset.
// Nested fences are counted and inline code spans are skipped, so a "}}}"
// inside backticks never closes the block. The second result is false when
// the text ends before the block is closed.
func MatchBlock(text string, offset int) (Match, bool) {
	depth := 1
	for {
		m, ok := blockScanner.Next(text, offset)
		if !ok {
			return Match{}, false
		}
		switch m.Kind {
		case FenceOpen:
			depth++
		case FenceClose:
			depth--
			if depth == 0 {
				return m, true
			}
		}
		offset = m.End
	}
}
