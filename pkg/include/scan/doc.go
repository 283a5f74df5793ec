// Package scan finds directive and delimiter boundaries in wiki markup.
//
// The package holds the pure helpers used by the include engine: a delimiter
// scanner returning tagged matches, a block matcher that pairs fences while
// honoring nesting, and a parser for the processor line at the head of a
// fenced block. Nothing here keeps state between calls and nothing imports
// the include package, so the helpers can be tested on their own.
//
// # Matches
//
// Every scanner hit is reported as a Match whose Kind tells which delimiter
// was found:
//
//   - InlineCode: a single backtick span such as `[[Include(X)]]`
//   - FenceOpen and FenceClose: the triple-brace block markers
//   - DirectiveCall: a bracketed call such as [[Include(Page, text/plain)]]
//   - TemplateExpr: a double-brace expression, only used for pre-scanning
//
// When two delimiters start at the same offset the matcher registered first
// wins, so the order of kinds passed to NewScanner is significant.
//
// Example of pairing a fence:
//
//	text := "{{{\n{{{ nested }}}\n}}} tail"
//	closer, ok := scan.MatchBlock(text, 3)
//	// ok == true, text[closer.End:] == " tail"
package scan
