package scan

import "regexp"

var shebangPattern = regexp.MustCompile(`(?s)\A\s*#!(\w+)([^\r\n]*)\r?\n\r?(.*)\z`)

// Shebang is the processor line heading a fenced block body.
type Shebang struct {
	Name string
	Args string
	Body string
	// BodyOffset is the byte offset of Body within the text given to
	// ParseShebang.
	BodyOffset int
}

// ParseShebang reads the processor line from the inner text of a fenced
// block. Leading whitespace and blank lines are allowed before "#!"; the
// line must be terminated by a newline.
func ParseShebang(inner string) (Shebang, bool) {
	loc := shebangPattern.FindStringSubmatchIndex(inner)
	if loc == nil {
		return Shebang{}, false
	}
	return Shebang{
		Name:       inner[loc[2]:loc[3]],
		Args:       inner[loc[4]:loc[5]],
		Body:       inner[loc[6]:loc[7]],
		BodyOffset: loc[6],
	}, true
}
