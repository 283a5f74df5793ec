package mustache

import "strings"

type tokenType int

const (
	tText tokenType = iota
	tVar
	tSectionStart
	tInvertedStart
	tSectionEnd
	tPartial
	tComment
	tSetDelims
)

type token struct {
	typ   tokenType
	val   string
	start int
	end   int
}

type delimiters struct {
	open  string
	close string
}

var defaultDelimiters = delimiters{open: "{{", close: "}}"}

// Template is a parsed template. It is immutable and safe to share.
type Template struct {
	source string
	root   []node
}

// Source returns the text the template was parsed from.
func (t *Template) Source() string {
	return t.source
}

// Parse parses text with the default delimiters. Malformed tags become
// literal text, so Parse never fails.
func Parse(text string) *Template {
	return &Template{source: text, root: parseTokens(text, lex(text, defaultDelimiters))}
}

func lex(input string, delims delimiters) []token {
	var tokens []token
	open, close := delims.open, delims.close
	text := func(start, end int) {
		if end <= start {
			return
		}
		if n := len(tokens); n > 0 && tokens[n-1].typ == tText && tokens[n-1].end == start {
			tokens[n-1].val += input[start:end]
			tokens[n-1].end = end
			return
		}
		tokens = append(tokens, token{typ: tText, val: input[start:end], start: start, end: end})
	}

	i := 0
	for i < len(input) {
		idx := strings.Index(input[i:], open)
		if idx < 0 {
			text(i, len(input))
			break
		}
		idx += i
		text(i, idx)
		i = idx

		if open == "{{" && strings.HasPrefix(input[i:], "{{{") {
			end := strings.Index(input[i+3:], "}}}")
			if end < 0 {
				text(i, len(input))
				break
			}
			end += i + 3
			name := strings.TrimSpace(input[i+3 : end])
			if name == "" {
				text(i, end+3)
			} else {
				tokens = append(tokens, token{typ: tVar, val: name, start: i, end: end + 3})
			}
			i = end + 3
			continue
		}

		end := strings.Index(input[i+len(open):], close)
		if end < 0 {
			text(i, len(input))
			break
		}
		end += i + len(open)
		content := strings.TrimSpace(input[i+len(open) : end])
		tagEnd := end + len(close)
		if content == "" {
			text(i, tagEnd)
			i = tagEnd
			continue
		}

		switch content[0] {
		case '!':
			tokens = append(tokens, token{typ: tComment, start: i, end: tagEnd})
		case '=':
			inner := strings.TrimSuffix(content[1:], "=")
			parts := strings.Fields(inner)
			if len(parts) != 2 || !strings.HasSuffix(content, "=") {
				text(i, tagEnd)
				break
			}
			tokens = append(tokens, token{typ: tSetDelims, start: i, end: tagEnd})
			open, close = parts[0], parts[1]
		case '#':
			tokens = append(tokens, token{typ: tSectionStart, val: strings.TrimSpace(content[1:]), start: i, end: tagEnd})
		case '^':
			tokens = append(tokens, token{typ: tInvertedStart, val: strings.TrimSpace(content[1:]), start: i, end: tagEnd})
		case '/':
			tokens = append(tokens, token{typ: tSectionEnd, val: strings.TrimSpace(content[1:]), start: i, end: tagEnd})
		case '>':
			tokens = append(tokens, token{typ: tPartial, val: strings.TrimSpace(content[1:]), start: i, end: tagEnd})
		case '&':
			tokens = append(tokens, token{typ: tVar, val: strings.TrimSpace(content[1:]), start: i, end: tagEnd})
		default:
			tokens = append(tokens, token{typ: tVar, val: content, start: i, end: tagEnd})
		}
		i = tagEnd
	}
	return tokens
}

func isWhitespaceOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' && s[i] != '\r' {
			return false
		}
	}
	return true
}

// standalone reports whether t sits alone on its line, returning the
// indentation before it and the offset just past the end of its line.
func standalone(template string, t token) (bool, string, int) {
	ls := t.start
	for ls > 0 && template[ls-1] != '\n' {
		ls--
	}
	indent := template[ls:t.start]
	if !isWhitespaceOnly(indent) {
		return false, "", 0
	}
	le := t.end
	for le < len(template) && template[le] != '\n' {
		le++
	}
	if !isWhitespaceOnly(template[t.end:le]) {
		return false, "", 0
	}
	if le < len(template) {
		le++
	}
	return true, indent, le
}

type openSection struct {
	node *sectionNode
	tag  token
}

func parseTokens(template string, tokens []token) []node {
	var root []node
	var stack []openSection

	current := func() *[]node {
		if len(stack) == 0 {
			return &root
		}
		return &stack[len(stack)-1].node.children
	}
	appendNode := func(n node) {
		list := current()
		*list = append(*list, n)
	}
	trimIndent := func() {
		list := current()
		if len(*list) == 0 {
			return
		}
		if tn, ok := (*list)[len(*list)-1].(*textNode); ok {
			if idx := strings.LastIndexByte(tn.text, '\n'); idx >= 0 {
				tn.text = tn.text[:idx+1]
			} else {
				tn.text = ""
			}
		}
	}

	skipUntil := -1
	for _, t := range tokens {
		if t.typ == tText {
			if skipUntil >= 0 {
				if t.end <= skipUntil {
					continue
				}
				if t.start < skipUntil {
					t.val = t.val[skipUntil-t.start:]
					t.start = skipUntil
				}
			}
			appendNode(&textNode{text: t.val})
			continue
		}
		if t.typ == tVar {
			appendNode(&varNode{name: t.val})
			continue
		}

		alone, indent, removeTo := standalone(template, t)
		if t.typ == tSectionEnd && (len(stack) == 0 || stack[len(stack)-1].node.name != t.val) {
			appendNode(&textNode{text: template[t.start:t.end]})
			continue
		}
		if alone {
			trimIndent()
			skipUntil = removeTo
		}

		switch t.typ {
		case tPartial:
			pn := &partialNode{name: t.val}
			if alone {
				pn.indent = indent
			}
			appendNode(pn)
		case tSectionStart, tInvertedStart:
			stack = append(stack, openSection{
				node: &sectionNode{name: t.val, inverted: t.typ == tInvertedStart},
				tag:  t,
			})
		case tSectionEnd:
			sec := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			appendNode(sec.node)
		}
	}

	// Unclosed sections fall back to literal text followed by their content.
	for len(stack) > 0 {
		sec := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		appendNode(&textNode{text: template[sec.tag.start:sec.tag.end]})
		list := current()
		*list = append(*list, sec.node.children...)
	}
	return root
}
