package include

import (
	"regexp"
	"strings"
)

// Call is a parsed directive invocation.
type Call struct {
	Positional []string
	Named      map[string]string
	// Body is the block content of an execute call.
	Body string
}

var (
	argSeparator = regexp.MustCompile(`\\?,`)
	namedArg     = regexp.MustCompile(`^\s*([a-zA-Z_]\w*)=`)
)

// ParseCall splits argument text on unescaped commas. Items shaped like
// key=value are named, everything else is positional and kept verbatim. An
// escaped comma "\," becomes a literal comma, and a named value wrapped in
// matching quotes loses them.
func ParseCall(text string) Call {
	call := Call{Named: make(map[string]string)}
	if text == "" {
		return call
	}
	for _, item := range splitArgs(text) {
		if m := namedArg.FindStringSubmatchIndex(item); m != nil {
			call.Named[item[m[2]:m[3]]] = unquote(item[m[1]:])
			continue
		}
		call.Positional = append(call.Positional, item)
	}
	return call
}

func splitArgs(text string) []string {
	var (
		items []string
		cur   strings.Builder
		last  int
	)
	for _, loc := range argSeparator.FindAllStringIndex(text, -1) {
		cur.WriteString(text[last:loc[0]])
		last = loc[1]
		if loc[1]-loc[0] == 2 {
			cur.WriteByte(',')
			continue
		}
		items = append(items, cur.String())
		cur.Reset()
	}
	cur.WriteString(text[last:])
	return append(items, cur.String())
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// clone returns a deep copy; resolution writes back into Named.
func (c Call) clone() Call {
	named := make(map[string]string, len(c.Named))
	for k, v := range c.Named {
		named[k] = v
	}
	return Call{
		Positional: append([]string(nil), c.Positional...),
		Named:      named,
		Body:       c.Body,
	}
}

// resolveArguments picks the source and content type of a call and binds
// the call's arguments into frame, which must not be on the stack yet.
// In execute mode positionals never name the source and the content type
// defaults to the nearest enclosing mime_type.
func resolveArguments(call Call, execute bool, stack *Stack, frame *Frame) (src, contentType string) {
	call = call.clone()
	start := 0
	if v, ok := call.Named["src"]; ok {
		src = v
	} else if !execute && len(call.Positional) > 0 {
		src = call.Positional[0]
		start = 1
	}
	src = strings.TrimSpace(src)
	if _, ok := call.Named["src"]; !ok && src != "" {
		call.Named["src"] = src
	}

	if v, ok := call.Named["mime_type"]; ok {
		contentType = strings.TrimSpace(v)
	} else if execute {
		if v, ok := stack.NearestGlobal("mime_type"); ok {
			if s, ok := v.(String); ok {
				contentType = strings.TrimSpace(string(s))
			}
		}
	} else if len(call.Positional) > start {
		contentType = strings.TrimSpace(call.Positional[len(call.Positional)-1])
	}
	if _, ok := call.Named["mime_type"]; !ok && contentType != "" {
		call.Named["mime_type"] = contentType
	}

	for name, v := range call.Named {
		frame.Globals[name] = String(v)
	}
	frame.Locals["argv"] = List(append([]string(nil), call.Positional...))
	return src, contentType
}
