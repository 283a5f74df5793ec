package scan

import (
	"regexp"
	"strings"
)

// MatchKind identifies which delimiter produced a Match.
type MatchKind int

const (
	InlineCode MatchKind = iota
	FenceOpen
	FenceClose
	DirectiveCall
	TemplateExpr
)

func (k MatchKind) String() string {
	switch k {
	case InlineCode:
		return "inline-code"
	case FenceOpen:
		return "fence-open"
	case FenceClose:
		return "fence-close"
	case DirectiveCall:
		return "directive-call"
	case TemplateExpr:
		return "template-expr"
	default:
		return "unknown"
	}
}

// Match is one delimiter hit. Start and End are byte offsets into the
// scanned text; Name and Args are only set for directive calls.
type Match struct {
	Kind  MatchKind
	Start int
	End   int
	Text  string
	Name  string
	Args  string
}

var (
	inlineCodePattern   = regexp.MustCompile("`[^`\n]*`")
	fenceOpenPattern    = regexp.MustCompile(`\{\{\{`)
	fenceClosePattern   = regexp.MustCompile(`\}\}\}`)
	templateExprPattern = regexp.MustCompile(`\{\{[^\n]*?\}\}`)
)

type matcher struct {
	kind    MatchKind
	pattern *regexp.Regexp
}

// Scanner looks for the earliest of a fixed, ordered set of delimiters.
type Scanner struct {
	matchers []matcher
}

// DirectivePattern builds the bracketed call pattern for the given names.
// It returns nil when names is empty.
func DirectivePattern(names []string) *regexp.Regexp {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			quoted = append(quoted, regexp.QuoteMeta(name))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`\[\[(` + strings.Join(quoted, "|") + `)\((.*?)\)\]\]`)
}

// NewScanner returns a scanner for the given kinds, registered in order.
// directives names the calls recognized by DirectiveCall; a DirectiveCall
// kind with no names is ignored.
func NewScanner(directives []string, kinds ...MatchKind) *Scanner {
	s := &Scanner{}
	for _, kind := range kinds {
		var pattern *regexp.Regexp
		switch kind {
		case InlineCode:
			pattern = inlineCodePattern
		case FenceOpen:
			pattern = fenceOpenPattern
		case FenceClose:
			pattern = fenceClosePattern
		case TemplateExpr:
			pattern = templateExprPattern
		case DirectiveCall:
			pattern = DirectivePattern(directives)
		}
		if pattern == nil {
			continue
		}
		s.matchers = append(s.matchers, matcher{kind: kind, pattern: pattern})
	}
	return s
}

// Kinds reports the registered kinds in tie-break order.
func (s *Scanner) Kinds() []MatchKind {
	kinds := make([]MatchKind, len(s.matchers))
	for i, m := range s.matchers {
		kinds[i] = m.kind
	}
	return kinds
}

// Next returns the match starting earliest at or after offset. Ties on the
// start offset go to the matcher registered first.
func (s *Scanner) Next(text string, offset int) (Match, bool) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		return Match{}, false
	}

	var (
		best  Match
		found bool
	)
	rest := text[offset:]
	for _, m := range s.matchers {
		loc := m.pattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			continue
		}
		start := offset + loc[0]
		if found && start >= best.Start {
			continue
		}
		best = Match{
			Kind:  m.kind,
			Start: start,
			End:   offset + loc[1],
			Text:  rest[loc[0]:loc[1]],
		}
		if m.kind == DirectiveCall && len(loc) >= 6 {
			best.Name = rest[loc[2]:loc[3]]
			best.Args = rest[loc[4]:loc[5]]
		}
		found = true
	}
	return best, found
}

// All returns every non-overlapping match from offset to the end of text.
func (s *Scanner) All(text string, offset int) []Match {
	var matches []Match
	for {
		m, ok := s.Next(text, offset)
		if !ok {
			return matches
		}
		matches = append(matches, m)
		offset = m.End
		if m.End == m.Start {
			offset++
		}
	}
}
