package include

import (
	"context"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-include/pkg/include/scan"
)

// processor carries the state of one top-level expansion: the output, the
// pending template buffer and the frame stack.
type processor struct {
	engine   *Engine
	ctx      context.Context
	caller   Caller
	textOnly bool
	stack    *Stack
	logger   *Logger

	out  strings.Builder
	tmpl *strings.Builder
	// self describes where the pending template buffer was opened.
	self map[string]any
}

func (p *processor) write(s string) {
	if p.tmpl != nil {
		p.tmpl.WriteString(s)
		return
	}
	p.out.WriteString(s)
}

// redirect opens the template buffer when toTemplate is set, or flushes it
// through the interpolator otherwise. Opening an already open buffer keeps
// its original position.
func (p *processor) redirect(origin string, line int, toTemplate bool) {
	if toTemplate {
		if p.tmpl == nil {
			p.tmpl = new(strings.Builder)
			p.self = map[string]any{
				"url":    origin,
				"lineno": strconv.Itoa(line),
			}
		}
		return
	}
	if p.tmpl == nil {
		return
	}
	text := p.tmpl.String()
	p.tmpl = nil
	if text == "" {
		return
	}
	p.out.WriteString(p.engine.interpolator.Render(text, p.stack.Context(), map[string]any{"self": p.self}))
}

// interpolate renders argument text against the current context.
func (p *processor) interpolate(text, origin string, line int) string {
	if text == "" {
		return ""
	}
	self := map[string]any{"url": origin, "lineno": strconv.Itoa(line)}
	return p.engine.interpolator.Render(text, p.stack.Context(), map[string]any{"self": self})
}

// expand copies text to the output, dispatching directives and execute
// blocks along the way. In template mode plain text is interpolated; inside
// a preformatted block directives are copied verbatim.
func (p *processor) expand(origin string, line int, text string, templateMode, preformatted bool) error {
	p.redirect(origin, line, templateMode)

	pos := 0
scanning:
	for {
		m, ok := p.engine.scanner.Next(text, pos)
		if !ok {
			break
		}

		p.write(text[pos:m.Start])
		line += strings.Count(text[pos:m.Start], "\n")
		pos = m.Start

		switch m.Kind {
		case scan.FenceOpen:
			closer, ok := scan.MatchBlock(text, m.End)
			if !ok {
				// Unterminated: the rest is plain text.
				break scanning
			}
			p.redirect(origin, line, false)
			if err := p.expandFence(origin, line, text, m, closer, templateMode, preformatted); err != nil {
				return err
			}
			line += strings.Count(text[m.Start:closer.End], "\n")
			p.redirect(origin, line, templateMode)
			pos = closer.End
			continue

		case scan.InlineCode:
			p.redirect(origin, line, false)
			p.write(m.Text)

		case scan.DirectiveCall:
			if preformatted {
				p.write(m.Text)
				break
			}
			p.redirect(origin, line, false)
			if err := p.processInclude(origin, line, m); err != nil {
				return err
			}
		}

		p.redirect(origin, line, templateMode)
		line += strings.Count(m.Text, "\n")
		pos = m.End
	}

	p.write(text[pos:])
	p.redirect(origin, line, false)
	return nil
}

// expandFence handles one balanced {{{ ... }}} block starting at open.
func (p *processor) expandFence(origin string, line int, text string, open, closer scan.Match, templateMode, preformatted bool) error {
	inner := text[open.End:closer.Start]
	if !strings.Contains(inner, "\n") {
		p.write(text[open.Start:closer.End])
		return nil
	}

	sh, ok := scan.ParseShebang(inner)
	if ok && !preformatted && p.engine.directives[sh.Name] {
		execLine := line + strings.Count(inner[:sh.BodyOffset], "\n")
		return p.processExecute(origin, execLine, sh)
	}

	// A block without a processor line is preformatted text; one for
	// another processor keeps the current mode.
	nested := preformatted
	if !ok {
		nested = true
	}
	p.write(open.Text)
	if err := p.expand(origin, line, inner, templateMode, nested); err != nil {
		return err
	}
	p.write(closer.Text)
	return nil
}
