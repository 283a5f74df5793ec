package include

import (
	"context"
	"errors"
	"strings"

	"github.com/benjaminschreck/go-include/pkg/include/scan"
	"github.com/benjaminschreck/go-include/pkg/include/source"
)

// outcome is the non-error result of an include or execute.
type outcome int

const (
	outcomeExpanded outcome = iota
	// outcomeSkipped means the content is not native markup while only
	// native markup may be expanded.
	outcomeSkipped
)

// aborts reports whether err ends the whole expansion instead of being
// rendered at the directive site.
func aborts(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (p *processor) processInclude(origin string, line int, m scan.Match) error {
	call := ParseCall(p.interpolate(strings.TrimSpace(m.Args), origin, line))

	p.logger.WithFields(Fields{"origin": origin, "line": line}).Debug("include %s", m.Text)

	res, _, err := p.proxyInclude(origin, line, call)
	switch {
	case err == nil && res == outcomeSkipped:
		p.write(m.Text)
	case err == nil:
	case aborts(err):
		return err
	default:
		if capability, ok := IsPermissionDenied(err); ok && capability == CapIncludeURL {
			p.logger.WithFields(Fields{"origin": origin, "line": line, "user": p.caller.Name}).
				Info("blocking attempt to include URL by %s", m.Text)
			return nil
		}
		p.logger.WithFields(Fields{"origin": origin, "line": line}).Warn("include failed: %v", err)
		p.write(siteMessage("Include failed", origin, line, err))
	}
	return nil
}

func (p *processor) processExecute(origin string, line int, sh scan.Shebang) error {
	call := ParseCall(p.interpolate(strings.TrimSpace(sh.Args), origin, line))
	call.Body = sh.Body

	p.logger.WithFields(Fields{"origin": origin, "line": line}).Debug("execute #!%s%s", sh.Name, sh.Args)

	res, _, err := p.proxyExecute(origin, line, call)
	if err == nil && res == outcomeSkipped {
		// Foreign content is expanded as native markup and quoted.
		retry := call.clone()
		retry.Named["mime_type"] = p.engine.config.NativeType
		p.write("{{{\n")
		_, _, err = p.proxyExecute(origin, line, retry)
		p.redirect(origin, line, false)
		p.write("}}}")
	}
	if err == nil {
		return nil
	}
	if aborts(err) {
		return err
	}
	p.logger.WithFields(Fields{"origin": origin, "line": line}).Warn("execute failed: %v", err)
	p.write(siteMessage("Execute failed", origin, line, err))
	return nil
}

// proxyInclude fetches the source named by call and expands it in a new
// frame. It returns the content type of the fetched document.
func (p *processor) proxyInclude(origin string, line int, call Call) (outcome, string, error) {
	native := p.engine.config.NativeType

	frame := NewFrame("")
	src, contentType := resolveArguments(call, false, p.stack, frame)
	if err := p.stack.Push(frame); err != nil {
		return outcomeExpanded, "", err
	}
	defer p.stack.Pop()

	if src == "" {
		return outcomeExpanded, "", NewRequestError("source parameter is missing")
	}
	ref, err := source.Parse(src)
	if err != nil {
		return outcomeExpanded, "", err
	}
	if contentType == "" && ref.Scheme == source.SchemePage {
		contentType = native
	}
	ref.ContentType = contentType

	if p.textOnly && ref.Scheme == source.SchemeRemote && contentType != native {
		return outcomeSkipped, contentType, nil
	}
	if err := p.caller.checkCapability(ref.Scheme); err != nil {
		return outcomeExpanded, "", err
	}
	if err := p.ctx.Err(); err != nil {
		return outcomeExpanded, "", err
	}

	doc, err := p.engine.resolver.Resolve(p.ctx, source.Request{Ref: ref, Referrer: origin})
	if err != nil {
		return outcomeExpanded, "", err
	}
	if p.stack.Contains(doc.ID) {
		return outcomeExpanded, "", &RecursionError{ID: doc.ID, Depth: p.stack.Depth()}
	}
	frame.Origin = doc.ID

	if p.textOnly && doc.ContentType != native {
		return outcomeSkipped, doc.ContentType, nil
	}
	if err := p.expand(doc.ID, 1, doc.Text, true, false); err != nil {
		return outcomeExpanded, doc.ContentType, err
	}
	return outcomeExpanded, doc.ContentType, nil
}

// proxyExecute expands call.Body as a template in a new frame that shares
// the caller's origin.
func (p *processor) proxyExecute(origin string, line int, call Call) (outcome, string, error) {
	native := p.engine.config.NativeType

	frame := NewFrame(origin)
	_, contentType := resolveArguments(call, true, p.stack, frame)
	if err := p.stack.Push(frame); err != nil {
		return outcomeExpanded, "", err
	}
	defer p.stack.Pop()

	if contentType == "" {
		contentType = native
	}
	if p.textOnly && contentType != native {
		return outcomeSkipped, contentType, nil
	}
	if err := p.expand(origin, line, call.Body, true, false); err != nil {
		return outcomeExpanded, contentType, err
	}
	return outcomeExpanded, contentType, nil
}
