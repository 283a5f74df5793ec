package include

import "sort"

// Frame is one level of inclusion: the document being expanded and the
// variables bound for it. Globals are visible to every nested frame, Locals
// only to templates of this frame.
type Frame struct {
	Origin  string
	Globals Vars
	Locals  Vars
}

// NewFrame creates an empty frame for origin.
func NewFrame(origin string) *Frame {
	return &Frame{
		Origin:  origin,
		Globals: make(Vars),
		Locals:  make(Vars),
	}
}

// Stack is the chain of active frames, oldest first. It is owned by a
// single expansion and is not safe for concurrent use.
type Stack struct {
	frames   []*Frame
	maxDepth int
	context  map[string]any
}

// NewStack creates a stack holding base. A maxDepth of 0 disables the
// depth ceiling.
func NewStack(base *Frame, maxDepth int) *Stack {
	s := &Stack{maxDepth: maxDepth}
	if base != nil {
		s.frames = append(s.frames, base)
	}
	return s
}

// Push adds f on top of the stack. It fails when the stack already holds
// maxDepth nested frames above the base.
func (s *Stack) Push(f *Frame) error {
	if s.maxDepth > 0 && len(s.frames) > s.maxDepth {
		return &RecursionError{Depth: len(s.frames), Limit: s.maxDepth}
	}
	s.frames = append(s.frames, f)
	s.context = nil
	return nil
}

// Pop removes the top frame. Popping an empty stack is a no-op.
func (s *Stack) Pop() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	top := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	s.context = nil
	return top
}

func (s *Stack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *Stack) Depth() int {
	return len(s.frames)
}

// Contains reports whether any active frame is expanding origin.
func (s *Stack) Contains(origin string) bool {
	for _, f := range s.frames {
		if f.Origin == origin {
			return true
		}
	}
	return false
}

// NearestGlobal looks name up in the globals of each frame from the top down.
func (s *Stack) NearestGlobal(name string) (Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].Globals[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetGlobal binds name in the top frame's globals.
func (s *Stack) SetGlobal(name string, v Value) {
	if top := s.Top(); top != nil {
		top.Globals[name] = v
		s.context = nil
	}
}

// SetLocal binds name in the top frame's locals.
func (s *Stack) SetLocal(name string, v Value) {
	if top := s.Top(); top != nil {
		top.Locals[name] = v
		s.context = nil
	}
}

// Context returns the template context: the globals of every frame from
// oldest to newest, then the top frame's locals, flattened. Later bindings
// shadow earlier ones. The result is cached until the stack changes and
// must not be modified.
func (s *Stack) Context() map[string]any {
	if s.context != nil {
		return s.context
	}
	ctx := make(map[string]any)
	for _, f := range s.frames {
		for _, name := range sortedNames(f.Globals) {
			Flatten(ctx, name, f.Globals[name])
		}
	}
	if top := s.Top(); top != nil {
		for _, name := range sortedNames(top.Locals) {
			Flatten(ctx, name, top.Locals[name])
		}
	}
	s.context = ctx
	return ctx
}

func sortedNames(v Vars) []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
