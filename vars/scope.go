package vars

import "slices"

// Scope maps each variable name to a stack of values. The top of a stack is
// the value visible at the current nesting depth.
//
// A Scope is owned by a single call to [Resolver.Process] and is not safe
// for concurrent use.
type Scope struct {
	stacks map[string][]string
}

// frame records the names first declared in one container. Each name in a
// frame owes exactly one pop when the container is left.
type frame map[string]struct{}

// NewScope returns a scope seeded with one-element stacks for each global.
// Globals live at the root and are never popped.
func NewScope(globals map[string]string) *Scope {
	s := &Scope{stacks: make(map[string][]string, len(globals))}
	for name, value := range globals {
		s.stacks[name] = []string{value}
	}

	return s
}

// declare binds name to value in the container tracked by f.
// The first declaration of name in f pushes a new value; later ones in the
// same container replace it.
func (s *Scope) declare(name, value string, f frame) {
	stack := s.stacks[name]

	if _, ok := f[name]; ok && len(stack) > 0 {
		stack[len(stack)-1] = value

		return
	}

	f[name] = struct{}{}
	s.stacks[name] = append(stack, value)
}

// Resolve returns the visible value of name.
func (s *Scope) Resolve(name string) (string, bool) {
	stack := s.stacks[name]
	if len(stack) == 0 {
		return "", false
	}

	return stack[len(stack)-1], true
}

// unwind pops one value for each name tracked by f.
func (s *Scope) unwind(f frame) {
	for name := range f {
		if stack := s.stacks[name]; len(stack) > 0 {
			s.stacks[name] = stack[:len(stack)-1]
		}
	}
}

// Visible returns the sorted names that currently resolve to a value.
func (s *Scope) Visible() []string {
	names := make([]string, 0, len(s.stacks))
	for name, stack := range s.stacks {
		if len(stack) > 0 {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// Depth returns the number of values stacked for name.
func (s *Scope) Depth(name string) int {
	return len(s.stacks[name])
}
