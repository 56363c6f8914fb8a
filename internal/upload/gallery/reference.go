package gallery

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned by RemoveAt and MoveTo for indices outside [0, len).
var ErrIndexOutOfRange = errors.New("index out of range")

// Reference points at one gallery image.
type Reference struct {
	Locator   string
	Ephemeral bool
}

// Persistent returns a durable reference to locator.
func Persistent(locator string) Reference {
	return Reference{Locator: locator}
}

// Ephemeral returns a process-local reference to locator.
func Ephemeral(locator string) Reference {
	return Reference{Locator: locator, Ephemeral: true}
}

func (r Reference) String() string {
	if r.Ephemeral {
		return r.Locator + " (local only)"
	}
	return r.Locator
}

// List is the ordered gallery. Index 0 is the primary image.
type List []Reference

// FromLocators builds a list of persistent references, e.g. from a listing
// loaded from the persistence API.
func FromLocators(locators []string) List {
	l := make(List, 0, len(locators))
	for _, loc := range locators {
		l = append(l, Persistent(loc))
	}
	return l
}

// Locators returns the plain ordered strings the persistence API accepts.
func (l List) Locators() []string {
	out := make([]string, 0, len(l))
	for _, r := range l {
		out = append(out, r.Locator)
	}
	return out
}

// HasEphemeral reports whether the list still contains local-only entries.
func (l List) HasEphemeral() bool {
	return l.EphemeralCount() > 0
}

// EphemeralCount returns the number of local-only entries.
func (l List) EphemeralCount() int {
	n := 0
	for _, r := range l {
		if r.Ephemeral {
			n++
		}
	}
	return n
}

// WithoutEphemeral returns the persistent entries only, in their original order.
func (l List) WithoutEphemeral() List {
	out := make(List, 0, len(l))
	for _, r := range l {
		if !r.Ephemeral {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a copy that shares no backing array with l.
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Append returns a new list with refs added at the end.
func Append(l List, refs ...Reference) List {
	out := make(List, 0, len(l)+len(refs))
	out = append(out, l...)
	return append(out, refs...)
}

// RemoveAt returns a new list without the element at index.
func RemoveAt(l List, index int) (List, error) {
	if index < 0 || index >= len(l) {
		return l, fmt.Errorf("remove %d from list of %d: %w", index, len(l), ErrIndexOutOfRange)
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:index]...)
	return append(out, l[index+1:]...), nil
}

// MoveTo returns a new list with the element at from reinserted at to. Both
// indices refer to positions in l. Moving an element onto itself returns l.
func MoveTo(l List, from, to int) (List, error) {
	if from < 0 || from >= len(l) || to < 0 || to >= len(l) {
		return l, fmt.Errorf("move %d to %d in list of %d: %w", from, to, len(l), ErrIndexOutOfRange)
	}
	if from == to {
		return l, nil
	}

	moved := l[from]
	rest, _ := RemoveAt(l, from)

	out := make(List, 0, len(l))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	return append(out, rest[to:]...), nil
}
