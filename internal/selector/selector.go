// Package selector parses user-supplied target tokens and resolves them
// against a discovery list.
package selector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/petitechose-midi-studio/loader/internal/targets"
)

// Kind discriminates the two Selector arms.
type Kind int

const (
	KindIndex Kind = iota
	KindID
)

// Selector is either an Index into the discovery list or an Id matching a
// target identifier literally.
type Selector struct {
	Kind  Kind
	Index int
	ID    string
}

// Parse decodes a token per §3: a bare numeric string, "index:n",
// "serial:…", "halfkay:…", or an unadorned string treated as "serial:<s>".
func Parse(s string) (Selector, error) {
	switch {
	case strings.HasPrefix(s, "index:"):
		rest := strings.TrimPrefix(s, "index:")
		n, err := strconv.Atoi(rest)
		if err != nil {
			return Selector{}, &Error{Kind: ErrInvalidSelector, Selector: s}
		}
		return Selector{Kind: KindIndex, Index: n}, nil
	case strings.HasPrefix(s, "serial:"), strings.HasPrefix(s, "halfkay:"):
		return Selector{Kind: KindID, ID: s}, nil
	case isAllDigits(s):
		n, err := strconv.Atoi(s)
		if err != nil {
			return Selector{}, &Error{Kind: ErrInvalidSelector, Selector: s}
		}
		return Selector{Kind: KindIndex, Index: n}, nil
	default:
		return Selector{Kind: KindID, ID: "serial:" + s}, nil
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the selector back to a token, used for error messages.
func (s Selector) String() string {
	if s.Kind == KindIndex {
		return fmt.Sprintf("index:%d", s.Index)
	}
	return s.ID
}

// ErrorKind classifies a selector resolution failure.
type ErrorKind int

const (
	ErrInvalidSelector ErrorKind = iota
	ErrIndexOutOfRange
	ErrNoMatch
	ErrMultipleMatches
)

// Error is the error type surfaced by Resolve/ResolveOne.
type Error struct {
	Kind     ErrorKind
	Selector string
	Index    int
	Len      int
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrInvalidSelector:
		return fmt.Sprintf("selector: invalid selector %q", e.Selector)
	case ErrIndexOutOfRange:
		return fmt.Sprintf("selector: index %d out of range (have %d targets)", e.Index, e.Len)
	case ErrNoMatch:
		return fmt.Sprintf("selector: %q matched no target", e.Selector)
	case ErrMultipleMatches:
		return fmt.Sprintf("selector: %q matched more than one target", e.Selector)
	default:
		return "selector: unknown error"
	}
}

// Resolve returns every index into ts matched by s.
func Resolve(s Selector, ts []targets.Target) ([]int, error) {
	if s.Kind == KindIndex {
		if s.Index < 0 || s.Index >= len(ts) {
			return nil, &Error{Kind: ErrIndexOutOfRange, Index: s.Index, Len: len(ts)}
		}
		return []int{s.Index}, nil
	}
	var matches []int
	for i, t := range ts {
		if t.ID() == s.ID {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

// ResolveOne requires exactly one match.
func ResolveOne(s Selector, ts []targets.Target) (int, error) {
	matches, err := Resolve(s, ts)
	if err != nil {
		return 0, err
	}
	switch len(matches) {
	case 0:
		return 0, &Error{Kind: ErrNoMatch, Selector: s.String()}
	case 1:
		return matches[0], nil
	default:
		return 0, &Error{Kind: ErrMultipleMatches, Selector: s.String()}
	}
}
