// Package special maps paths to a display handling: some locations should
// be hidden, listed but never entered, or entered without being expanded
// in wide searches (think /proc, /media, huge cache directories).
package special

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Handling tells the builder what to do with a matched path.
type Handling int

const (
	Normal Handling = iota
	Hide
	NoEnter
	EnterDontExpand
)

// Rule binds a doublestar glob to a handling. The glob is matched against
// both the full path and the base name.
type Rule struct {
	Glob     string
	Handling Handling
}

// List is an ordered set of rules; the first matching rule wins.
type List struct {
	rules []Rule
}

// NewList builds a list from rules. Invalid globs never match.
func NewList(rules ...Rule) *List {
	return &List{rules: rules}
}

// Find returns the handling of the first rule matching the path, or
// Normal when no rule matches.
func (l *List) Find(path string) Handling {
	if l == nil {
		return Normal
	}
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, r := range l.rules {
		if ok, _ := doublestar.Match(r.Glob, slashed); ok {
			return r.Handling
		}
		if ok, _ := doublestar.Match(r.Glob, base); ok {
			return r.Handling
		}
	}
	return Normal
}
