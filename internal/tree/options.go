package tree

import "github.com/burrowfs/burrow/internal/pattern"

// SortKey orders a single-level tree by one of the directory sum
// components.
type SortKey int

const (
	SortNone SortKey = iota
	SortByDate
	SortBySize
	SortByCount
)

// Options shape a tree build. A tree keeps the snapshot of the options it
// was built under.
type Options struct {
	ShowHidden        bool
	RespectGitIgnore  bool
	FilterByGitStatus bool
	ShowGitFileInfo   bool
	OnlyFolders       bool
	TrimRoot          bool
	Sort              SortKey
	Pattern           pattern.InputPattern
}

// WithoutPattern returns a copy of the options with no search pattern.
func (o Options) WithoutPattern() Options {
	o.Pattern = pattern.NoInput()
	return o
}
