package tree

import (
	"path/filepath"

	"github.com/burrowfs/burrow/internal/gitstatus"
)

// LineKind tags the nature of a tree line.
type LineKind int

const (
	KindDir LineKind = iota
	KindFile
	KindSymlink
	KindBrokenSymlink
	// KindPruning marks the synthetic "unlisted" summary line
	KindPruning
)

// TreeLine is one displayed row of a tree, derived from a build line
// after trimming.
type TreeLine struct {
	Path          string
	SubPath       string
	Name          string
	Depth         int
	Kind          LineKind
	SymlinkTarget string

	// LeftBranches[k] tells whether the column of the ancestor at depth
	// k+1 still has a downward connector on this row.
	LeftBranches []bool

	Sum              *FileSum
	GitStatus        gitstatus.FileStatus
	HasGitStatus     bool
	UnlistedChildren int
	DirectMatch      bool
	Score            int
	HasError         bool
}

// IsDir tells whether the line is a directory (symlinks to directories
// are not).
func (l *TreeLine) IsDir() bool {
	return l.Kind == KindDir
}

// IsSelectable tells whether the cursor may rest on this line.
func (l *TreeLine) IsSelectable() bool {
	return l.Kind != KindPruning
}

// Target returns the path an open operation should act on: the resolved
// target for symlinks, the path itself otherwise.
func (l *TreeLine) Target() string {
	if l.Kind == KindSymlink && l.SymlinkTarget != "" {
		if filepath.IsAbs(l.SymlinkTarget) {
			return l.SymlinkTarget
		}
		return filepath.Join(filepath.Dir(l.Path), l.SymlinkTarget)
	}
	return l.Path
}
