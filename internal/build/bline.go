package build

import (
	"github.com/burrowfs/burrow/internal/gitignore"
	"github.com/burrowfs/burrow/internal/special"
	"github.com/burrowfs/burrow/internal/tree"
)

// bid identifies a build line inside its builder's arena. Ids are stable,
// never reused, and never leave the builder.
type bid int

const noBid bid = -1

// bline is the transient node used during construction, before trimming
// turns the kept ones into tree lines.
type bline struct {
	parentID      bid
	path          string
	name          string
	subPath       string
	depth         int
	kind          tree.LineKind
	symlinkTarget string

	children       []bid
	childrenLoaded bool
	nextChildIdx   int

	hasError    bool
	hasMatch    bool
	directMatch bool
	score       int

	nbKeptChildren int
	gitChain       gitignore.Chain
	special        special.Handling
}

// canEnter tells whether the gather phase may descend into this line.
// Symlinks are never followed; NoEnter directories are listed but closed;
// EnterDontExpand directories are only expanded outside of searches.
func (b *bline) canEnter(searching bool) bool {
	if b.kind != tree.KindDir {
		return false
	}
	switch b.special {
	case special.NoEnter:
		return false
	case special.EnterDontExpand:
		return !searching
	}
	return true
}

// arena is the bump allocator owning every bline of one build.
type arena struct {
	blines []bline
}

func (a *arena) alloc(b bline) bid {
	a.blines = append(a.blines, b)
	return bid(len(a.blines) - 1)
}

func (a *arena) at(id bid) *bline {
	return &a.blines[id]
}
