// Package tree holds the displayable tree value: an ordered, pre-order
// sequence of lines plus the cursor and scroll state moving over it.
package tree

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/burrowfs/burrow/internal/dam"
	"github.com/burrowfs/burrow/internal/gitstatus"
)

// GitStatusState tracks the deferred computation of the repository
// summary attached to a tree.
type GitStatusState int

const (
	GitStatusNone GitStatusState = iota
	GitStatusNotComputed
	GitStatusDone
	GitStatusFailed
)

// Tree is the finalized result of a build: lines in pre-order, line 0
// being the root, plus mutable selection and scroll.
type Tree struct {
	Lines        []TreeLine
	Selection    int
	Scroll       int
	Options      Options
	NbGitignored int
	TotalSearch  bool
	GitState     GitStatusState
	TreeStatus   *gitstatus.TreeStatus
}

// Root returns the root path of the tree.
func (t *Tree) Root() string {
	return t.Lines[0].Path
}

// SelectedLine returns the line under the cursor.
func (t *Tree) SelectedLine() *TreeLine {
	return &t.Lines[t.Selection]
}

// AfterLinesChanged must be called whenever the line sequence changed: it
// restores pre-order (the gather phase emits breadth-first), applies the
// sort mode, recomputes branch connectors and resets an out-of-range
// selection to the root.
func (t *Tree) AfterLinesChanged() {
	if t.Options.Sort == SortNone {
		t.sortPreOrder()
	} else {
		t.applySort()
	}
	t.computeLeftBranches()
	if t.Selection >= len(t.Lines) {
		t.Selection = 0
	}
}

// sortPreOrder orders lines depth-first, siblings in case-insensitive
// name order: comparing paths component-wise puts every parent right
// before its subtree.
func (t *Tree) sortPreOrder() {
	if len(t.Lines) < 3 {
		return
	}
	rest := t.Lines[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		return comparePaths(rest[i].Path, rest[j].Path) < 0
	})
}

func comparePaths(a, b string) int {
	as := strings.Split(a, string(filepath.Separator))
	bs := strings.Split(b, string(filepath.Separator))
	for i := 0; i < len(as) && i < len(bs); i++ {
		la, lb := strings.ToLower(as[i]), strings.ToLower(bs[i])
		if la != lb {
			return strings.Compare(la, lb)
		}
		if as[i] != bs[i] {
			return strings.Compare(as[i], bs[i])
		}
	}
	return len(as) - len(bs)
}

// applySort reorders the single displayed level by the requested sum
// component. Lines without a sum yet sink to the bottom.
func (t *Tree) applySort() {
	if t.Options.Sort == SortNone || len(t.Lines) < 3 {
		return
	}
	rest := t.Lines[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		si, sj := rest[i].Sum, rest[j].Sum
		if si == nil || sj == nil {
			return sj == nil && si != nil
		}
		switch t.Options.Sort {
		case SortByDate:
			return si.Seconds > sj.Seconds
		case SortBySize:
			return si.Bytes > sj.Bytes
		default:
			return si.Count > sj.Count
		}
	})
}

func (t *Tree) computeLeftBranches() {
	for i := range t.Lines {
		depth := t.Lines[i].Depth
		branches := make([]bool, depth)
		for k := 1; k <= depth; k++ {
			for j := i + 1; j < len(t.Lines); j++ {
				if t.Lines[j].Depth < k {
					break
				}
				if t.Lines[j].Depth == k {
					branches[k-1] = true
					break
				}
			}
		}
		t.Lines[i].LeftBranches = branches
	}
}

// MoveSelection moves the cursor dy lines (negative is up), skipping
// unselectable lines, cycling at the edges when cycle is true and
// clamping otherwise, then keeps it visible.
func (t *Tree) MoveSelection(dy, pageHeight int, cycle bool) {
	if len(t.Lines) == 0 {
		return
	}
	step := 1
	if dy < 0 {
		step = -1
		dy = -dy
	}
	sel := t.Selection
	for moved := 0; moved < dy; moved++ {
		next := sel
		for {
			next += step
			if next < 0 || next >= len(t.Lines) {
				if !cycle {
					next = sel
					break
				}
				next = (next + len(t.Lines)) % len(t.Lines)
			}
			if t.Lines[next].IsSelectable() {
				break
			}
			if next == sel {
				break
			}
		}
		if next == sel {
			break
		}
		sel = next
	}
	t.Selection = sel
	t.MakeSelectionVisible(pageHeight)
}

// TryScroll shifts the window by dy lines and drags the selection along
// so it stays visible.
func (t *Tree) TryScroll(dy, pageHeight int) {
	maxScroll := len(t.Lines) - 1 - pageHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	t.Scroll += dy
	if t.Scroll < 0 {
		t.Scroll = 0
	}
	if t.Scroll > maxScroll {
		t.Scroll = maxScroll
	}
	if t.Selection <= t.Scroll && t.Scroll > 0 {
		t.Selection = t.Scroll + 1
	} else if t.Selection > t.Scroll+pageHeight {
		t.Selection = t.Scroll + pageHeight
	}
	if t.Selection >= len(t.Lines) {
		t.Selection = len(t.Lines) - 1
	}
}

// MakeSelectionVisible adjusts the scroll with a bounded move so the
// selected line is inside the window.
func (t *Tree) MakeSelectionVisible(pageHeight int) {
	maxScroll := len(t.Lines) - 1 - pageHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if t.Selection <= t.Scroll {
		t.Scroll = t.Selection - 1
	} else if t.Selection > t.Scroll+pageHeight {
		t.Scroll = t.Selection - pageHeight
	}
	if t.Scroll < 0 {
		t.Scroll = 0
	}
	if t.Scroll > maxScroll {
		t.Scroll = maxScroll
	}
}

// TrySelectPath selects the line with the given path, if present.
func (t *Tree) TrySelectPath(path string) bool {
	for i := range t.Lines {
		if t.Lines[i].Path == path && t.Lines[i].IsSelectable() {
			t.Selection = i
			return true
		}
	}
	return false
}

// TrySelectBestMatch puts the cursor on the best scored direct match.
func (t *Tree) TrySelectBestMatch() {
	best := -1
	for i := range t.Lines {
		if !t.Lines[i].DirectMatch {
			continue
		}
		if best < 0 || t.Lines[i].Score > t.Lines[best].Score {
			best = i
		}
	}
	if best >= 0 {
		t.Selection = best
	}
}

// TrySelectNextMatch cycles the cursor forward through direct matches.
func (t *Tree) TrySelectNextMatch() {
	t.selectNextWhere(1, func(l *TreeLine) bool { return l.DirectMatch })
}

// TrySelectPreviousMatch cycles the cursor backward through direct
// matches.
func (t *Tree) TrySelectPreviousMatch() {
	t.selectNextWhere(-1, func(l *TreeLine) bool { return l.DirectMatch })
}

// TrySelectNextSameDepth cycles forward among lines of the current depth.
func (t *Tree) TrySelectNextSameDepth() {
	depth := t.SelectedLine().Depth
	t.selectNextWhere(1, func(l *TreeLine) bool { return l.Depth == depth })
}

// TrySelectPreviousSameDepth cycles backward among lines of the current
// depth.
func (t *Tree) TrySelectPreviousSameDepth() {
	depth := t.SelectedLine().Depth
	t.selectNextWhere(-1, func(l *TreeLine) bool { return l.Depth == depth })
}

func (t *Tree) selectNextWhere(step int, pred func(*TreeLine) bool) {
	n := len(t.Lines)
	for i := 1; i <= n; i++ {
		idx := (t.Selection + step*i%n + n) % n
		if t.Lines[idx].IsSelectable() && pred(&t.Lines[idx]) {
			t.Selection = idx
			return
		}
	}
}

// TrySelectFirst selects the root and resets the scroll.
func (t *Tree) TrySelectFirst() {
	t.Selection = 0
	t.Scroll = 0
}

// TrySelectLast selects the last selectable line and scrolls to it.
func (t *Tree) TrySelectLast(pageHeight int) {
	for i := len(t.Lines) - 1; i >= 0; i-- {
		if t.Lines[i].IsSelectable() {
			t.Selection = i
			break
		}
	}
	t.MakeSelectionVisible(pageHeight)
}

// HasDirMissingSum tells whether background sum computation still has
// work to do. Sums are only needed in sort mode.
func (t *Tree) HasDirMissingSum() bool {
	if t.Options.Sort == SortNone {
		return false
	}
	for i := range t.Lines {
		if t.Lines[i].Kind == KindDir && t.Lines[i].Sum == nil {
			return true
		}
	}
	return false
}

// FetchSomeMissingDirSum computes at most one missing directory sum, then
// refreshes the ordering. Returns false when interrupted by the dam.
func (t *Tree) FetchSomeMissingDirSum(d *dam.Dam) bool {
	for i := range t.Lines {
		if t.Lines[i].Kind != KindDir || t.Lines[i].Sum != nil {
			continue
		}
		sum, ok := ComputeFileSum(t.Lines[i].Path, d)
		if !ok {
			return false
		}
		t.Lines[i].Sum = &sum
		selectedPath := t.SelectedLine().Path
		t.AfterLinesChanged()
		t.TrySelectPath(selectedPath)
		return true
	}
	return true
}

// IsMissingGitStatusComputation tells whether the deferred repository
// status still has to be computed.
func (t *Tree) IsMissingGitStatusComputation() bool {
	return t.GitState == GitStatusNotComputed
}
