package browser

import (
	"errors"
	"log/slog"

	"github.com/burrowfs/burrow/internal/build"
	"github.com/burrowfs/burrow/internal/dam"
	"github.com/burrowfs/burrow/internal/gitstatus"
	"github.com/burrowfs/burrow/internal/tree"
)

// DoPendingTask performs one unit of background work, in priority order:
// apply the pending pattern, then compute the deferred git status, then
// advance directory sums. It stops as soon as the dam asks for
// interruption; a cancelled unit leaves the state untouched.
func (bs *BrowserState) DoPendingTask(pageHeight int, ctx *Context, d *dam.Dam) {
	switch {
	case bs.PendingPattern.IsSome():
		options := bs.Tree.Options
		options.Pattern = bs.PendingPattern.Take()
		totalSearch := bs.TotalSearchRequired
		bs.TotalSearchRequired = false
		builder, err := build.NewBuilder(bs.Tree.Root(), options, pageHeight, buildContext(ctx))
		if err != nil {
			slog.Warn("error while preparing tree builder", "error", err)
			return
		}
		filtered, err := builder.Build(totalSearch, d)
		if err != nil {
			if !errors.Is(err, build.ErrCancelled) {
				slog.Warn("tree filtering failed", "error", err)
				return
			}
			// cancelled: the pattern goes back to pending so the next
			// tick rebuilds it, unless a fresher one replaces it first
			bs.PendingPattern = options.Pattern
			bs.TotalSearchRequired = totalSearch
			return
		}
		filtered.TrySelectBestMatch()
		filtered.MakeSelectionVisible(pageHeight)
		bs.FilteredTree = filtered
	case bs.DisplayedTree().IsMissingGitStatusComputation():
		t := bs.DisplayedTree()
		status, err := gitstatus.ComputeTreeStatus(t.Root(), d)
		if err != nil {
			if errors.Is(err, gitstatus.ErrStatusInterrupted) {
				return
			}
			slog.Warn("git status computation failed", "root", t.Root(), "error", err)
			t.GitState = tree.GitStatusFailed
			return
		}
		t.TreeStatus = status
		t.GitState = tree.GitStatusDone
	default:
		bs.DisplayedTree().FetchSomeMissingDirSum(d)
	}
}

// GetPendingTask names pending background work, for progress display
// only. It checks directory sums before git status, the reverse of the
// order in which DoPendingTask runs them.
func (bs *BrowserState) GetPendingTask() string {
	switch {
	case bs.PendingPattern.IsSome():
		return "searching"
	case bs.DisplayedTree().HasDirMissingSum():
		return "computing stats"
	case bs.DisplayedTree().IsMissingGitStatusComputation():
		return "computing git status"
	}
	return ""
}

// Refresh rebuilds the base tree and the overlay from the current
// filesystem state, preserving the selections by path. It returns false
// when either rebuild failed.
func (bs *BrowserState) Refresh(pageHeight int, ctx *Context) (refreshed bool) {
	refreshed = true
	if !bs.refreshTree(&bs.Tree, pageHeight, ctx) {
		refreshed = false
	}
	if bs.FilteredTree != nil && !bs.refreshTree(&bs.FilteredTree, pageHeight, ctx) {
		refreshed = false
	}
	return refreshed
}

func (bs *BrowserState) refreshTree(slot **tree.Tree, pageHeight int, ctx *Context) bool {
	old := *slot
	selected := old.SelectedLine().Path
	builder, err := build.NewBuilder(old.Root(), old.Options, pageHeight, buildContext(ctx))
	if err != nil {
		slog.Warn("tree refresh failed", "root", old.Root(), "error", err)
		return false
	}
	rebuilt, err := builder.Build(false, dam.Unlimited())
	if err != nil {
		slog.Warn("tree refresh failed", "root", old.Root(), "error", err)
		return false
	}
	if rebuilt.TrySelectPath(selected) {
		rebuilt.MakeSelectionVisible(pageHeight)
	}
	*slot = rebuilt
	return true
}
