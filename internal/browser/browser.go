// Package browser implements the stateful controller of a tree panel: it
// owns the base tree and an optional filtered overlay, interprets user
// intents, and delegates long running work to the pending-task
// dispatcher.
package browser

import (
	"path/filepath"

	"github.com/burrowfs/burrow/internal/build"
	"github.com/burrowfs/burrow/internal/dam"
	"github.com/burrowfs/burrow/internal/pattern"
	"github.com/burrowfs/burrow/internal/tree"
)

// Mode is the input mode of the panel.
type Mode int

const (
	ModeInput Mode = iota
	ModeCommand
)

// BrowserState owns one base tree and an optional filtered overlay. The
// displayed tree is the overlay when there is one.
type BrowserState struct {
	Tree                *tree.Tree
	FilteredTree        *tree.Tree
	PendingPattern      pattern.InputPattern
	TotalSearchRequired bool
	mode                Mode
}

// NewBrowserState builds a state rooted at path. The options' pattern, if
// any, is not applied synchronously: it becomes the pending pattern and
// the filtered tree is built by the next background tick. Returns
// build.ErrCancelled when the dam fired.
func NewBrowserState(
	path string,
	options tree.Options,
	pageHeight int,
	ctx *Context,
	d *dam.Dam,
) (*BrowserState, error) {
	pendingPattern := options.Pattern.Take()
	builder, err := build.NewBuilder(path, options, pageHeight, buildContext(ctx))
	if err != nil {
		return nil, err
	}
	t, err := builder.Build(false, d)
	if err != nil {
		return nil, err
	}
	return &BrowserState{
		Tree:           t,
		PendingPattern: pendingPattern,
	}, nil
}

func buildContext(ctx *Context) *build.Context {
	if ctx == nil {
		return &build.Context{}
	}
	return &build.Context{Special: ctx.Special}
}

// DisplayedTree returns the tree the user sees: the filtered overlay when
// present, the base tree otherwise.
func (bs *BrowserState) DisplayedTree() *tree.Tree {
	if bs.FilteredTree != nil {
		return bs.FilteredTree
	}
	return bs.Tree
}

// Root returns the root path of the base tree.
func (bs *BrowserState) Root() string {
	return bs.Tree.Root()
}

// SetMode switches between input and command mode.
func (bs *BrowserState) SetMode(mode Mode) {
	bs.mode = mode
}

// GetMode returns the current mode.
func (bs *BrowserState) GetMode() Mode {
	return bs.mode
}

// OpenStay opens the selection without leaving the explorer: directories
// become the root of a new state, files go to the platform opener. The
// search pattern survives only when keepPattern is set.
func (bs *BrowserState) OpenStay(pageHeight int, ctx *Context, inNewPanel, keepPattern bool) CmdResult {
	t := bs.DisplayedTree()
	line := t.SelectedLine()
	target := line.Target()
	if line.IsDir() {
		if t.Selection == 0 {
			// opening the root would go where we already are; go up one
			// level instead
			target = filepath.Dir(target)
		}
		options := t.Options
		if !keepPattern {
			options = options.WithoutPattern()
		}
		return bs.stateResult(target, options, pageHeight, ctx, placementFor(inNewPanel))
	}
	if ctx.Open == nil {
		return errorf("no opener configured")
	}
	if err := ctx.Open(target); err != nil {
		return errorf("open failed: %v", err)
	}
	return keep()
}

// GoToParent roots a new state at the parent of the selection. The
// pattern is dropped.
func (bs *BrowserState) GoToParent(pageHeight int, ctx *Context, inNewPanel bool) CmdResult {
	selected := bs.DisplayedTree().SelectedLine().Path
	parent := filepath.Dir(selected)
	if parent == selected {
		return errorf("no parent found")
	}
	return bs.stateResult(parent, bs.DisplayedTree().Options.WithoutPattern(), pageHeight, ctx, placementFor(inNewPanel))
}

// UpTree roots a new state at the parent of the tree root.
func (bs *BrowserState) UpTree(pageHeight int, ctx *Context, bang bool) CmdResult {
	root := bs.DisplayedTree().Root()
	parent := filepath.Dir(root)
	if parent == root {
		return errorf("no parent found")
	}
	return bs.stateResult(parent, bs.DisplayedTree().Options, pageHeight, ctx, placementFor(bang))
}

// Back unwinds one step: drop the overlay (reselecting its selection in
// the base tree), else deselect, else pop the state.
func (bs *BrowserState) Back(pageHeight int) CmdResult {
	if bs.FilteredTree != nil {
		selected := bs.FilteredTree.SelectedLine().Path
		if bs.Tree.TrySelectPath(selected) {
			bs.Tree.MakeSelectionVisible(pageHeight)
		}
		bs.FilteredTree = nil
		return keep()
	}
	if bs.Tree.Selection > 0 {
		bs.Tree.Selection = 0
		return keep()
	}
	return popState()
}

// LineMove moves the selection by count lines, cycling at the edges when
// cycle is set.
func (bs *BrowserState) LineMove(count, pageHeight int, cycle bool) CmdResult {
	bs.DisplayedTree().MoveSelection(count, pageHeight, cycle)
	return keep()
}

// PageDown scrolls one page down when the tree is taller than a page.
func (bs *BrowserState) PageDown(pageHeight int) CmdResult {
	t := bs.DisplayedTree()
	if pageHeight < len(t.Lines) {
		t.TryScroll(pageHeight, pageHeight)
	}
	return keep()
}

// PageUp scrolls one page up when the tree is taller than a page.
func (bs *BrowserState) PageUp(pageHeight int) CmdResult {
	t := bs.DisplayedTree()
	if pageHeight < len(t.Lines) {
		t.TryScroll(-pageHeight, pageHeight)
	}
	return keep()
}

// NextMatch selects the next direct match.
func (bs *BrowserState) NextMatch() CmdResult {
	bs.DisplayedTree().TrySelectNextMatch()
	return keep()
}

// PreviousMatch selects the previous direct match.
func (bs *BrowserState) PreviousMatch() CmdResult {
	bs.DisplayedTree().TrySelectPreviousMatch()
	return keep()
}

// NextSameDepth selects the next line of the same depth.
func (bs *BrowserState) NextSameDepth() CmdResult {
	bs.DisplayedTree().TrySelectNextSameDepth()
	return keep()
}

// PreviousSameDepth selects the previous line of the same depth.
func (bs *BrowserState) PreviousSameDepth() CmdResult {
	bs.DisplayedTree().TrySelectPreviousSameDepth()
	return keep()
}

// SelectFirst selects the root.
func (bs *BrowserState) SelectFirst() CmdResult {
	bs.DisplayedTree().TrySelectFirst()
	return keep()
}

// SelectLast selects the last line.
func (bs *BrowserState) SelectLast(pageHeight int) CmdResult {
	bs.DisplayedTree().TrySelectLast(pageHeight)
	return keep()
}

// PanelLeft creates a panel on the left when the current panel is the
// leftmost and there is room, and defers to the shell otherwise.
func (bs *BrowserState) PanelLeft(pc PanelsContext, pageHeight int, ctx *Context) CmdResult {
	if pc.IsFirst && pc.Count < ctx.MaxPanels {
		return bs.panelOnSelection(pageHeight, ctx, PlaceLeft, PurposeNone)
	}
	return handleInApp(IntentPanelLeft)
}

// PanelRight creates a panel on the right when the current panel is the
// rightmost and there is room; a selected file with no preview panel yet
// requests a preview. Other cases are deferred to the shell.
func (bs *BrowserState) PanelRight(pc PanelsContext, pageHeight int, ctx *Context) CmdResult {
	if pc.IsLast && pc.Count < ctx.MaxPanels {
		purpose := PurposeNone
		line := bs.DisplayedTree().SelectedLine()
		if !line.IsDir() && !pc.HasPreviewPanel {
			purpose = PurposePreview
		}
		return bs.panelOnSelection(pageHeight, ctx, PlaceRight, purpose)
	}
	return handleInApp(IntentPanelRight)
}

func (bs *BrowserState) panelOnSelection(pageHeight int, ctx *Context, placement Placement, purpose Purpose) CmdResult {
	line := bs.DisplayedTree().SelectedLine()
	root := line.Path
	if !line.IsDir() {
		root = filepath.Dir(root)
	}
	result := bs.stateResult(root, bs.DisplayedTree().Options, pageHeight, ctx, placement)
	if result.Kind == ResultNewState {
		result.Purpose = purpose
		if purpose == PurposePreview {
			result.PreviewPath = line.Path
		}
	}
	return result
}

// NewStateWithOptions builds a replacement state on the given root with
// changed options, for the option-toggling verbs.
func (bs *BrowserState) NewStateWithOptions(root string, options tree.Options, pageHeight int, ctx *Context) CmdResult {
	return bs.stateResult(root, options, pageHeight, ctx, PlaceCurrent)
}

// OnPattern records the pattern for the background worker. An empty
// pattern discards the overlay immediately; nothing is built
// synchronously either way.
func (bs *BrowserState) OnPattern(ip pattern.InputPattern) CmdResult {
	if !ip.IsSome() {
		bs.FilteredTree = nil
	}
	bs.PendingPattern = ip
	return keep()
}

// TotalSearch re-submits the overlay's pattern in total search mode. Only
// valid after a bounded search.
func (bs *BrowserState) TotalSearch() CmdResult {
	if bs.FilteredTree == nil {
		return errorf("this verb can be used only after a search")
	}
	if bs.FilteredTree.TotalSearch {
		return errorf("search was already total: all children have been rated")
	}
	bs.PendingPattern = bs.FilteredTree.Options.Pattern
	bs.TotalSearchRequired = true
	return keep()
}

// PrintPath prints the selected path through the print collaborator.
func (bs *BrowserState) PrintPath(ctx *Context) CmdResult {
	if ctx.Printer == nil {
		return errorf("print is not available")
	}
	if err := ctx.Printer.PrintPath(bs.DisplayedTree().SelectedLine().Target()); err != nil {
		return errorf("print failed: %v", err)
	}
	return quit()
}

// PrintRelativePath prints the selected path relative to the working
// directory.
func (bs *BrowserState) PrintRelativePath(ctx *Context) CmdResult {
	if ctx.Printer == nil {
		return errorf("print is not available")
	}
	if err := ctx.Printer.PrintRelativePath(bs.DisplayedTree().SelectedLine().Target()); err != nil {
		return errorf("print failed: %v", err)
	}
	return quit()
}

// PrintTree prints the displayed tree.
func (bs *BrowserState) PrintTree(ctx *Context) CmdResult {
	if ctx.Printer == nil {
		return errorf("print is not available")
	}
	if err := ctx.Printer.PrintTree(bs.DisplayedTree()); err != nil {
		return errorf("print failed: %v", err)
	}
	return quit()
}

// Quit asks the shell to leave.
func (bs *BrowserState) Quit() CmdResult {
	return quit()
}

// ClearPending drops any not-yet-applied pattern.
func (bs *BrowserState) ClearPending() {
	bs.PendingPattern = pattern.NoInput()
}

// SelectedPath returns the path under the cursor.
func (bs *BrowserState) SelectedPath() string {
	return bs.DisplayedTree().SelectedLine().Path
}

// Selection returns the line under the cursor.
func (bs *BrowserState) Selection() *tree.TreeLine {
	return bs.DisplayedTree().SelectedLine()
}

// TreeOptions returns the options of the displayed tree.
func (bs *BrowserState) TreeOptions() tree.Options {
	return bs.DisplayedTree().Options
}

// GetFlags returns the short option indicators for the status area.
func (bs *BrowserState) GetFlags() []Flag {
	options := bs.DisplayedTree().Options
	return []Flag{
		{Name: "h", Value: yn(options.ShowHidden)},
		{Name: "gi", Value: yn(options.RespectGitIgnore)},
	}
}

// GetStartingInput returns what the input field should be prefilled with
// when the state regains focus.
func (bs *BrowserState) GetStartingInput() string {
	if bs.PendingPattern.IsSome() {
		return bs.PendingPattern.Raw
	}
	return bs.DisplayedTree().Options.Pattern.Raw
}

// NoVerbStatus summarizes the state for the default status line.
func (bs *BrowserState) NoVerbStatus(hasPreviousState bool) Status {
	line := bs.DisplayedTree().SelectedLine()
	return Status{
		HasPreviousState:  hasPreviousState,
		IsFiltered:        bs.FilteredTree != nil,
		OnTreeRoot:        bs.DisplayedTree().Selection == 0,
		SelectionIsDir:    line.IsDir(),
		SelectionHasError: line.HasError,
	}
}

// stateResult builds a new browser state and wraps it, turning build
// failures into error results. Navigation builds run under an unlimited
// dam.
func (bs *BrowserState) stateResult(
	root string,
	options tree.Options,
	pageHeight int,
	ctx *Context,
	placement Placement,
) CmdResult {
	state, err := NewBrowserState(root, options, pageHeight, ctx, dam.Unlimited())
	if err != nil {
		return errorf("%v", err)
	}
	return newState(state, placement)
}

func placementFor(inNewPanel bool) Placement {
	if inNewPanel {
		return PlaceRight
	}
	return PlaceCurrent
}

func yn(b bool) string {
	if b {
		return "y"
	}
	return "n"
}
