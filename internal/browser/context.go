package browser

import (
	"github.com/burrowfs/burrow/internal/special"
	"github.com/burrowfs/burrow/internal/tree"
)

// Printer is the print collaborator: it writes paths or whole trees on
// the alternate output, outside the drawn screen.
type Printer interface {
	PrintPath(path string) error
	PrintRelativePath(path string) error
	PrintTree(t *tree.Tree) error
}

// Context bundles the collaborators shared by every browser state of the
// application.
type Context struct {
	Special   *special.List
	MaxPanels int
	// Open hands a file to the platform opener.
	Open    func(path string) error
	Printer Printer
}

// PanelsContext describes the panel the intent came from, so the state
// can decide between creating a panel and deferring to the shell.
type PanelsContext struct {
	IsFirst         bool
	IsLast          bool
	Count           int
	HasPreviewPanel bool
}

// Flag is a short option indicator displayed by the shell.
type Flag struct {
	Name  string
	Value string
}

// Status summarizes the state for the status line when no verb is being
// typed.
type Status struct {
	HasPreviousState  bool
	IsFiltered        bool
	OnTreeRoot        bool
	SelectionIsDir    bool
	SelectionHasError bool
}
