package browser

import "fmt"

// ResultKind discriminates the outcomes an intent can produce.
type ResultKind int

const (
	ResultKeep ResultKind = iota
	ResultPopState
	ResultQuit
	ResultNewState
	ResultClosePanel
	ResultError
	ResultHandleInApp
)

// Intent names the operations the shell may be asked to handle itself.
type Intent int

const (
	IntentPanelLeft Intent = iota
	IntentPanelRight
)

// Placement says where a new state should go.
type Placement int

const (
	PlaceCurrent Placement = iota
	PlaceLeft
	PlaceRight
)

// Purpose qualifies a requested panel.
type Purpose int

const (
	PurposeNone Purpose = iota
	PurposePreview
)

// CmdResult is what every intent receiver returns to the shell.
type CmdResult struct {
	Kind            ResultKind
	State           *BrowserState
	Placement       Placement
	Purpose         Purpose
	PreviewPath     string
	Msg             string
	Intent          Intent
	ValidatePurpose bool
}

func keep() CmdResult {
	return CmdResult{Kind: ResultKeep}
}

func popState() CmdResult {
	return CmdResult{Kind: ResultPopState}
}

func quit() CmdResult {
	return CmdResult{Kind: ResultQuit}
}

func newState(s *BrowserState, placement Placement) CmdResult {
	return CmdResult{Kind: ResultNewState, State: s, Placement: placement}
}

func errorf(format string, args ...any) CmdResult {
	return CmdResult{Kind: ResultError, Msg: fmt.Sprintf(format, args...)}
}

func handleInApp(intent Intent) CmdResult {
	return CmdResult{Kind: ResultHandleInApp, Intent: intent}
}
