package main

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/burrowfs/burrow/internal/browser"
	"github.com/burrowfs/burrow/internal/dam"
)

// pendingDoneMsg reports that one background tick finished.
type pendingDoneMsg struct{}

// fsEventMsg delivers a filesystem change under the watched root.
type fsEventMsg struct{}

// watchErrMsg delivers a watcher failure; the watcher is then dropped.
type watchErrMsg struct{ err error }

// panel couples a browser state with its history stack and purpose.
type panel struct {
	state       *browser.BrowserState
	stack       []*browser.BrowserState
	purpose     browser.Purpose
	previewPath string
}

func (p *panel) push(s *browser.BrowserState) {
	p.stack = append(p.stack, p.state)
	p.state = s
}

// pop restores the previous state; returns false when the stack is empty.
func (p *panel) pop() bool {
	if len(p.stack) == 0 {
		return false
	}
	p.state = p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return true
}

type model struct {
	panels []*panel
	active int
	ctx    *browser.Context
	input  textinput.Model

	width  int
	height int

	errorStr string
	exitStr  string
	exiting  bool

	// stateMu serializes foreground intents and the background worker on
	// the browser states. The worker polls the dam and returns promptly
	// once the foreground signals it.
	stateMu    sync.Mutex
	working    bool
	workingDam *dam.Dam

	watcher     *fsnotify.Watcher
	watchedRoot string
}

func newModel(state *browser.BrowserState, ctx *browser.Context) *model {
	input := textinput.New()
	input.Prompt = "> "
	input.Focus()
	m := &model{
		panels: []*panel{{state: state}},
		ctx:    ctx,
		input:  input,
		width:  80,
		height: 24,
	}
	if w, err := fsnotify.NewWatcher(); err == nil {
		m.watcher = w
		m.rewatch()
	}
	return m
}

func (m *model) activePanel() *panel {
	return m.panels[m.active]
}

func (m *model) activeState() *browser.BrowserState {
	return m.activePanel().state
}

// pageHeight is the number of lines the tree area can hold: the terminal
// height minus the input and status bars.
func (m *model) pageHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.pendingCmd(), m.watchCmd())
}

// pendingCmd starts one background tick when there is pending work and
// no tick is already in flight.
func (m *model) pendingCmd() tea.Cmd {
	if m.working {
		return nil
	}
	state := m.activeState()
	if state.GetPendingTask() == "" {
		return nil
	}
	d := dam.New()
	m.working = true
	m.workingDam = d
	pageHeight := m.pageHeight()
	ctx := m.ctx
	return func() tea.Msg {
		m.stateMu.Lock()
		state.DoPendingTask(pageHeight, ctx, d)
		m.stateMu.Unlock()
		return pendingDoneMsg{}
	}
}

// interruptWorker signals the in-flight tick, if any, so it returns
// before the next foreground mutation takes the lock.
func (m *model) interruptWorker() {
	if m.working && m.workingDam != nil {
		m.workingDam.Signal()
	}
}

// watchCmd waits for one filesystem event under the watched root.
func (m *model) watchCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	return func() tea.Msg {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
			return fsEventMsg{}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

// rewatch points the watcher at the current root directory.
func (m *model) rewatch() {
	if m.watcher == nil {
		return
	}
	root := m.activeState().Root()
	if root == m.watchedRoot {
		return
	}
	if m.watchedRoot != "" {
		_ = m.watcher.Remove(m.watchedRoot)
	}
	if err := m.watcher.Add(root); err != nil {
		m.watchedRoot = ""
		return
	}
	m.watchedRoot = root
}

func (m *model) setError(msg string) {
	m.errorStr = msg
}

func (m *model) clearError() {
	m.errorStr = ""
}

func (m *model) setExit(s string) {
	m.exitStr = s
	m.exiting = true
}

// applyResult routes a CmdResult to the shell behavior it requests.
func (m *model) applyResult(result browser.CmdResult) tea.Cmd {
	switch result.Kind {
	case browser.ResultKeep:
		return nil
	case browser.ResultPopState:
		if !m.activePanel().pop() {
			if len(m.panels) > 1 {
				m.closePanel(m.active)
				return nil
			}
			m.setExit("")
			return tea.Quit
		}
		m.syncInput()
		m.rewatch()
		return nil
	case browser.ResultQuit:
		m.setExit(m.exitStr)
		return tea.Quit
	case browser.ResultNewState:
		switch result.Placement {
		case browser.PlaceCurrent:
			m.activePanel().push(result.State)
		case browser.PlaceLeft:
			m.insertPanel(m.active, &panel{
				state:       result.State,
				purpose:     result.Purpose,
				previewPath: result.PreviewPath,
			})
		case browser.PlaceRight:
			m.insertPanel(m.active+1, &panel{
				state:       result.State,
				purpose:     result.Purpose,
				previewPath: result.PreviewPath,
			})
			if m.active < len(m.panels)-1 {
				m.active++
			}
		}
		m.syncInput()
		m.rewatch()
		return nil
	case browser.ResultClosePanel:
		m.closePanel(m.active)
		return nil
	case browser.ResultError:
		m.setError(result.Msg)
		return nil
	case browser.ResultHandleInApp:
		switch result.Intent {
		case browser.IntentPanelLeft:
			if m.active > 0 {
				m.active--
			} else if len(m.panels) > 1 {
				m.closePanel(len(m.panels) - 1)
			}
		case browser.IntentPanelRight:
			if m.active < len(m.panels)-1 {
				m.active++
			} else if len(m.panels) > 1 {
				m.closePanel(0)
			}
		}
		m.syncInput()
		m.rewatch()
		return nil
	}
	return nil
}

func (m *model) insertPanel(at int, p *panel) {
	if len(m.panels) >= m.ctx.MaxPanels {
		return
	}
	m.panels = append(m.panels, nil)
	copy(m.panels[at+1:], m.panels[at:])
	m.panels[at] = p
}

func (m *model) closePanel(at int) {
	if len(m.panels) == 1 {
		return
	}
	m.panels = append(m.panels[:at], m.panels[at+1:]...)
	if m.active >= len(m.panels) {
		m.active = len(m.panels) - 1
	}
	m.syncInput()
	m.rewatch()
}

// panelsContext describes the active panel for the panel intents.
func (m *model) panelsContext() browser.PanelsContext {
	hasPreview := false
	for _, p := range m.panels {
		if p.purpose == browser.PurposePreview {
			hasPreview = true
		}
	}
	return browser.PanelsContext{
		IsFirst:         m.active == 0,
		IsLast:          m.active == len(m.panels)-1,
		Count:           len(m.panels),
		HasPreviewPanel: hasPreview,
	}
}

// syncInput refills the input field from the newly focused state.
func (m *model) syncInput() {
	m.input.SetValue(m.activeState().GetStartingInput())
	m.input.CursorEnd()
}

func (m *model) pendingTaskLabel() string {
	if task := m.activeState().GetPendingTask(); task != "" {
		return fmt.Sprintf("%s…", task)
	}
	return ""
}
