package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/burrowfs/burrow/internal/browser"
	"github.com/burrowfs/burrow/internal/pattern"
	"github.com/burrowfs/burrow/internal/tree"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case pendingDoneMsg:
		m.working = false
		m.workingDam = nil
		return m, m.pendingCmd()

	case fsEventMsg:
		if result := actionRefresh(m); !result.noop {
			return m, tea.Batch(result.cmd, m.watchCmd())
		}
		return m, m.watchCmd()

	case watchErrMsg:
		m.watcher = nil
		return m, nil

	case tea.KeyMsg:
		if result := actionQuit(m, msg); !result.noop {
			return m, result.cmd
		}
		if m.errorStr != "" {
			m.clearError()
		}
		if m.activeState().GetMode() == browser.ModeCommand {
			if result := actionModeCommand(m, msg); !result.noop {
				return m, tea.Batch(result.cmd, m.pendingCmd())
			}
		}
		if result := actionNavigate(m, msg); !result.noop {
			return m, tea.Batch(result.cmd, m.pendingCmd())
		}
		if result := actionInput(m, msg); !result.noop {
			return m, tea.Batch(result.cmd, m.pendingCmd())
		}
	}

	return m, nil
}

type actionResult struct {
	noop bool
	cmd  tea.Cmd
}

func newActionResult(cmd tea.Cmd) actionResult {
	return actionResult{noop: false, cmd: cmd}
}

func newActionResultNoop() actionResult {
	return actionResult{noop: true, cmd: nil}
}

func actionQuit(m *model, msg tea.KeyMsg) actionResult {
	if key.Matches(msg, keyQuit) {
		m.interruptWorker()
		m.setExit("")
		return newActionResult(tea.Quit)
	}
	return newActionResultNoop()
}

// actionNavigate handles the intents that move within or between trees.
func actionNavigate(m *model, msg tea.KeyMsg) actionResult {
	state := m.activeState()
	pageHeight := m.pageHeight()

	intent := func(run func() browser.CmdResult) actionResult {
		m.interruptWorker()
		m.stateMu.Lock()
		result := run()
		m.stateMu.Unlock()
		return newActionResult(m.applyResult(result))
	}

	switch {

	case key.Matches(msg, keyEsc):
		if m.input.Value() != "" {
			m.input.SetValue("")
			return intent(func() browser.CmdResult {
				return state.OnPattern(pattern.NoInput())
			})
		}
		return intent(func() browser.CmdResult {
			return state.Back(pageHeight)
		})

	case key.Matches(msg, keyOpen):
		return intent(func() browser.CmdResult {
			return state.OpenStay(pageHeight, m.ctx, false, false)
		})

	case key.Matches(msg, keyOpenKeepPattern):
		return intent(func() browser.CmdResult {
			return state.OpenStay(pageHeight, m.ctx, false, true)
		})

	case key.Matches(msg, keyEnterDir):
		if state.Selection().IsDir() {
			return intent(func() browser.CmdResult {
				return state.OpenStay(pageHeight, m.ctx, false, false)
			})
		}
		return newActionResult(nil)

	case key.Matches(msg, keyParent):
		return intent(func() browser.CmdResult {
			return state.GoToParent(pageHeight, m.ctx, false)
		})

	case key.Matches(msg, keyUpTree):
		return intent(func() browser.CmdResult {
			return state.UpTree(pageHeight, m.ctx, false)
		})

	case key.Matches(msg, keyUp):
		return intent(func() browser.CmdResult {
			return state.LineMove(-1, pageHeight, true)
		})

	case key.Matches(msg, keyDown):
		return intent(func() browser.CmdResult {
			return state.LineMove(1, pageHeight, true)
		})

	case key.Matches(msg, keyPageUp):
		return intent(func() browser.CmdResult {
			return state.PageUp(pageHeight)
		})

	case key.Matches(msg, keyPageDown):
		return intent(func() browser.CmdResult {
			return state.PageDown(pageHeight)
		})

	case key.Matches(msg, keyNextMatch):
		return intent(func() browser.CmdResult {
			return state.NextMatch()
		})

	case key.Matches(msg, keyPreviousMatch):
		return intent(func() browser.CmdResult {
			return state.PreviousMatch()
		})

	case key.Matches(msg, keyNextSameDepth):
		return intent(func() browser.CmdResult {
			return state.NextSameDepth()
		})

	case key.Matches(msg, keyPreviousSameDepth):
		return intent(func() browser.CmdResult {
			return state.PreviousSameDepth()
		})

	case key.Matches(msg, keySelectFirst):
		return intent(func() browser.CmdResult {
			return state.SelectFirst()
		})

	case key.Matches(msg, keySelectLast):
		return intent(func() browser.CmdResult {
			return state.SelectLast(pageHeight)
		})

	case key.Matches(msg, keyPanelLeft):
		return intent(func() browser.CmdResult {
			return state.PanelLeft(m.panelsContext(), pageHeight, m.ctx)
		})

	case key.Matches(msg, keyPanelRight):
		return intent(func() browser.CmdResult {
			return state.PanelRight(m.panelsContext(), pageHeight, m.ctx)
		})

	case key.Matches(msg, keyTotalSearch):
		return intent(func() browser.CmdResult {
			return state.TotalSearch()
		})

	case key.Matches(msg, keyRefresh):
		return actionRefresh(m)

	case key.Matches(msg, keyToggleHidden):
		return actionWithNewOptions(m, func(o *tree.Options) {
			o.ShowHidden = !o.ShowHidden
		})

	case key.Matches(msg, keyToggleGitIgnore):
		return actionWithNewOptions(m, func(o *tree.Options) {
			o.RespectGitIgnore = !o.RespectGitIgnore
		})

	case key.Matches(msg, keyCommandMode):
		if m.input.Value() == "" {
			m.activeState().SetMode(browser.ModeCommand)
			m.input.Prompt = ": "
			return newActionResult(nil)
		}
	}

	return newActionResultNoop()
}

// actionInput feeds everything else to the input field and submits the
// typed pattern.
func actionInput(m *model, msg tea.KeyMsg) actionResult {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	after := m.input.Value()
	if after == before {
		return newActionResult(cmd)
	}
	m.interruptWorker()
	m.stateMu.Lock()
	result := m.activeState().OnPattern(pattern.ParseInput(after))
	m.stateMu.Unlock()
	return newActionResult(tea.Batch(cmd, m.applyResult(result)))
}

// actionModeCommand interprets one typed command verb.
func actionModeCommand(m *model, msg tea.KeyMsg) actionResult {
	switch {
	case key.Matches(msg, keyEsc):
		m.leaveCommandMode()
		return newActionResult(nil)

	case key.Matches(msg, keyOpen):
		verb := strings.TrimSpace(m.input.Value())
		m.leaveCommandMode()
		return m.runVerb(verb)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return newActionResult(cmd)
}

func (m *model) leaveCommandMode() {
	m.activeState().SetMode(browser.ModeInput)
	m.input.Prompt = "> "
	m.input.SetValue("")
}

// runVerb executes a command-mode verb.
func (m *model) runVerb(verb string) actionResult {
	state := m.activeState()
	pageHeight := m.pageHeight()

	intent := func(run func() browser.CmdResult) actionResult {
		m.interruptWorker()
		m.stateMu.Lock()
		result := run()
		m.stateMu.Unlock()
		return newActionResult(m.applyResult(result))
	}

	switch verb {
	case "q", "quit":
		return intent(state.Quit)
	case "pp", "print_path":
		return intent(func() browser.CmdResult { return state.PrintPath(m.ctx) })
	case "prp", "print_relative_path":
		return intent(func() browser.CmdResult { return state.PrintRelativePath(m.ctx) })
	case "pt", "print_tree":
		return intent(func() browser.CmdResult { return state.PrintTree(m.ctx) })
	case "ts", "total_search":
		return intent(state.TotalSearch)
	case "parent":
		return intent(func() browser.CmdResult { return state.GoToParent(pageHeight, m.ctx, false) })
	case "refresh":
		return actionRefresh(m)
	case "sd", "sort_by_date":
		return actionWithNewOptions(m, func(o *tree.Options) { o.Sort = tree.SortByDate })
	case "ss", "sort_by_size":
		return actionWithNewOptions(m, func(o *tree.Options) { o.Sort = tree.SortBySize })
	case "sc", "sort_by_count":
		return actionWithNewOptions(m, func(o *tree.Options) { o.Sort = tree.SortByCount })
	case "ns", "no_sort":
		return actionWithNewOptions(m, func(o *tree.Options) { o.Sort = tree.SortNone })
	case "folders":
		return actionWithNewOptions(m, func(o *tree.Options) { o.OnlyFolders = !o.OnlyFolders })
	case "gf", "git_flags":
		return actionWithNewOptions(m, func(o *tree.Options) {
			o.ShowGitFileInfo = !o.ShowGitFileInfo
		})
	case "gs", "git_status_filter":
		return actionWithNewOptions(m, func(o *tree.Options) {
			o.FilterByGitStatus = !o.FilterByGitStatus
		})
	case "":
		return newActionResult(nil)
	}
	m.setError("unknown verb: " + verb)
	return newActionResult(nil)
}

// actionWithNewOptions rebuilds the current root under changed options,
// stacking the previous state.
func actionWithNewOptions(m *model, change func(*tree.Options)) actionResult {
	m.interruptWorker()
	m.stateMu.Lock()
	state := m.activeState()
	options := state.TreeOptions()
	change(&options)
	result := state.NewStateWithOptions(state.DisplayedTree().Root(), options, m.pageHeight(), m.ctx)
	cmd := m.applyResult(result)
	m.stateMu.Unlock()
	return newActionResult(cmd)
}

// actionRefresh rebuilds the trees of the active panel in place.
func actionRefresh(m *model) actionResult {
	m.interruptWorker()
	m.stateMu.Lock()
	ok := m.activeState().Refresh(m.pageHeight(), m.ctx)
	m.stateMu.Unlock()
	if !ok {
		m.setError("refresh failed")
	}
	return newActionResult(m.pendingCmd())
}
