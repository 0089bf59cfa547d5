package main

import "github.com/charmbracelet/bubbles/key"

var (
	keyQuit = key.NewBinding(
		key.WithKeys("ctrl+q", "ctrl+c"),
		key.WithHelp("ctrl+q", "quit"),
	)
	keyEsc = key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	)
	keyOpen = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	)
	keyOpenKeepPattern = key.NewBinding(
		key.WithKeys("alt+enter"),
		key.WithHelp("alt+enter", "open, keep filter"),
	)
	keyUp = key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "line up"),
	)
	keyDown = key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "line down"),
	)
	keyPageUp = key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	)
	keyPageDown = key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	)
	keyParent = key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "go to parent"),
	)
	keyEnterDir = key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "focus directory"),
	)
	keyUpTree = key.NewBinding(
		key.WithKeys("ctrl+up"),
		key.WithHelp("ctrl+↑", "root up"),
	)
	keyNextMatch = key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next match"),
	)
	keyPreviousMatch = key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous match"),
	)
	keyNextSameDepth = key.NewBinding(
		key.WithKeys("alt+down"),
		key.WithHelp("alt+↓", "next sibling"),
	)
	keyPreviousSameDepth = key.NewBinding(
		key.WithKeys("alt+up"),
		key.WithHelp("alt+↑", "previous sibling"),
	)
	keySelectFirst = key.NewBinding(
		key.WithKeys("home"),
		key.WithHelp("home", "select first"),
	)
	keySelectLast = key.NewBinding(
		key.WithKeys("end"),
		key.WithHelp("end", "select last"),
	)
	keyPanelLeft = key.NewBinding(
		key.WithKeys("ctrl+left"),
		key.WithHelp("ctrl+←", "panel left"),
	)
	keyPanelRight = key.NewBinding(
		key.WithKeys("ctrl+right"),
		key.WithHelp("ctrl+→", "panel right"),
	)
	keyTotalSearch = key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "total search"),
	)
	keyRefresh = key.NewBinding(
		key.WithKeys("f5"),
		key.WithHelp("f5", "refresh"),
	)
	keyToggleHidden = key.NewBinding(
		key.WithKeys("alt+h"),
		key.WithHelp("alt+h", "toggle hidden"),
	)
	keyToggleGitIgnore = key.NewBinding(
		key.WithKeys("alt+i"),
		key.WithHelp("alt+i", "toggle gitignore"),
	)
	keyCommandMode = key.NewBinding(
		key.WithKeys(":"),
		key.WithHelp(":", "command mode"),
	)
)
