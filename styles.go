package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var hasDarkBackground = termenv.HasDarkBackground()

func adaptive(light, dark string) lipgloss.Color {
	if hasDarkBackground {
		return lipgloss.Color(dark)
	}
	return lipgloss.Color(light)
}

var (
	styleDir = lipgloss.NewStyle().
			Foreground(adaptive("25", "39")).
			Bold(true)
	styleFile    = lipgloss.NewStyle()
	styleSymlink = lipgloss.NewStyle().
			Foreground(adaptive("30", "43"))
	styleBrokenSymlink = lipgloss.NewStyle().
				Foreground(adaptive("124", "167")).
				Strikethrough(true)
	stylePruning = lipgloss.NewStyle().
			Foreground(adaptive("243", "243")).
			Italic(true)
	styleBranch = lipgloss.NewStyle().
			Foreground(adaptive("250", "240"))
	styleMatched = lipgloss.NewStyle().
			Foreground(adaptive("127", "213")).
			Underline(true)
	styleSelected = lipgloss.NewStyle().
			Background(adaptive("254", "236"))
	styleGitStatus = lipgloss.NewStyle().
			Foreground(adaptive("130", "178"))
	styleSum = lipgloss.NewStyle().
			Foreground(adaptive("240", "246"))
	styleErrorBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(adaptive("124", "88"))
	styleStatusBar = lipgloss.NewStyle().
			Foreground(adaptive("238", "250")).
			Background(adaptive("253", "237"))
	stylePendingTask = lipgloss.NewStyle().
				Foreground(adaptive("94", "172")).
				Italic(true)
)
