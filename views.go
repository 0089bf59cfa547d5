package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/burrowfs/burrow/internal/browser"
	"github.com/burrowfs/burrow/internal/gitstatus"
	"github.com/burrowfs/burrow/internal/tree"
)

func (m *model) View() string {
	if m.exiting {
		if m.exitStr == "" {
			return ""
		}
		return m.exitStr + "\n"
	}

	panelWidth := m.width / len(m.panels)
	columns := make([]string, 0, len(m.panels))
	for i, p := range m.panels {
		columns = append(columns, m.panelView(p, panelWidth, i == m.active))
	}
	view := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	return strings.Join([]string{view, m.statusBar(), m.input.View()}, "\n")
}

// panelView renders one panel: the visible slice of its displayed tree.
func (m *model) panelView(p *panel, width int, active bool) string {
	t := p.state.DisplayedTree()
	pageHeight := m.pageHeight()

	rows := make([]string, 0, pageHeight)
	rows = append(rows, m.renderLine(t, 0, width, active))
	start := t.Scroll + 1
	end := start + pageHeight - 1
	if end > len(t.Lines) {
		end = len(t.Lines)
	}
	for i := start; i < end; i++ {
		rows = append(rows, m.renderLine(t, i, width, active))
	}
	for len(rows) < pageHeight {
		rows = append(rows, strings.Repeat(" ", width))
	}
	return strings.Join(rows, "\n")
}

// renderLine draws one tree line: branch glyphs, name with match
// emphasis, then the per-line annotations.
func (m *model) renderLine(t *tree.Tree, idx, width int, active bool) string {
	line := &t.Lines[idx]

	var sb strings.Builder
	for k := 0; k < line.Depth; k++ {
		last := k == line.Depth-1
		open := k < len(line.LeftBranches) && line.LeftBranches[k]
		switch {
		case last && open:
			sb.WriteString(styleBranch.Render("├──"))
		case last:
			sb.WriteString(styleBranch.Render("└──"))
		case open:
			sb.WriteString(styleBranch.Render("│  "))
		default:
			sb.WriteString(styleBranch.Render("   "))
		}
	}

	if t.Options.ShowGitFileInfo && line.HasGitStatus {
		sb.WriteString(styleGitStatus.Render(line.GitStatus.Sign() + " "))
	}

	sb.WriteString(m.renderName(t, line))

	if line.Kind == tree.KindDir && line.UnlistedChildren > 0 {
		sb.WriteString(stylePruning.Render(fmt.Sprintf(" … %d unlisted", line.UnlistedChildren)))
	}
	if line.HasError {
		sb.WriteString(styleErrorBar.Render(" !"))
	}
	if line.Sum != nil && t.Options.Sort != tree.SortNone {
		sb.WriteString(styleSum.Render(" " + sumLabel(line.Sum, t.Options.Sort)))
	}
	if extract := m.contentExtract(t, line); extract != "" {
		sb.WriteString(stylePruning.Render("  " + extract))
	}

	rendered := sb.String()
	if printed := lipgloss.Width(rendered); printed < width {
		rendered += strings.Repeat(" ", width-printed)
	}
	if idx == t.Selection && active {
		return styleSelected.Render(rendered)
	}
	return rendered
}

// renderName styles the name by kind and underlines the matched runes.
func (m *model) renderName(t *tree.Tree, line *tree.TreeLine) string {
	style := styleFile
	name := line.Name
	switch line.Kind {
	case tree.KindDir:
		style = styleDir
		if line.Depth == 0 {
			name = line.Path
		}
	case tree.KindSymlink:
		style = styleSymlink
		name = line.Name + " -> " + line.SymlinkTarget
	case tree.KindBrokenSymlink:
		style = styleBrokenSymlink
		name = line.Name + " -> " + line.SymlinkTarget
	case tree.KindPruning:
		style = stylePruning
	}

	pat := t.Options.Pattern.Pattern()
	if line.DirectMatch && !pat.Object().Content {
		hay := line.Name
		if pat.Object().Subpath {
			hay = line.SubPath
		}
		if match := pat.SearchString(hay); match != nil && hay == line.Name {
			return emphasize(name, match.Positions, style)
		}
	}
	return style.Render(name)
}

// emphasize renders the name with the matched byte positions underlined.
func emphasize(name string, positions []int, base lipgloss.Style) string {
	matched := make(map[int]bool, len(positions))
	for _, p := range positions {
		matched[p] = true
	}
	var sb strings.Builder
	for i, r := range name {
		if matched[i] {
			sb.WriteString(styleMatched.Render(string(r)))
		} else {
			sb.WriteString(base.Render(string(r)))
		}
	}
	return sb.String()
}

// contentExtract shows the matched line of a content search next to the
// file name.
func (m *model) contentExtract(t *tree.Tree, line *tree.TreeLine) string {
	pat := t.Options.Pattern.Pattern()
	if !line.DirectMatch || line.Kind != tree.KindFile || !pat.Object().Content {
		return ""
	}
	extract := pat.SearchContent(line.Path, 48)
	if extract == nil {
		return ""
	}
	return strings.TrimSpace(extract.Extract)
}

func sumLabel(sum *tree.FileSum, sort tree.SortKey) string {
	switch sort {
	case tree.SortBySize:
		return formatBytes(sum.Bytes)
	case tree.SortByCount:
		return fmt.Sprintf("%d files", sum.Count)
	default:
		return fmt.Sprintf("@%d", sum.Seconds)
	}
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func (m *model) statusBar() string {
	if m.errorStr != "" {
		return styleErrorBar.Render(padTo(" "+m.errorStr, m.width))
	}

	state := m.activeState()
	parts := []string{}

	status := state.NoVerbStatus(len(m.activePanel().stack) > 0)
	switch {
	case state.GetMode() == browser.ModeCommand:
		parts = append(parts, "type a verb, enter to run, esc to cancel")
	case status.IsFiltered:
		parts = append(parts, "esc: clear filter")
	case status.OnTreeRoot:
		parts = append(parts, "type to filter, enter to open")
	case status.SelectionIsDir:
		parts = append(parts, "enter: focus directory")
	default:
		parts = append(parts, "enter: open file")
	}

	for _, f := range state.GetFlags() {
		parts = append(parts, f.Name+":"+f.Value)
	}

	t := state.DisplayedTree()
	if t.NbGitignored > 0 {
		parts = append(parts, fmt.Sprintf("%d gitignored", t.NbGitignored))
	}
	if !t.TotalSearch {
		parts = append(parts, "partial search")
	}
	if t.GitState == tree.GitStatusDone && t.TreeStatus != nil {
		parts = append(parts, gitSummary(t.TreeStatus))
	}
	if task := m.pendingTaskLabel(); task != "" {
		parts = append(parts, stylePendingTask.Render(task))
	}

	return styleStatusBar.Render(padTo(" "+strings.Join(parts, "  |  "), m.width))
}

func gitSummary(ts *gitstatus.TreeStatus) string {
	var sb strings.Builder
	if ts.Branch != "" {
		sb.WriteString(ts.Branch)
	}
	if ts.Staged > 0 {
		fmt.Fprintf(&sb, " +%d", ts.Staged)
	}
	if ts.Modified > 0 {
		fmt.Fprintf(&sb, " ~%d", ts.Modified)
	}
	if ts.Untracked > 0 {
		fmt.Fprintf(&sb, " ?%d", ts.Untracked)
	}
	return strings.TrimSpace(sb.String())
}

func padTo(s string, width int) string {
	if printed := lipgloss.Width(s); printed < width {
		return s + strings.Repeat(" ", width-printed)
	}
	return s
}
