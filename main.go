package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"

	"github.com/burrowfs/burrow/internal/browser"
	"github.com/burrowfs/burrow/internal/dam"
	"github.com/burrowfs/burrow/internal/pattern"
	"github.com/burrowfs/burrow/internal/special"
	"github.com/burrowfs/burrow/internal/tree"
)

const (
	maxPanels = 3
	// height used for the initial build, before the terminal reports its
	// real size
	bootstrapPageHeight = 40
)

var (
	flagHidden          bool
	flagNoGitIgnore     bool
	flagOnlyFolders     bool
	flagShowGitInfo     bool
	flagGitStatusFilter bool
	flagNoTrimRoot      bool
	flagSort            string
	flagCmd             string
	flagSpecialPaths    []string
	flagVerbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "burrow [path]",
	Short: "burrow is an interactive directory tree explorer",
	Long: `burrow shows a bounded view of a directory tree that always fits the
terminal, and narrows it as you type: matching files stay visible with
their ancestors while everything else is trimmed away.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		return run(root)
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&flagHidden, "hidden", "H", false, "show hidden files")
	rootCmd.Flags().BoolVarP(&flagNoGitIgnore, "no-gitignore", "I", false, "do not respect .gitignore files")
	rootCmd.Flags().BoolVarP(&flagOnlyFolders, "only-folders", "f", false, "only show folders")
	rootCmd.Flags().BoolVarP(&flagShowGitInfo, "show-git-info", "g", false, "show per-file git status")
	rootCmd.Flags().BoolVar(&flagGitStatusFilter, "git-status-filter", false, "only show files having a git status")
	rootCmd.Flags().BoolVar(&flagNoTrimRoot, "no-trim-root", false, "list the whole root directory when no pattern is set")
	rootCmd.Flags().StringVar(&flagSort, "sort", "", "sort a single level by date, size or count")
	rootCmd.Flags().StringVar(&flagCmd, "cmd", "", "initial search pattern")
	rootCmd.Flags().StringArrayVar(&flagSpecialPaths, "special-path", nil,
		"glob:handling pair, handling one of hide, no-enter, no-expand (repeatable)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug information to burrow.log")
}

func run(root string) error {
	initLogger()

	options := tree.Options{
		ShowHidden:        flagHidden,
		RespectGitIgnore:  !flagNoGitIgnore,
		FilterByGitStatus: flagGitStatusFilter,
		ShowGitFileInfo:   flagShowGitInfo,
		OnlyFolders:       flagOnlyFolders,
		TrimRoot:          !flagNoTrimRoot,
		Pattern:           pattern.ParseInput(flagCmd),
	}
	var err error
	if options.Sort, err = parseSort(flagSort); err != nil {
		return err
	}
	specials, err := parseSpecialPaths(flagSpecialPaths)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot determine working directory: %w", err)
	}
	printer := newTreePrinter(cwd)
	ctx := &browser.Context{
		Special:   specials,
		MaxPanels: maxPanels,
		Open:      open.Run,
		Printer:   printer,
	}

	state, err := browser.NewBrowserState(root, options, bootstrapPageHeight, ctx, dam.Unlimited())
	if err != nil {
		return err
	}

	m := newModel(state, ctx)
	defer func() {
		if m.watcher != nil {
			m.watcher.Close()
		}
	}()
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("program failed: %w", err)
	}
	if out := printer.Output(); out != "" {
		fmt.Print(out)
	}
	return nil
}

func initLogger() {
	if !flagVerbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	f, err := os.OpenFile("burrow.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

func parseSort(s string) (tree.SortKey, error) {
	switch s {
	case "":
		return tree.SortNone, nil
	case "date":
		return tree.SortByDate, nil
	case "size":
		return tree.SortBySize, nil
	case "count":
		return tree.SortByCount, nil
	}
	return tree.SortNone, fmt.Errorf("unknown sort key %q (want date, size or count)", s)
}

func parseSpecialPaths(raw []string) (*special.List, error) {
	rules := make([]special.Rule, 0, len(raw))
	for _, entry := range raw {
		glob, handling, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid special path %q (want glob:handling)", entry)
		}
		rule := special.Rule{Glob: glob}
		switch handling {
		case "hide":
			rule.Handling = special.Hide
		case "no-enter":
			rule.Handling = special.NoEnter
		case "no-expand":
			rule.Handling = special.EnterDontExpand
		default:
			return nil, fmt.Errorf("unknown special handling %q", handling)
		}
		rules = append(rules, rule)
	}
	return special.NewList(rules...), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
