package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/burrowfs/burrow/internal/tree"
)

// treePrinter implements the print collaborator. Output is buffered and
// written on stdout once the alternate screen is released.
type treePrinter struct {
	cwd string
	buf strings.Builder
}

func newTreePrinter(cwd string) *treePrinter {
	return &treePrinter{cwd: cwd}
}

func (p *treePrinter) Output() string {
	return p.buf.String()
}

func (p *treePrinter) PrintPath(path string) error {
	p.buf.WriteString(path + "\n")
	return nil
}

func (p *treePrinter) PrintRelativePath(path string) error {
	rel, err := filepath.Rel(p.cwd, path)
	if err != nil {
		return fmt.Errorf("cannot relativize %q: %w", path, err)
	}
	p.buf.WriteString(rel + "\n")
	return nil
}

// PrintTree writes the tree as plain text, with pruning lines summarizing
// the unlisted children of partially listed directories.
func (p *treePrinter) PrintTree(t *tree.Tree) error {
	type prune struct {
		depth int
		count int
	}
	var pending []prune
	flush := func(depth int) {
		for len(pending) > 0 && depth <= pending[len(pending)-1].depth-1 {
			top := pending[len(pending)-1]
			pending = pending[:len(pending)-1]
			p.printLine(tree.TreeLine{
				Depth: top.depth,
				Kind:  tree.KindPruning,
				Name:  fmt.Sprintf("… %d unlisted", top.count),
			})
		}
	}
	for i := range t.Lines {
		line := t.Lines[i]
		flush(line.Depth)
		p.printLine(line)
		if line.Kind == tree.KindDir && line.UnlistedChildren > 0 {
			pending = append(pending, prune{depth: line.Depth + 1, count: line.UnlistedChildren})
		}
	}
	flush(0)
	return nil
}

func (p *treePrinter) printLine(line tree.TreeLine) {
	for k := 0; k < line.Depth; k++ {
		last := k == line.Depth-1
		open := k < len(line.LeftBranches) && line.LeftBranches[k]
		switch {
		case last && open:
			p.buf.WriteString("├──")
		case last:
			p.buf.WriteString("└──")
		case open:
			p.buf.WriteString("│  ")
		default:
			p.buf.WriteString("   ")
		}
	}
	name := line.Name
	switch line.Kind {
	case tree.KindDir:
		if line.Depth == 0 {
			name = line.Path
		}
	case tree.KindSymlink, tree.KindBrokenSymlink:
		name = line.Name + " -> " + line.SymlinkTarget
	}
	p.buf.WriteString(name + "\n")
}
