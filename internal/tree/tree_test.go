package tree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureTree builds a small tree by hand:
//
//	/r
//	├── a.txt
//	├── sub
//	│   ├── c.txt
//	│   └── d.txt
//	└── z.txt
func fixtureTree() *Tree {
	root := string(filepath.Separator) + "r"
	mk := func(rel string, depth int, kind LineKind, directMatch bool) TreeLine {
		return TreeLine{
			Path:        filepath.Join(root, rel),
			SubPath:     rel,
			Name:        filepath.Base(rel),
			Depth:       depth,
			Kind:        kind,
			DirectMatch: directMatch,
		}
	}
	t := &Tree{
		Lines: []TreeLine{
			{Path: root, Name: "r", Depth: 0, Kind: KindDir},
			mk("a.txt", 1, KindFile, true),
			mk("sub", 1, KindDir, false),
			mk("sub/c.txt", 2, KindFile, true),
			mk("sub/d.txt", 2, KindFile, false),
			mk("z.txt", 1, KindFile, false),
		},
	}
	t.AfterLinesChanged()
	return t
}

func TestSortPreOrderKeepsParentFirst(t *testing.T) {
	tr := fixtureTree()
	// shuffle: parents after children
	tr.Lines[1], tr.Lines[4] = tr.Lines[4], tr.Lines[1]
	tr.Lines[2], tr.Lines[3] = tr.Lines[3], tr.Lines[2]
	tr.AfterLinesChanged()

	var names []string
	for i := range tr.Lines {
		names = append(names, tr.Lines[i].Name)
	}
	assert.Equal(t, []string{"r", "a.txt", "sub", "c.txt", "d.txt", "z.txt"}, names)
}

func TestLeftBranches(t *testing.T) {
	tr := fixtureTree()
	// sub is followed by z.txt at depth 1: the depth-1 column of its
	// children keeps its connector open
	cLine := tr.Lines[3]
	require.Equal(t, "c.txt", cLine.Name)
	require.Len(t, cLine.LeftBranches, 2)
	assert.True(t, cLine.LeftBranches[0], "a depth-1 line follows")
	assert.True(t, cLine.LeftBranches[1], "d.txt follows at depth 2")

	dLine := tr.Lines[4]
	require.Equal(t, "d.txt", dLine.Name)
	assert.True(t, dLine.LeftBranches[0])
	assert.False(t, dLine.LeftBranches[1], "d.txt is the last child of sub")

	zLine := tr.Lines[5]
	require.Equal(t, "z.txt", zLine.Name)
	assert.False(t, zLine.LeftBranches[0], "z.txt is the last depth-1 line")
}

func TestMoveSelectionCycles(t *testing.T) {
	tr := fixtureTree()
	tr.MoveSelection(-1, 10, true)
	assert.Equal(t, len(tr.Lines)-1, tr.Selection, "moving up from the root wraps to the bottom")

	tr.MoveSelection(1, 10, true)
	assert.Equal(t, 0, tr.Selection)
}

func TestMoveSelectionClamps(t *testing.T) {
	tr := fixtureTree()
	tr.MoveSelection(-3, 10, false)
	assert.Equal(t, 0, tr.Selection)

	tr.MoveSelection(100, 10, false)
	assert.Equal(t, len(tr.Lines)-1, tr.Selection)
}

func TestMakeSelectionVisible(t *testing.T) {
	tr := fixtureTree()
	pageHeight := 3
	tr.Selection = 5
	tr.MakeSelectionVisible(pageHeight)
	assert.LessOrEqual(t, tr.Selection, tr.Scroll+pageHeight)
	assert.Greater(t, tr.Selection, tr.Scroll)

	tr.Selection = 1
	tr.MakeSelectionVisible(pageHeight)
	assert.LessOrEqual(t, tr.Scroll, 0)
}

func TestTrySelectPath(t *testing.T) {
	tr := fixtureTree()
	target := tr.Lines[3].Path
	assert.True(t, tr.TrySelectPath(target))
	assert.Equal(t, 3, tr.Selection)
	assert.False(t, tr.TrySelectPath(filepath.Join(tr.Root(), "missing")))
	assert.Equal(t, 3, tr.Selection, "a failed select keeps the previous selection")
}

func TestMatchNavigation(t *testing.T) {
	tr := fixtureTree()
	tr.TrySelectNextMatch()
	assert.Equal(t, "a.txt", tr.SelectedLine().Name)
	tr.TrySelectNextMatch()
	assert.Equal(t, "c.txt", tr.SelectedLine().Name)
	tr.TrySelectNextMatch()
	assert.Equal(t, "a.txt", tr.SelectedLine().Name, "match navigation cycles")
	tr.TrySelectPreviousMatch()
	assert.Equal(t, "c.txt", tr.SelectedLine().Name)
}

func TestSameDepthNavigation(t *testing.T) {
	tr := fixtureTree()
	tr.Selection = 1 // a.txt
	tr.TrySelectNextSameDepth()
	assert.Equal(t, "sub", tr.SelectedLine().Name)
	tr.TrySelectNextSameDepth()
	assert.Equal(t, "z.txt", tr.SelectedLine().Name)
	tr.TrySelectNextSameDepth()
	assert.Equal(t, "a.txt", tr.SelectedLine().Name)
}

func TestTrySelectBestMatch(t *testing.T) {
	tr := fixtureTree()
	tr.Lines[1].Score = 10
	tr.Lines[3].Score = 50
	tr.TrySelectBestMatch()
	assert.Equal(t, "c.txt", tr.SelectedLine().Name)
}

func TestSelectFirstLast(t *testing.T) {
	tr := fixtureTree()
	tr.Selection = 3
	tr.Scroll = 2
	tr.TrySelectFirst()
	assert.Equal(t, 0, tr.Selection)
	assert.Equal(t, 0, tr.Scroll)

	tr.TrySelectLast(3)
	assert.Equal(t, len(tr.Lines)-1, tr.Selection)
}

func TestApplySortBySize(t *testing.T) {
	tr := fixtureTree()
	tr.Options.Sort = SortBySize
	// single level: keep only depth-1 lines for the scenario
	tr.Lines = append(tr.Lines[:3:3], tr.Lines[5])
	tr.Lines[1].Sum = &FileSum{Bytes: 10}
	tr.Lines[2].Sum = &FileSum{Bytes: 500}
	tr.AfterLinesChanged()

	assert.Equal(t, "sub", tr.Lines[1].Name)
	assert.Equal(t, "a.txt", tr.Lines[2].Name)
	assert.Equal(t, "z.txt", tr.Lines[3].Name, "lines without a sum sink to the bottom")
}

func TestPruningLinesAreNotSelectable(t *testing.T) {
	tr := fixtureTree()
	tr.Lines = append(tr.Lines, TreeLine{Name: "…", Depth: 1, Kind: KindPruning})
	tr.computeLeftBranches()
	tr.Selection = 5
	tr.MoveSelection(1, 10, false)
	assert.Equal(t, 5, tr.Selection, "the cursor never lands on a pruning line")
}
