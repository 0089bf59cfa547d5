package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burrowfs/burrow/internal/dam"
	"github.com/burrowfs/burrow/internal/pattern"
	"github.com/burrowfs/burrow/internal/tree"
)

// suffixPattern gives a fixed score to names containing a suffix and
// rejects everything else. It stands in for the fuzzy matchers in tests
// needing deterministic scores.
type suffixPattern struct {
	suffix string
	score  int
}

func (p suffixPattern) IsEmpty() bool { return false }
func (p suffixPattern) ScoreOf(c pattern.Candidate) (int, bool) {
	if strings.Contains(c.Name, p.suffix) {
		return p.score, true
	}
	return 0, false
}
func (p suffixPattern) HasRealScores() bool { return true }
func (p suffixPattern) SearchString(s string) *pattern.NameMatch {
	if strings.Contains(s, p.suffix) {
		return &pattern.NameMatch{Score: p.score}
	}
	return nil
}
func (p suffixPattern) SearchContent(string, int) *pattern.ContentMatch { return nil }
func (p suffixPattern) Object() pattern.Object                          { return pattern.Object{} }

func inputPattern(p pattern.Pattern, raw string) pattern.InputPattern {
	return pattern.InputPattern{Raw: raw, Pat: p}
}

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(name+"\n"), 0o644))
	}
}

func defaultOptions() tree.Options {
	return tree.Options{
		ShowHidden:       false,
		RespectGitIgnore: true,
		TrimRoot:         false,
		Pattern:          pattern.NoInput(),
	}
}

func buildTree(t *testing.T, root string, options tree.Options, targetedSize int) *tree.Tree {
	t.Helper()
	builder, err := NewBuilder(root, options, targetedSize, nil)
	require.NoError(t, err)
	result, err := builder.Build(false, dam.Unlimited())
	require.NoError(t, err)
	return result
}

func names(tr *tree.Tree) []string {
	out := make([]string, 0, len(tr.Lines))
	for i := range tr.Lines {
		out = append(out, tr.Lines[i].Name)
	}
	return out
}

func depths(tr *tree.Tree) []int {
	out := make([]int, 0, len(tr.Lines))
	for i := range tr.Lines {
		out = append(out, tr.Lines[i].Depth)
	}
	return out
}

// assertTreeInvariants checks the universal properties every produced
// tree must hold: pre-order, parent closure, sibling ordering.
func assertTreeInvariants(t *testing.T, tr *tree.Tree) {
	t.Helper()
	require.NotEmpty(t, tr.Lines)
	assert.Equal(t, 0, tr.Lines[0].Depth, "line 0 is the root")

	paths := make(map[string]bool, len(tr.Lines))
	for i := range tr.Lines {
		paths[tr.Lines[i].Path] = true
	}
	for i := 1; i < len(tr.Lines); i++ {
		line := &tr.Lines[i]
		prev := &tr.Lines[i-1]
		assert.LessOrEqual(t, line.Depth, prev.Depth+1,
			"pre-order: %s cannot be deeper than its predecessor's child level", line.Path)
		assert.True(t, paths[filepath.Dir(line.Path)],
			"parent closure: parent of %s must be present", line.Path)
		if line.Depth == prev.Depth {
			assert.True(t,
				strings.ToLower(prev.Name) <= strings.ToLower(line.Name),
				"siblings in case-insensitive order: %s before %s", prev.Name, line.Name)
		}
	}
}

func TestUnfilteredSmallFixture(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.txt", "b.txt", "sub/c.txt")

	tr := buildTree(t, root, defaultOptions(), 10)

	assert.Equal(t, []string{filepath.Base(root), "a.txt", "b.txt", "sub", "c.txt"}, names(tr))
	assert.Equal(t, []int{0, 1, 1, 1, 2}, depths(tr))
	assert.True(t, tr.TotalSearch)
	assert.Equal(t, 0, tr.Selection)
	assert.Equal(t, 0, tr.Scroll)
	assertTreeInvariants(t, tr)
}

func TestHiddenFilesRespected(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.txt", "b.txt", "sub/c.txt", ".hidden")

	tr := buildTree(t, root, defaultOptions(), 10)

	assert.NotContains(t, names(tr), ".hidden")
	assert.True(t, tr.TotalSearch)

	options := defaultOptions()
	options.ShowHidden = true
	tr = buildTree(t, root, options, 10)
	assert.Contains(t, names(tr), ".hidden")
}

func TestNamePatternMatches(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.rs", "b.rs", "sub/c.txt", "sub/d.rs")

	options := defaultOptions()
	options.Pattern = inputPattern(suffixPattern{suffix: "rs", score: 100}, "rs")
	targetedSize := 3
	tr := buildTree(t, root, options, targetedSize)

	got := names(tr)
	assert.LessOrEqual(t, len(tr.Lines), targetedSize+1, "bounded output")
	assert.NotContains(t, got, "c.txt")
	assert.Equal(t, filepath.Base(root), got[0])
	for i := 1; i < len(tr.Lines); i++ {
		line := &tr.Lines[i]
		if line.Kind == tree.KindFile {
			assert.Contains(t, line.Name, "rs")
			assert.True(t, line.DirectMatch)
		}
	}
	// match monotonicity: a kept directory holds a kept match
	for i := 1; i < len(tr.Lines); i++ {
		if tr.Lines[i].Kind != tree.KindDir {
			continue
		}
		prefix := tr.Lines[i].Path + string(filepath.Separator)
		found := false
		for j := range tr.Lines {
			if strings.HasPrefix(tr.Lines[j].Path, prefix) && tr.Lines[j].DirectMatch {
				found = true
			}
		}
		assert.True(t, found, "directory %s without any kept match", tr.Lines[i].Path)
	}
	assertTreeInvariants(t, tr)
}

func TestTrimPreservesParents(t *testing.T) {
	root := t.TempDir()
	files := make([]string, 50)
	for i := range files {
		files[i] = fmt.Sprintf("deep/f%02d.rs", i)
	}
	writeFiles(t, root, files...)

	options := defaultOptions()
	options.Pattern = inputPattern(suffixPattern{suffix: "rs", score: 100}, "rs")
	targetedSize := 5
	tr := buildTree(t, root, options, targetedSize)

	got := names(tr)
	assert.Contains(t, got, "deep", "deep is never removed while it has kept children")
	assert.LessOrEqual(t, len(tr.Lines), targetedSize+1)
	kept := 0
	for i := range tr.Lines {
		if tr.Lines[i].Kind == tree.KindFile {
			kept++
		}
	}
	assert.Greater(t, kept, 0)
	assertTreeInvariants(t, tr)
}

func TestCancellation(t *testing.T) {
	root := t.TempDir()
	files := make([]string, 0, 10000)
	for d := 0; d < 100; d++ {
		for f := 0; f < 100; f++ {
			files = append(files, fmt.Sprintf("d%02d/f%02d.txt", d, f))
		}
	}
	writeFiles(t, root, files...)

	options := defaultOptions()
	builder, err := NewBuilder(root, options, 10, nil)
	require.NoError(t, err)
	fired := dam.New()
	fired.Signal()
	_, err = builder.Build(true, fired)
	assert.ErrorIs(t, err, ErrCancelled)

	// a later build is unaffected by the cancelled one
	reference := buildTree(t, root, options, 10)
	builder, err = NewBuilder(root, options, 10, nil)
	require.NoError(t, err)
	rebuilt, err := builder.Build(false, dam.Unlimited())
	require.NoError(t, err)
	assert.Equal(t, names(reference), names(rebuilt))
}

func TestTotalSearchHonesty(t *testing.T) {
	root := t.TempDir()
	files := make([]string, 0, 400)
	for d := 0; d < 20; d++ {
		for f := 0; f < 20; f++ {
			files = append(files, fmt.Sprintf("d%02d/f%02d.txt", d, f))
		}
	}
	writeFiles(t, root, files...)

	// bounded build on a big fixture with a tiny viewport: the early
	// exit fires
	bounded := buildTree(t, root, defaultOptions(), 5)
	assert.False(t, bounded.TotalSearch)

	// a total build visits everything
	builder, err := NewBuilder(root, defaultOptions(), 5, nil)
	require.NoError(t, err)
	total, err := builder.Build(true, dam.Unlimited())
	require.NoError(t, err)
	assert.True(t, total.TotalSearch)
}

func TestRootFullyListedWithoutPattern(t *testing.T) {
	root := t.TempDir()
	files := make([]string, 30)
	for i := range files {
		files[i] = fmt.Sprintf("f%02d.txt", i)
	}
	writeFiles(t, root, files...)

	// trim_root off, no pattern: all direct children appear even past
	// the targeted size
	tr := buildTree(t, root, defaultOptions(), 5)
	assert.Len(t, tr.Lines, 31)
	assertTreeInvariants(t, tr)
}

func TestOnlyFolders(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.txt", "sub/c.txt", "other/d.txt")

	options := defaultOptions()
	options.OnlyFolders = true
	tr := buildTree(t, root, options, 10)

	for i := 1; i < len(tr.Lines); i++ {
		assert.Equal(t, tree.KindDir, tr.Lines[i].Kind)
	}
	assert.NotContains(t, names(tr), "a.txt")
	assert.Contains(t, names(tr), "sub")
}

func TestGitIgnoreRespected(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	writeFiles(t, root, "keep.txt", "skip.log")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n"), 0o644))

	tr := buildTree(t, root, defaultOptions(), 10)
	assert.NotContains(t, names(tr), "skip.log")
	assert.Contains(t, names(tr), "keep.txt")
	assert.Equal(t, 1, tr.NbGitignored)

	options := defaultOptions()
	options.RespectGitIgnore = false
	tr = buildTree(t, root, options, 10)
	assert.Contains(t, names(tr), "skip.log")
}

func TestInvalidRootErrors(t *testing.T) {
	_, err := NewBuilder(filepath.Join(t.TempDir(), "missing"), defaultOptions(), 10, nil)
	var buildErr *Error
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, InvalidRoot, buildErr.Kind)

	root := t.TempDir()
	writeFiles(t, root, "plain.txt")
	_, err = NewBuilder(filepath.Join(root, "plain.txt"), defaultOptions(), 10, nil)
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, NotADirectory, buildErr.Kind)
}

func TestSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "target.txt")
	require.NoError(t, os.Symlink(filepath.Join(root, "target.txt"), filepath.Join(root, "alive")))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "broken")))

	tr := buildTree(t, root, defaultOptions(), 10)

	kinds := make(map[string]tree.LineKind, len(tr.Lines))
	for i := range tr.Lines {
		kinds[tr.Lines[i].Name] = tr.Lines[i].Kind
	}
	assert.Equal(t, tree.KindSymlink, kinds["alive"])
	assert.Equal(t, tree.KindBrokenSymlink, kinds["broken"])
}

func TestUnlistedChildrenCount(t *testing.T) {
	root := t.TempDir()
	files := make([]string, 40)
	for i := range files {
		files[i] = fmt.Sprintf("deep/f%02d.rs", i)
	}
	writeFiles(t, root, files...)

	options := defaultOptions()
	options.Pattern = inputPattern(suffixPattern{suffix: "rs", score: 100}, "rs")
	tr := buildTree(t, root, options, 5)

	for i := range tr.Lines {
		if tr.Lines[i].Name != "deep" {
			continue
		}
		kept := 0
		for j := range tr.Lines {
			if tr.Lines[j].Depth == 2 {
				kept++
			}
		}
		assert.Equal(t, 40-kept, tr.Lines[i].UnlistedChildren)
	}
}

func TestSortModeShowsOneLevel(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a/deep/x.txt", "b/deep/y.txt", "c.txt")

	options := defaultOptions()
	options.Sort = tree.SortBySize
	tr := buildTree(t, root, options, 20)

	for i := range tr.Lines {
		assert.LessOrEqual(t, tr.Lines[i].Depth, 1, "sort mode shows a single level")
	}
}

func TestSearchLimitEnv(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a/b/c/d/e.txt")

	t.Setenv(SearchLimitEnv, "0")
	tr := buildTree(t, root, defaultOptions(), 100)
	// a zero budget stops the descent after the first level
	for i := range tr.Lines {
		assert.LessOrEqual(t, tr.Lines[i].Depth, 1)
	}

	t.Setenv(SearchLimitEnv, "notanumber")
	tr = buildTree(t, root, defaultOptions(), 100)
	assert.Contains(t, names(tr), "e.txt", "an unparseable limit means no limit")
}
