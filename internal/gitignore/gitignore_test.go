package gitignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newRepo creates a fake repository root (a .git directory is enough).
func newRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	return root
}

func TestRootChainAppliesRepoIgnores(t *testing.T) {
	root := newRepo(t)
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\nbuild/\n")

	ig := NewIgnorer()
	chain := ig.RootChain(root)

	assert.False(t, ig.Accepts(chain, filepath.Join(root, "debug.log"), "debug.log", false))
	assert.False(t, ig.Accepts(chain, filepath.Join(root, "build"), "build", true))
	assert.True(t, ig.Accepts(chain, filepath.Join(root, "main.go"), "main.go", false))
}

func TestGitDirIsAlwaysRejected(t *testing.T) {
	root := newRepo(t)
	ig := NewIgnorer()
	chain := ig.RootChain(root)
	assert.False(t, ig.Accepts(chain, filepath.Join(root, ".git"), ".git", true))
}

func TestDeeperChainInherits(t *testing.T) {
	root := newRepo(t)
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n")
	sub := filepath.Join(root, "sub")
	writeFile(t, filepath.Join(sub, ".gitignore"), "*.tmp\n")

	ig := NewIgnorer()
	chain := ig.RootChain(root)
	deeper := ig.DeeperChain(chain, sub)

	// the outer chain still applies below
	assert.False(t, ig.Accepts(deeper, filepath.Join(sub, "x.log"), "x.log", false))
	// the inner file only applies from its directory down
	assert.False(t, ig.Accepts(deeper, filepath.Join(sub, "x.tmp"), "x.tmp", false))
	assert.True(t, ig.Accepts(chain, filepath.Join(root, "x.tmp"), "x.tmp", false))
}

func TestRootChainFromSubdirectory(t *testing.T) {
	root := newRepo(t)
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n")
	sub := filepath.Join(root, "deep", "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	ig := NewIgnorer()
	chain := ig.RootChain(sub)

	// the repository's top .gitignore applies even when exploring a
	// subdirectory
	assert.False(t, ig.Accepts(chain, filepath.Join(sub, "x.log"), "x.log", false))
}

func TestNoRepository(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "*.log\n")

	ig := NewIgnorer()
	chain := ig.RootChain(dir)
	assert.False(t, ig.Accepts(chain, filepath.Join(dir, "x.log"), "x.log", false))
	assert.True(t, ig.Accepts(chain, filepath.Join(dir, "x.txt"), "x.txt", false))
}
