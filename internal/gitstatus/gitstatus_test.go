package gitstatus

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burrowfs/burrow/internal/dam"
)

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{
		"-C", dir,
		"-c", "user.name=test",
		"-c", "user.email=test@example.com",
	}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

// newRepo initializes a repository with one committed file, one modified
// file and one untracked file.
func newRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not available")
	}
	root := t.TempDir()
	git(t, root, "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(root, "committed.txt"), []byte("v1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "modified.txt"), []byte("v1\n"), 0o644))
	git(t, root, "add", ".")
	git(t, root, "commit", "-q", "-m", "init")
	require.NoError(t, os.WriteFile(filepath.Join(root, "modified.txt"), []byte("v2\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "untracked.txt"), []byte("new\n"), 0o644))
	return root
}

func TestDiscover(t *testing.T) {
	root := newRepo(t)
	c := Discover(root)
	require.NotNil(t, c)

	status, ok := c.LineStatus(filepath.Join(root, "modified.txt"))
	require.True(t, ok)
	assert.Equal(t, StatusModified, status)

	status, ok = c.LineStatus(filepath.Join(root, "sub", "untracked.txt"))
	require.True(t, ok)
	assert.Equal(t, StatusNew, status)

	_, ok = c.LineStatus(filepath.Join(root, "committed.txt"))
	assert.False(t, ok)

	assert.True(t, c.IsInteresting(filepath.Join(root, "modified.txt")))
	assert.True(t, c.IsInteresting(filepath.Join(root, "sub")),
		"a directory holding a changed file is interesting")
	assert.False(t, c.IsInteresting(filepath.Join(root, "committed.txt")))
}

func TestDiscoverOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not available")
	}
	assert.Nil(t, Discover(t.TempDir()))
}

func TestComputeTreeStatus(t *testing.T) {
	root := newRepo(t)

	ts, err := ComputeTreeStatus(root, dam.Unlimited())
	require.NoError(t, err)
	assert.Equal(t, 1, ts.Modified)
	assert.Equal(t, 1, ts.Untracked)
	assert.Equal(t, 0, ts.Staged)
}

func TestComputeTreeStatusInterrupted(t *testing.T) {
	root := newRepo(t)
	fired := dam.New()
	fired.Signal()
	_, err := ComputeTreeStatus(root, fired)
	assert.ErrorIs(t, err, ErrStatusInterrupted)
}
