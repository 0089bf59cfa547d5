// Package gitstatus queries the state of a work tree through the git
// command, the way the rest of the toolchain shells out to git rather
// than reimplementing repository internals.
package gitstatus

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/burrowfs/burrow/internal/dam"
)

// FileStatus classifies one changed path.
type FileStatus int

const (
	StatusModified FileStatus = iota
	StatusStaged
	StatusNew
	StatusDeleted
	StatusRenamed
	StatusConflicted
)

// Sign returns the one-column marker displayed next to the file name.
func (s FileStatus) Sign() string {
	switch s {
	case StatusModified:
		return "M"
	case StatusStaged:
		return "S"
	case StatusNew:
		return "N"
	case StatusDeleted:
		return "D"
	case StatusRenamed:
		return "R"
	case StatusConflicted:
		return "C"
	}
	return "?"
}

// ErrStatusInterrupted is returned when the dam fired during enumeration.
var ErrStatusInterrupted = errors.New("git status computation interrupted")

// LineStatusComputer resolves per-path statuses from one porcelain
// enumeration taken at construction time. Directories containing changed
// files are interesting but carry no status of their own.
type LineStatusComputer struct {
	repoRoot    string
	statuses    map[string]FileStatus
	interesting map[string]bool
}

// Discover builds a computer for the repository containing path, or
// returns nil when the path is not inside a work tree or git is not
// usable.
func Discover(path string) *LineStatusComputer {
	repoRoot, err := repoRootOf(path)
	if err != nil {
		slog.Debug("no repository found", "path", path, "error", err)
		return nil
	}
	entries, err := porcelainEntries(repoRoot, dam.Unlimited())
	if err != nil {
		slog.Warn("git status enumeration failed", "repo", repoRoot, "error", err)
		return nil
	}
	c := &LineStatusComputer{
		repoRoot:    repoRoot,
		statuses:    make(map[string]FileStatus, len(entries)),
		interesting: make(map[string]bool, len(entries)*2),
	}
	for _, e := range entries {
		abs := filepath.Join(repoRoot, filepath.FromSlash(e.path))
		c.statuses[abs] = e.status
		// changed files make their ancestors interesting so directory
		// lines survive git-status filtering
		for dir := abs; strings.HasPrefix(dir, repoRoot); dir = filepath.Dir(dir) {
			if c.interesting[dir] {
				break
			}
			c.interesting[dir] = true
			if dir == repoRoot {
				break
			}
		}
	}
	return c
}

// IsInteresting tells whether the path is a changed file or an ancestor
// of one.
func (c *LineStatusComputer) IsInteresting(path string) bool {
	return c.interesting[path]
}

// LineStatus returns the status of the path, if it has one.
func (c *LineStatusComputer) LineStatus(path string) (FileStatus, bool) {
	s, ok := c.statuses[path]
	return s, ok
}

// TreeStatus summarizes the repository state for the status area.
type TreeStatus struct {
	Branch    string
	Staged    int
	Modified  int
	Untracked int
}

// ComputeTreeStatus enumerates the repository containing root. It polls
// the dam between command invocations and per parsed batch, returning
// ErrStatusInterrupted when it fired.
func ComputeTreeStatus(root string, d *dam.Dam) (*TreeStatus, error) {
	repoRoot, err := repoRootOf(root)
	if err != nil {
		return nil, err
	}
	if d.HasEvent() {
		return nil, ErrStatusInterrupted
	}
	branch := currentBranch(repoRoot)
	if d.HasEvent() {
		return nil, ErrStatusInterrupted
	}
	entries, err := porcelainEntries(repoRoot, d)
	if err != nil {
		return nil, err
	}
	ts := &TreeStatus{Branch: branch}
	for _, e := range entries {
		switch e.status {
		case StatusNew:
			ts.Untracked++
		case StatusStaged, StatusRenamed:
			ts.Staged++
		default:
			ts.Modified++
		}
	}
	return ts, nil
}

type porcelainEntry struct {
	path   string
	status FileStatus
}

const porcelainBatch = 256

func porcelainEntries(repoRoot string, d *dam.Dam) ([]porcelainEntry, error) {
	out, err := gitOutput(repoRoot, "status", "--porcelain", "-z", "--untracked-files=all")
	if err != nil {
		return nil, err
	}
	var entries []porcelainEntry
	records := bytes.Split(out, []byte{0})
	for i := 0; i < len(records); i++ {
		if len(entries)%porcelainBatch == porcelainBatch-1 && d.HasEvent() {
			return nil, ErrStatusInterrupted
		}
		rec := records[i]
		if len(rec) < 4 {
			continue
		}
		x, y := rec[0], rec[1]
		path := string(rec[3:])
		if x == 'R' || x == 'C' {
			// the next record is the rename source; skip it
			i++
		}
		entries = append(entries, porcelainEntry{path: path, status: classify(x, y)})
	}
	return entries, nil
}

func classify(x, y byte) FileStatus {
	switch {
	case x == 'U' || y == 'U' || (x == 'A' && y == 'A') || (x == 'D' && y == 'D'):
		return StatusConflicted
	case x == '?':
		return StatusNew
	case x == 'R' || y == 'R':
		return StatusRenamed
	case x == 'D' || y == 'D':
		return StatusDeleted
	case y == 'M':
		return StatusModified
	case x != ' ' && x != 0:
		return StatusStaged
	}
	return StatusModified
}

func repoRootOf(path string) (string, error) {
	out, err := gitOutput(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return "", errors.New("not inside a git repository")
	}
	return filepath.Clean(root), nil
}

func currentBranch(repoRoot string) string {
	out, err := gitOutput(repoRoot, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func gitOutput(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s: %w (%s)", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
