// Package gitignore applies .gitignore files found between the repository
// root and the explored directories. Matchers are kept in chains: a child
// directory inherits its parent's chain and may deepen it with its own
// .gitignore file.
package gitignore

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

type link struct {
	dir     string
	matcher *ignore.GitIgnore
}

// Chain is an ordered list of gitignore matchers, outermost first. Chains
// are cheap to copy: deepening allocates a new slice header but shares the
// links.
type Chain struct {
	links []*link
}

// Ignorer compiles and caches .gitignore files. Chain construction
// (RootChain, DeeperChain) must stay on a single goroutine; Accepts is
// read-only and safe to call concurrently.
type Ignorer struct {
	compiled map[string]*link
}

// NewIgnorer returns an empty ignorer.
func NewIgnorer() *Ignorer {
	return &Ignorer{compiled: make(map[string]*link)}
}

// RootChain builds the chain applying to the tree root: the .gitignore
// files of every directory from the enclosing repository root down to the
// root itself. Outside a git repository the chain only holds the root's
// own .gitignore, if any.
func (ig *Ignorer) RootChain(root string) Chain {
	var dirs []string
	dir := root
	for {
		dirs = append(dirs, dir)
		if isRepoRoot(dir) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// no repository found: only the root dir contributes
			dirs = dirs[:1]
			break
		}
		dir = parent
	}
	var chain Chain
	for i := len(dirs) - 1; i >= 0; i-- {
		chain = ig.DeeperChain(chain, dirs[i])
	}
	return chain
}

// DeeperChain returns the chain for a child directory: the parent chain,
// extended with dir/.gitignore when that file exists.
func (ig *Ignorer) DeeperChain(parent Chain, dir string) Chain {
	l, ok := ig.compiled[dir]
	if !ok {
		l = ig.compile(dir)
		ig.compiled[dir] = l
	}
	if l == nil {
		return parent
	}
	links := make([]*link, len(parent.links), len(parent.links)+1)
	copy(links, parent.links)
	return Chain{links: append(links, l)}
}

// Accepts tells whether the entry at path (with the given name) survives
// the chain. The .gitignore files are consulted innermost first and the
// entry is rejected as soon as one of them matches it; a negation in an
// inner file does not re-include an entry ignored by an outer one.
func (ig *Ignorer) Accepts(chain Chain, path, name string, isDir bool) bool {
	if name == ".git" {
		return false
	}
	for i := len(chain.links) - 1; i >= 0; i-- {
		l := chain.links[i]
		rel, err := filepath.Rel(l.dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		if l.matcher.MatchesPath(rel) {
			return false
		}
		if isDir && l.matcher.MatchesPath(rel+"/") {
			return false
		}
	}
	return true
}

func (ig *Ignorer) compile(dir string) *link {
	file := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(file); err != nil {
		return nil
	}
	matcher, err := ignore.CompileIgnoreFile(file)
	if err != nil {
		slog.Debug("failed to compile gitignore file", "path", file, "error", err)
		return nil
	}
	return &link{dir: dir, matcher: matcher}
}

func isRepoRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
