// Package build turns a root directory, options and an optional search
// pattern into a bounded, viewport-ranked tree. The build runs in three
// phases: a breadth-first gather over depth levels, a score-driven trim
// that never drops a parent before its kept children, and a finalization
// into display lines.
package build

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/burrowfs/burrow/internal/dam"
	"github.com/burrowfs/burrow/internal/gitignore"
	"github.com/burrowfs/burrow/internal/gitstatus"
	"github.com/burrowfs/burrow/internal/pattern"
	"github.com/burrowfs/burrow/internal/special"
	"github.com/burrowfs/burrow/internal/tree"
)

// A bounded search that already filled the screen keeps looking a little
// longer for better matches, but not past this duration.
const notLong = 900 * time.Millisecond

// SearchLimitEnv optionally bounds the wall-clock of deep traversal, in
// milliseconds. Absent or unparseable means no limit.
const SearchLimitEnv = "BurrowSearchLimit"

// Context carries the collaborators a build consults.
type Context struct {
	Special *special.List
}

// Builder gathers, scores, trims and finalizes one tree. It is consumed
// by a single call to Build.
type Builder struct {
	options      tree.Options
	targetedSize int
	blines       arena
	rootID       bid
	totalSearch  bool
	ignorer      *gitignore.Ignorer
	statusComp   *gitstatus.LineStatusComputer
	ctx          *Context
	trimRoot     bool
	nbGitignored atomic.Int64
}

// NewBuilder prepares a build of the given root. targetedSize is the
// number of lines the viewport can hold. Construction fails only when the
// root cannot be resolved or stat'ed, or is not a directory.
func NewBuilder(root string, options tree.Options, targetedSize int, ctx *Context) (*Builder, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &Error{Kind: InvalidRoot, Path: root, Err: err}
	}
	absRoot = filepath.Clean(absRoot)
	info, err := os.Stat(absRoot)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, &Error{Kind: InvalidRoot, Path: absRoot, Err: err}
		case os.IsPermission(err):
			return nil, &Error{Kind: PermissionDenied, Path: absRoot, Err: err}
		default:
			return nil, &Error{Kind: OtherIO, Path: absRoot, Err: err}
		}
	}
	if !info.IsDir() {
		return nil, &Error{Kind: NotADirectory, Path: absRoot}
	}
	if ctx == nil {
		ctx = &Context{}
	}
	b := &Builder{
		options:      options,
		targetedSize: targetedSize,
		totalSearch:  true,
		ignorer:      gitignore.NewIgnorer(),
		ctx:          ctx,
		trimRoot: options.Pattern.IsSome() ||
			(options.TrimRoot && options.Sort == tree.SortNone),
	}
	if options.FilterByGitStatus || options.ShowGitFileInfo {
		b.statusComp = gitstatus.Discover(absRoot)
	}
	rootChain := gitignore.Chain{}
	if options.RespectGitIgnore {
		rootChain = b.ignorer.RootChain(absRoot)
	}
	b.rootID = b.blines.alloc(bline{
		parentID: noBid,
		path:     absRoot,
		name:     filepath.Base(absRoot),
		depth:    0,
		kind:     tree.KindDir,
		hasMatch: true,
		score:    10000,
		gitChain: rootChain,
	})
	return b, nil
}

// Build runs the three phases. It can be called only once per builder and
// returns ErrCancelled when the dam fired during the gather phase.
func (b *Builder) Build(totalSearch bool, d *dam.Dam) (*tree.Tree, error) {
	outBlines, err := b.gatherLines(totalSearch, d)
	if err != nil {
		return nil, err
	}
	b.trimExcess(outBlines)
	return b.take(outBlines), nil
}

// makeLine builds a candidate line for one directory entry, or nil when
// the entry is filtered out. It only reads the parent snapshot it is
// given, so it is safe to run concurrently over the siblings of one
// directory.
func (b *Builder) makeLine(
	parentID bid,
	parentSubpath string,
	parentChain gitignore.Chain,
	parentPath string,
	e os.DirEntry,
	depth int,
) *bline {
	name := e.Name()
	if name == "" {
		return nil
	}
	if !b.options.ShowHidden && name[0] == '.' {
		return nil
	}
	hasMatch := true
	score := 10000 - depth // shallower entries are doped
	path := filepath.Join(parentPath, name)

	kind := tree.KindFile
	symlinkTarget := ""
	entryType := e.Type()
	switch {
	case entryType.IsDir():
		kind = tree.KindDir
	case entryType&os.ModeSymlink != 0:
		kind = tree.KindSymlink
		if target, err := os.Readlink(path); err == nil {
			symlinkTarget = target
		}
		if _, err := os.Stat(path); err != nil {
			kind = tree.KindBrokenSymlink
		}
	case !entryType.IsRegular():
		// sockets, fifos, devices: listed as plain files
	}

	subPath := name
	if parentSubpath != "" {
		subPath = parentSubpath + "/" + name
	}
	pat := b.options.Pattern.Pattern()
	directMatch := false
	if patternScore, ok := pat.ScoreOf(pattern.Candidate{
		Name:        name,
		Subpath:     subPath,
		Path:        path,
		RegularFile: entryType.IsRegular(),
	}); ok {
		// direct matches are doped to beat implicit parent matches of
		// the same depth
		score += patternScore + 10
		directMatch = true
	} else {
		hasMatch = false
	}
	if hasMatch && b.options.FilterByGitStatus && b.statusComp != nil {
		if !b.statusComp.IsInteresting(path) {
			hasMatch = false
		}
	}
	if kind != tree.KindDir {
		if !hasMatch {
			return nil
		}
		if b.options.OnlyFolders {
			return nil
		}
	}
	sp := b.ctx.Special.Find(path)
	if sp == special.Hide {
		return nil
	}
	if b.options.RespectGitIgnore {
		if !b.ignorer.Accepts(parentChain, path, name, kind == tree.KindDir) {
			b.nbGitignored.Add(1)
			return nil
		}
	}
	return &bline{
		parentID:      parentID,
		path:          path,
		name:          name,
		subPath:       subPath,
		depth:         depth,
		kind:          kind,
		symlinkTarget: symlinkTarget,
		hasMatch:      hasMatch,
		directMatch:   directMatch,
		score:         score,
		special:       sp,
	}
}

// loadChildren reads a directory, makes candidate lines for its entries
// in parallel, then allocates the kept ones and sorts them by
// case-insensitive name. Returns true when a child directly matches.
func (b *Builder) loadChildren(id bid) bool {
	parent := b.blines.at(id)
	parent.childrenLoaded = true
	entries, err := os.ReadDir(parent.path)
	if err != nil {
		parent.hasError = true
		parent.children = []bid{}
		return false
	}
	// snapshot the parent fields the parallel closures read: the arena
	// must not be touched while they run
	parentPath := parent.path
	parentSubpath := parent.subPath
	parentChain := parent.gitChain
	childDepth := parent.depth + 1

	candidates := make([]*bline, len(entries))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range entries {
		g.Go(func() error {
			candidates[i] = b.makeLine(id, parentSubpath, parentChain, parentPath, e, childDepth)
			return nil
		})
	}
	g.Wait()

	hasChildMatch := false
	children := make([]bid, 0, len(candidates))
	for _, bl := range candidates {
		if bl == nil {
			continue
		}
		if b.options.RespectGitIgnore {
			if bl.kind == tree.KindDir {
				bl.gitChain = b.ignorer.DeeperChain(parentChain, bl.path)
			} else {
				bl.gitChain = parentChain
			}
		}
		if bl.hasMatch {
			b.blines.at(id).hasMatch = true
			hasChildMatch = true
		}
		children = append(children, b.blines.alloc(*bl))
	}
	sort.SliceStable(children, func(i, j int) bool {
		return strings.ToLower(b.blines.at(children[i]).name) <
			strings.ToLower(b.blines.at(children[j]).name)
	})
	b.blines.at(id).children = children
	return hasChildMatch
}

// nextChild advances the parent's cursor. loadChildren must have run on
// the parent first.
func (b *Builder) nextChild(parentID bid) (bid, bool) {
	bl := b.blines.at(parentID)
	if bl.nextChildIdx < len(bl.children) {
		child := bl.children[bl.nextChildIdx]
		bl.nextChildIdx++
		return child, true
	}
	return noBid, false
}

// gatherLines is the first phase: a bounded BFS over depth levels. With a
// scoring pattern it oversamples so the trim phase can keep the best
// matches per sibling group.
func (b *Builder) gatherLines(totalSearch bool, d *dam.Dam) ([]bid, error) {
	start := time.Now()
	optimalSize := b.targetedSize
	if b.options.Pattern.Pattern().HasRealScores() {
		optimalSize = 10 * b.targetedSize
	}
	outBlines := []bid{b.rootID}
	nbLinesOk := 1
	var openDirs []bid
	var nextLevelDirs []bid
	b.loadChildren(b.rootID)
	openDirs = append(openDirs, b.rootID)
	searching := b.options.Pattern.IsSome()

	var limit time.Duration
	hasLimit := false
	if raw := os.Getenv(SearchLimitEnv); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil {
			limit = time.Duration(ms) * time.Millisecond
			hasLimit = true
		}
	}

	for {
		if !totalSearch &&
			(nbLinesOk > optimalSize ||
				(nbLinesOk >= b.targetedSize && time.Since(start) > notLong)) {
			b.totalSearch = false
			break
		}
		if len(openDirs) > 0 {
			openDirID := openDirs[0]
			openDirs = openDirs[1:]
			if childID, ok := b.nextChild(openDirID); ok {
				// push the parent back so siblings round-robin across
				// directories
				openDirs = append(openDirs, openDirID)
				child := b.blines.at(childID)
				if child.hasMatch {
					nbLinesOk++
				}
				if child.canEnter(searching) {
					nextLevelDirs = append(nextLevelDirs, childID)
				}
				outBlines = append(outBlines, childID)
			}
		} else {
			// this depth is drained, go deeper
			if b.options.Sort != tree.SortNone {
				// sort mode shows a single level
				break
			}
			if len(nextLevelDirs) == 0 {
				break
			}
			if hasLimit && time.Since(start) > limit {
				break
			}
			for _, dirID := range nextLevelDirs {
				if d.HasEvent() {
					slog.Debug("build interrupted during gather")
					return nil, ErrCancelled
				}
				if b.loadChildren(dirID) {
					// a matching child marks every ancestor up to the root
					for id := dirID; ; {
						bl := b.blines.at(id)
						if !bl.hasMatch {
							bl.hasMatch = true
							nbLinesOk++
						}
						if bl.parentID == noBid {
							break
						}
						id = bl.parentID
					}
				}
				openDirs = append(openDirs, dirID)
			}
			nextLevelDirs = nextLevelDirs[:0]
		}
	}
	if !b.trimRoot {
		// the root directory is listed whole even past the viewport
		for {
			childID, ok := b.nextChild(b.rootID)
			if !ok {
				break
			}
			outBlines = append(outBlines, childID)
		}
	}
	return outBlines, nil
}

// trimExcess is the second phase: it drops the worst scored matching
// leaves until the matching count fits the targeted size, never removing
// a parent that still has kept children.
func (b *Builder) trimExcess(outBlines []bid) {
	count := 1
	for _, id := range outBlines[1:] {
		if b.blines.at(id).hasMatch {
			count++
			b.blines.at(b.blines.at(id).parentID).nbKeptChildren++
		}
	}
	queue := newRemoveQueue()
	for _, id := range outBlines[1:] {
		bl := b.blines.at(id)
		if bl.hasMatch && bl.nbKeptChildren == 0 && (bl.depth > 1 || b.trimRoot) {
			queue.push(id, bl.score)
		}
	}
	for count > b.targetedSize {
		id, ok := queue.pop()
		if !ok {
			slog.Debug("trimming interrupted: no removable line left")
			break
		}
		bl := b.blines.at(id)
		bl.hasMatch = false
		parent := b.blines.at(bl.parentID)
		parent.nbKeptChildren--
		parent.nextChildIdx-- // keeps the unlisted count accurate
		if parent.nbKeptChildren == 0 && (parent.depth > 1 || b.trimRoot) {
			queue.push(bl.parentID, parent.score)
		}
		count--
	}
}

// take is the final phase: kept lines become tree lines, which
// AfterLinesChanged then puts in pre-order (gathering is breadth-first).
func (b *Builder) take(outBlines []bid) *tree.Tree {
	lines := make([]tree.TreeLine, 0, len(outBlines))
	for _, id := range outBlines {
		bl := b.blines.at(id)
		if !bl.hasMatch {
			continue
		}
		// unlisted counts need the children loaded
		if bl.kind == tree.KindDir && !bl.childrenLoaded {
			b.loadChildren(id)
			bl = b.blines.at(id)
		}
		line, ok := b.toTreeLine(id)
		if !ok {
			// the entry probably went missing during the build
			slog.Warn("skipping vanished entry", "path", bl.path)
			continue
		}
		lines = append(lines, line)
	}
	t := &tree.Tree{
		Lines:        lines,
		Selection:    0,
		Scroll:       0,
		Options:      b.options,
		NbGitignored: int(b.nbGitignored.Load()),
		TotalSearch:  b.totalSearch,
		GitState:     tree.GitStatusNone,
	}
	t.AfterLinesChanged()
	if b.statusComp != nil {
		// the repository summary is slow: mark it for the background
		// dispatcher
		t.GitState = tree.GitStatusNotComputed
		for i := range t.Lines {
			if status, ok := b.statusComp.LineStatus(t.Lines[i].Path); ok {
				t.Lines[i].GitStatus = status
				t.Lines[i].HasGitStatus = true
			}
		}
	}
	return t
}

func (b *Builder) toTreeLine(id bid) (tree.TreeLine, bool) {
	bl := b.blines.at(id)
	if _, err := os.Lstat(bl.path); err != nil {
		return tree.TreeLine{}, false
	}
	unlisted := 0
	if bl.kind == tree.KindDir && bl.nextChildIdx < len(bl.children) {
		unlisted = len(bl.children) - bl.nextChildIdx
	}
	return tree.TreeLine{
		Path:             bl.path,
		SubPath:          bl.subPath,
		Name:             bl.name,
		Depth:            bl.depth,
		Kind:             bl.kind,
		SymlinkTarget:    bl.symlinkTarget,
		UnlistedChildren: unlisted,
		DirectMatch:      bl.directMatch,
		Score:            bl.score,
		HasError:         bl.hasError,
	}, true
}
