package tree

import (
	"os"
	"path/filepath"
	"syscall"

	"github.com/burrowfs/burrow/internal/dam"
)

// FileSum aggregates a subtree: total bytes, file count, most recent
// modification time, and whether a sparse file was seen.
type FileSum struct {
	Bytes   uint64
	Count   uint64
	Seconds int64
	Sparse  bool
}

// ComputeFileSum walks the subtree at path. It polls the dam once per
// directory and returns ok=false when interrupted. Unreadable entries are
// skipped.
func ComputeFileSum(path string, d *dam.Dam) (FileSum, bool) {
	var sum FileSum
	info, err := os.Lstat(path)
	if err != nil {
		return sum, true
	}
	if !info.IsDir() {
		sum.add(info)
		return sum, true
	}
	dirs := []string{path}
	for len(dirs) > 0 {
		if d.HasEvent() {
			return sum, false
		}
		dir := dirs[len(dirs)-1]
		dirs = dirs[:len(dirs)-1]
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			child := filepath.Join(dir, e.Name())
			info, err := e.Info()
			if err != nil {
				continue
			}
			if info.IsDir() {
				dirs = append(dirs, child)
				continue
			}
			sum.add(info)
		}
	}
	return sum, true
}

func (s *FileSum) add(info os.FileInfo) {
	size := uint64(info.Size())
	s.Bytes += size
	s.Count++
	if mtime := info.ModTime().Unix(); mtime > s.Seconds {
		s.Seconds = mtime
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		if uint64(st.Blocks)*512 < size {
			s.Sparse = true
		}
	}
}
