package pattern

import (
	"bytes"
	"io"
	"os"
)

const (
	// files bigger than this are not content-searched
	maxSearchedFileSize = 64 * 1024 * 1024
	contentProbeSize    = 1024
	contentChunkSize    = 32 * 1024
)

// ContentPattern searches an exact byte sequence in file contents. Binary
// files (NUL byte in the first kilobyte) and oversized files are not
// suitable and never match.
type ContentPattern struct {
	needle []byte
}

// NewContentPattern returns an exact content matcher.
func NewContentPattern(needle string) *ContentPattern {
	return &ContentPattern{needle: []byte(needle)}
}

func (p *ContentPattern) IsEmpty() bool {
	return len(p.needle) == 0
}

func (p *ContentPattern) ScoreOf(c Candidate) (int, bool) {
	if !c.RegularFile {
		return 0, false
	}
	if _, found := p.searchFile(c.Path); !found {
		return 0, false
	}
	return 1, true
}

func (p *ContentPattern) HasRealScores() bool {
	return false
}

func (p *ContentPattern) SearchString(string) *NameMatch {
	return nil
}

// SearchContent returns an extract of the line around the first match,
// trimmed to desiredLen.
func (p *ContentPattern) SearchContent(path string, desiredLen int) *ContentMatch {
	offset, found := p.searchFile(path)
	if !found {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	// rewind to the start of the line (or of the window)
	start := offset - int64(desiredLen)/2
	if start < 0 {
		start = 0
	}
	buf := make([]byte, desiredLen+len(p.needle))
	n, err := f.ReadAt(buf, start)
	if n == 0 && err != nil {
		return nil
	}
	buf = buf[:n]
	needleIdx := int(offset - start)
	if lineStart := bytes.LastIndexByte(buf[:needleIdx], '\n'); lineStart >= 0 {
		buf = buf[lineStart+1:]
		needleIdx -= lineStart + 1
	}
	if lineEnd := bytes.IndexByte(buf, '\n'); lineEnd >= 0 {
		buf = buf[:lineEnd]
	}
	if len(buf) > desiredLen {
		buf = buf[:desiredLen]
	}
	return &ContentMatch{
		Extract:   string(buf),
		NeedleIdx: needleIdx,
	}
}

func (p *ContentPattern) Object() Object {
	return Object{Content: true}
}

// searchFile returns the offset of the first occurrence of the needle.
func (p *ContentPattern) searchFile(path string) (int64, bool) {
	if len(p.needle) == 0 {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() > maxSearchedFileSize {
		return 0, false
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	probe := make([]byte, contentProbeSize)
	n, err := f.Read(probe)
	if n == 0 {
		return 0, false
	}
	probe = probe[:n]
	if bytes.IndexByte(probe, 0) >= 0 {
		// binary content
		return 0, false
	}
	if idx := bytes.Index(probe, p.needle); idx >= 0 {
		return int64(idx), true
	}

	// stream the rest, keeping an overlap so a needle spanning two reads
	// is still seen
	overlap := len(p.needle) - 1
	buf := make([]byte, contentChunkSize)
	carry := make([]byte, 0, overlap)
	if overlap > 0 && len(probe) >= overlap {
		carry = append(carry, probe[len(probe)-overlap:]...)
	} else {
		carry = append(carry, probe...)
	}
	pos := int64(len(probe))
	for {
		n, err := f.Read(buf)
		if n > 0 {
			window := append(append([]byte{}, carry...), buf[:n]...)
			if idx := bytes.Index(window, p.needle); idx >= 0 {
				return pos - int64(len(carry)) + int64(idx), true
			}
			if overlap > 0 && len(window) >= overlap {
				carry = append(carry[:0], window[len(window)-overlap:]...)
			}
			pos += int64(n)
		}
		if err != nil {
			if err != io.EOF {
				return 0, false
			}
			break
		}
	}
	return 0, false
}
