package pattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonePattern(t *testing.T) {
	p := None()
	assert.True(t, p.IsEmpty())
	assert.False(t, p.HasRealScores())
	score, ok := p.ScoreOf(Candidate{Name: "anything"})
	assert.True(t, ok, "the empty pattern matches everything")
	assert.Equal(t, 0, score)
}

func TestNamePattern(t *testing.T) {
	p := NewNamePattern("rs")

	score, ok := p.ScoreOf(Candidate{Name: "main.rs"})
	assert.True(t, ok)
	assert.Greater(t, score, 0)

	_, ok = p.ScoreOf(Candidate{Name: "notes.txt"})
	assert.False(t, ok)

	m := p.SearchString("main.rs")
	require.NotNil(t, m)
	assert.NotEmpty(t, m.Positions)
	assert.True(t, p.HasRealScores())
}

func TestNamePatternRanksTighterMatches(t *testing.T) {
	p := NewNamePattern("conf")
	tight, ok := p.ScoreOf(Candidate{Name: "conf"})
	require.True(t, ok)
	loose, ok := p.ScoreOf(Candidate{Name: "c_o_n_f_i_g_u_r_a_t_i_o_n"})
	require.True(t, ok)
	assert.Greater(t, tight, loose)
}

func TestPathPattern(t *testing.T) {
	p := NewPathPattern("srcmain")
	_, ok := p.ScoreOf(Candidate{Name: "main.go", Subpath: "src/main.go"})
	assert.True(t, ok)
	_, ok = p.ScoreOf(Candidate{Name: "main.go", Subpath: "doc/main.go"})
	assert.False(t, ok)
	assert.True(t, p.Object().Subpath)
}

func TestContentPattern(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("first line\nthe needle is here\nlast line\n"), 0o644))

	p := NewContentPattern("needle")
	assert.False(t, p.HasRealScores())
	assert.True(t, p.Object().Content)

	score, ok := p.ScoreOf(Candidate{Name: "notes.txt", Path: file, RegularFile: true})
	assert.True(t, ok)
	assert.Equal(t, 1, score)

	_, ok = p.ScoreOf(Candidate{Name: "dir", Path: dir, RegularFile: false})
	assert.False(t, ok, "only regular files are content-searched")

	m := p.SearchContent(file, 48)
	require.NotNil(t, m)
	assert.Contains(t, m.Extract, "needle")
}

func TestContentPatternSkipsBinary(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(file, []byte("nee\x00dle needle"), 0o644))

	p := NewContentPattern("needle")
	_, ok := p.ScoreOf(Candidate{Name: "blob.bin", Path: file, RegularFile: true})
	assert.False(t, ok)
}

func TestCompositePattern(t *testing.T) {
	and := NewCompositePattern(OpAnd, NewNamePattern("ma"), NewNamePattern("go"))
	_, ok := and.ScoreOf(Candidate{Name: "main.go"})
	assert.True(t, ok)
	_, ok = and.ScoreOf(Candidate{Name: "main.rs"})
	assert.False(t, ok)

	or := NewCompositePattern(OpOr, NewNamePattern("rs"), NewNamePattern("go"))
	_, ok = or.ScoreOf(Candidate{Name: "main.rs"})
	assert.True(t, ok)
	_, ok = or.ScoreOf(Candidate{Name: "main.go"})
	assert.True(t, ok)
	_, ok = or.ScoreOf(Candidate{Name: "main.py"})
	assert.False(t, ok)

	not := NewCompositePattern(OpNot, NewNamePattern("test"))
	_, ok = not.ScoreOf(Candidate{Name: "main.go"})
	assert.True(t, ok)
	_, ok = not.ScoreOf(Candidate{Name: "main_test.go"})
	assert.False(t, ok)
	assert.False(t, not.HasRealScores())
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		matches []string
		misses  []string
	}{
		{
			name:    "bare name",
			raw:     "rs",
			matches: []string{"main.rs"},
			misses:  []string{"notes.txt"},
		},
		{
			name:    "path prefix",
			raw:     "p/src",
			matches: []string{"anything"},
		},
		{
			name:    "and composition",
			raw:     "ma&go",
			matches: []string{"main.go"},
			misses:  []string{"main.rs"},
		},
		{
			name:    "or composition",
			raw:     "rs|go",
			matches: []string{"a.rs", "b.go"},
			misses:  []string{"c.py"},
		},
		{
			name:    "negation",
			raw:     "!test",
			matches: []string{"main.go"},
			misses:  []string{"main_test.go"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ip := ParseInput(tc.raw)
			assert.Equal(t, tc.raw, ip.Raw)
			assert.True(t, ip.IsSome())
			for _, name := range tc.matches {
				c := Candidate{Name: name, Subpath: "src/" + name}
				_, ok := ip.Pattern().ScoreOf(c)
				assert.True(t, ok, "%q should match %q", tc.raw, name)
			}
			for _, name := range tc.misses {
				c := Candidate{Name: name, Subpath: "src/" + name}
				_, ok := ip.Pattern().ScoreOf(c)
				assert.False(t, ok, "%q should not match %q", tc.raw, name)
			}
		})
	}
}

func TestParseInputEmpty(t *testing.T) {
	ip := ParseInput("")
	assert.False(t, ip.IsSome())

	ip = ParseInput("   ")
	assert.False(t, ip.IsSome())
}

func TestInputPatternTake(t *testing.T) {
	ip := ParseInput("rs")
	taken := ip.Take()
	assert.True(t, taken.IsSome())
	assert.False(t, ip.IsSome())
	assert.Equal(t, "rs", taken.Raw)
}
