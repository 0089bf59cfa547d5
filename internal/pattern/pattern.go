// Package pattern implements the matchers used to filter and rank tree
// entries: fuzzy name and path matching, exact content search, and
// and/or/not compositions of those.
package pattern

// Candidate is what a pattern scores: one directory entry as seen by the
// tree builder.
type Candidate struct {
	Name        string
	Subpath     string
	Path        string
	RegularFile bool
}

// NameMatch locates the matched runes inside a displayed name so the
// renderer can emphasize them.
type NameMatch struct {
	Score     int
	Positions []int
}

// ContentMatch is an extract of a file around the first content match.
type ContentMatch struct {
	Extract   string
	NeedleIdx int
}

// Object describes what parts of a candidate a pattern looks at.
type Object struct {
	Subpath bool
	Content bool
}

// Pattern scores candidates. Implementations must be safe for concurrent
// use: the builder calls ScoreOf from several goroutines at once.
type Pattern interface {
	IsEmpty() bool
	// ScoreOf returns the score of the candidate and whether it matched
	// at all.
	ScoreOf(c Candidate) (int, bool)
	// HasRealScores tells whether scores are meaningful for ranking
	// (fuzzy scores are, presence/absence ones are not).
	HasRealScores() bool
	// SearchString matches the pattern against a bare string, for
	// display-time highlighting.
	SearchString(s string) *NameMatch
	// SearchContent returns an extract for content patterns, nil for the
	// others.
	SearchContent(path string, desiredLen int) *ContentMatch
	Object() Object
}

type emptyPattern struct{}

// None returns the pattern matching everything with no score.
func None() Pattern {
	return emptyPattern{}
}

func (emptyPattern) IsEmpty() bool                         { return true }
func (emptyPattern) ScoreOf(Candidate) (int, bool)         { return 0, true }
func (emptyPattern) HasRealScores() bool                   { return false }
func (emptyPattern) SearchString(string) *NameMatch        { return nil }
func (emptyPattern) SearchContent(string, int) *ContentMatch { return nil }
func (emptyPattern) Object() Object                        { return Object{} }
