package pattern

import "github.com/sahilm/fuzzy"

// NamePattern fuzzy-matches the entry name.
type NamePattern struct {
	query string
}

// NewNamePattern returns a fuzzy matcher on entry names.
func NewNamePattern(query string) *NamePattern {
	return &NamePattern{query: query}
}

func (p *NamePattern) IsEmpty() bool {
	return p.query == ""
}

func (p *NamePattern) ScoreOf(c Candidate) (int, bool) {
	if m := fuzzyMatch(p.query, c.Name); m != nil {
		return m.Score, true
	}
	return 0, false
}

func (p *NamePattern) HasRealScores() bool {
	return true
}

func (p *NamePattern) SearchString(s string) *NameMatch {
	return fuzzyMatch(p.query, s)
}

func (p *NamePattern) SearchContent(string, int) *ContentMatch {
	return nil
}

func (p *NamePattern) Object() Object {
	return Object{}
}

// PathPattern fuzzy-matches the subpath from the tree root, so deep
// entries can be reached by typing fragments of intermediate directories.
type PathPattern struct {
	query string
}

// NewPathPattern returns a fuzzy matcher on subpaths.
func NewPathPattern(query string) *PathPattern {
	return &PathPattern{query: query}
}

func (p *PathPattern) IsEmpty() bool {
	return p.query == ""
}

func (p *PathPattern) ScoreOf(c Candidate) (int, bool) {
	if m := fuzzyMatch(p.query, c.Subpath); m != nil {
		return m.Score, true
	}
	return 0, false
}

func (p *PathPattern) HasRealScores() bool {
	return true
}

func (p *PathPattern) SearchString(s string) *NameMatch {
	return fuzzyMatch(p.query, s)
}

func (p *PathPattern) SearchContent(string, int) *ContentMatch {
	return nil
}

func (p *PathPattern) Object() Object {
	return Object{Subpath: true}
}

// fuzzyMatch scores a single haystack. Scores are floored at 1 so they
// compose with the builder's depth doping without flipping signs.
func fuzzyMatch(query, s string) *NameMatch {
	if query == "" || s == "" {
		return nil
	}
	matches := fuzzy.Find(query, []string{s})
	if len(matches) == 0 {
		return nil
	}
	score := matches[0].Score
	if score < 1 {
		score = 1
	}
	return &NameMatch{
		Score:     score,
		Positions: matches[0].MatchedIndexes,
	}
}
