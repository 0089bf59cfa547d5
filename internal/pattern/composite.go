package pattern

// CompositeOp combines sub-pattern verdicts.
type CompositeOp int

const (
	OpAnd CompositeOp = iota
	OpOr
	OpNot
)

// CompositePattern combines patterns with a boolean operator. Scores of
// matching sub-patterns are summed for And, maximized for Or. Not takes a
// single sub-pattern and matches with score 1 when it does not.
type CompositePattern struct {
	Op   CompositeOp
	Subs []Pattern
}

// NewCompositePattern builds a composition over the given sub-patterns.
func NewCompositePattern(op CompositeOp, subs ...Pattern) *CompositePattern {
	return &CompositePattern{Op: op, Subs: subs}
}

func (p *CompositePattern) IsEmpty() bool {
	for _, s := range p.Subs {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

func (p *CompositePattern) ScoreOf(c Candidate) (int, bool) {
	switch p.Op {
	case OpAnd:
		total := 0
		for _, s := range p.Subs {
			score, ok := s.ScoreOf(c)
			if !ok {
				return 0, false
			}
			total += score
		}
		return total, true
	case OpOr:
		best := 0
		matched := false
		for _, s := range p.Subs {
			if score, ok := s.ScoreOf(c); ok {
				matched = true
				if score > best {
					best = score
				}
			}
		}
		return best, matched
	case OpNot:
		if len(p.Subs) == 0 {
			return 0, false
		}
		if _, ok := p.Subs[0].ScoreOf(c); ok {
			return 0, false
		}
		return 1, true
	}
	return 0, false
}

func (p *CompositePattern) HasRealScores() bool {
	if p.Op == OpNot {
		return false
	}
	for _, s := range p.Subs {
		if s.HasRealScores() {
			return true
		}
	}
	return false
}

func (p *CompositePattern) SearchString(s string) *NameMatch {
	for _, sub := range p.Subs {
		if m := sub.SearchString(s); m != nil {
			return m
		}
	}
	return nil
}

func (p *CompositePattern) SearchContent(path string, desiredLen int) *ContentMatch {
	for _, sub := range p.Subs {
		if m := sub.SearchContent(path, desiredLen); m != nil {
			return m
		}
	}
	return nil
}

func (p *CompositePattern) Object() Object {
	var o Object
	for _, s := range p.Subs {
		so := s.Object()
		o.Subpath = o.Subpath || so.Subpath
		o.Content = o.Content || so.Content
	}
	return o
}
