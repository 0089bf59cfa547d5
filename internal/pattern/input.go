package pattern

import "strings"

// InputPattern couples a pattern with the raw input string it was parsed
// from, so the input field can be restored when a state is revisited.
type InputPattern struct {
	Raw string
	Pat Pattern
}

// NoInput returns the empty input pattern.
func NoInput() InputPattern {
	return InputPattern{Pat: None()}
}

// IsSome tells whether there is a real pattern.
func (ip InputPattern) IsSome() bool {
	return ip.Pat != nil && !ip.Pat.IsEmpty()
}

// Take returns the input pattern and resets the receiver to empty.
func (ip *InputPattern) Take() InputPattern {
	taken := *ip
	*ip = NoInput()
	return taken
}

// Pattern returns the underlying pattern, never nil.
func (ip InputPattern) Pattern() Pattern {
	if ip.Pat == nil {
		return None()
	}
	return ip.Pat
}

// ParseInput parses the search input syntax:
//
//	name          fuzzy match on entry names
//	p/fragment    fuzzy match on subpaths
//	c/needle      exact match in file contents
//	!atom         negation
//	a&b, a|b      composition ('&' binds tighter than '|')
func ParseInput(raw string) InputPattern {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return InputPattern{Raw: raw, Pat: None()}
	}
	return InputPattern{Raw: raw, Pat: parseOr(trimmed)}
}

func parseOr(s string) Pattern {
	parts := strings.Split(s, "|")
	if len(parts) == 1 {
		return parseAnd(parts[0])
	}
	subs := make([]Pattern, 0, len(parts))
	for _, part := range parts {
		subs = append(subs, parseAnd(part))
	}
	return NewCompositePattern(OpOr, subs...)
}

func parseAnd(s string) Pattern {
	parts := strings.Split(s, "&")
	if len(parts) == 1 {
		return parseAtom(parts[0])
	}
	subs := make([]Pattern, 0, len(parts))
	for _, part := range parts {
		subs = append(subs, parseAtom(part))
	}
	return NewCompositePattern(OpAnd, subs...)
}

func parseAtom(s string) Pattern {
	s = strings.TrimSpace(s)
	if negated, ok := strings.CutPrefix(s, "!"); ok {
		return NewCompositePattern(OpNot, parseAtom(negated))
	}
	if query, ok := strings.CutPrefix(s, "p/"); ok {
		return NewPathPattern(query)
	}
	if query, ok := strings.CutPrefix(s, "c/"); ok {
		return NewContentPattern(query)
	}
	if s == "" {
		return None()
	}
	return NewNamePattern(s)
}
