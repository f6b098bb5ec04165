package extractor

import "strings"

// MatchKind distinguishes a clean single match from an ambiguous one
type MatchKind int

const (
	NoMatch MatchKind = iota
	OneMatch
	ManyMatches
)

func (k MatchKind) String() string {
	switch k {
	case OneMatch:
		return "one"
	case ManyMatches:
		return "many"
	default:
		return "none"
	}
}

// MatchOutcome is the result of applying one pattern to every line of a message.
// Captures and Line are only set when Kind is OneMatch.
type MatchOutcome struct {
	Kind     MatchKind
	Count    int
	Captures Captures
	Line     int // zero-based index into SplitLines(text)
}

// SplitLines breaks text into trimmed physical lines. "\r\n", "\n" and a
// lone "\r" each end one line, so CRLF text never yields phantom blank lines.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, strings.TrimSpace(text[start:i]))
			start = i + 1
		case '\r':
			lines = append(lines, strings.TrimSpace(text[start:i]))
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, strings.TrimSpace(text[start:]))
	}
	return lines
}

// MatchLines applies p to each line of text and counts the lines whose whole
// content matches and satisfies the pattern's group declarations.
func MatchLines(p FieldPattern, text string) MatchOutcome {
	return matchSplit(p, SplitLines(text))
}

func matchSplit(p FieldPattern, lines []string) MatchOutcome {
	var out MatchOutcome
	for i, line := range lines {
		caps, ok := p.capture(line)
		if !ok {
			continue
		}
		out.Count++
		if out.Count == 1 {
			out.Captures = caps
			out.Line = i
		}
	}

	switch {
	case out.Count == 0:
		out.Kind = NoMatch
	case out.Count == 1:
		out.Kind = OneMatch
	default:
		out.Kind = ManyMatches
		out.Captures = nil
		out.Line = 0
	}
	return out
}

// capture matches a single line and returns the participating named groups
func (p FieldPattern) capture(line string) (Captures, bool) {
	loc := p.re.FindStringSubmatchIndex(line)
	if loc == nil {
		return nil, false
	}

	caps := make(Captures)
	for i, name := range p.re.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		caps[name] = line[loc[2*i]:loc[2*i+1]]
	}

	for _, group := range p.Required {
		if !caps.Has(group) {
			return nil, false
		}
	}
	if len(p.AnyOf) > 0 {
		found := false
		for _, group := range p.AnyOf {
			if caps.Has(group) {
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return caps, true
}
