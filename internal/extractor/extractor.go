package extractor

// Status is the outcome of extracting a single field
type Status string

const (
	StatusFound     Status = "found"
	StatusNotFound  Status = "not_found"
	StatusAmbiguous Status = "ambiguous"
)

// Diagnosis explains how a field extraction ended. Callers only see a value
// when Status is StatusFound; the rest is kept for logging and storage.
type Diagnosis struct {
	Field   Field
	Status  Status
	Pattern string // deciding pattern; empty when nothing matched
	Matches int    // line matches produced by the deciding pattern
}

// Found reports whether the field produced a trustworthy value
func (d Diagnosis) Found() bool {
	return d.Status == StatusFound
}

// ExtractPassword returns the one-time password digits
func ExtractPassword(text string) (string, Diagnosis) {
	return extractString(FieldPassword, GroupPassword, SplitLines(text))
}

// ExtractAccount returns the receiver account (13-16 digits)
func ExtractAccount(text string) (string, Diagnosis) {
	return extractString(FieldAccount, GroupAccount, SplitLines(text))
}

// ExtractAmount returns the debited amount
func ExtractAmount(text string) (Amount, Diagnosis) {
	return extractAmount(SplitLines(text))
}

// ExtractLines runs all three extractors over already split lines.
// The message parser uses it to split a message only once.
func ExtractLines(lines []string) (password string, account string, amount Amount, diags [3]Diagnosis) {
	password, diags[0] = extractString(FieldPassword, GroupPassword, lines)
	account, diags[1] = extractString(FieldAccount, GroupAccount, lines)
	amount, diags[2] = extractAmount(lines)
	return password, account, amount, diags
}

func extractString(field Field, group string, lines []string) (string, Diagnosis) {
	var value string
	diag := run(field, lines, func(p FieldPattern, caps Captures) bool {
		value = caps[group]
		return true
	})
	if !diag.Found() {
		return "", diag
	}
	return value, diag
}

func extractAmount(lines []string) (Amount, Diagnosis) {
	var value Amount
	diag := run(FieldAmount, lines, func(p FieldPattern, caps Captures) bool {
		a, err := NormalizeAmount(p.Shape, caps)
		if err != nil {
			return false
		}
		value = a
		return true
	})
	if !diag.Found() {
		return Amount{}, diag
	}
	return value, diag
}

// run walks the registered patterns for field in order:
//   - no match: try the next pattern
//   - more than one matching line: the field is ambiguous, stop
//   - exactly one: accept it if the value is usable and stop
func run(field Field, lines []string, accept func(FieldPattern, Captures) bool) Diagnosis {
	return runPatterns(field, registered(field), lines, accept)
}

func runPatterns(field Field, patterns []FieldPattern, lines []string, accept func(FieldPattern, Captures) bool) Diagnosis {
	for _, p := range patterns {
		out := matchSplit(p, lines)
		switch out.Kind {
		case NoMatch:
			continue
		case ManyMatches:
			return Diagnosis{Field: field, Status: StatusAmbiguous, Pattern: p.Name, Matches: out.Count}
		case OneMatch:
			if accept(p, out.Captures) {
				return Diagnosis{Field: field, Status: StatusFound, Pattern: p.Name, Matches: 1}
			}
		}
	}
	return Diagnosis{Field: field, Status: StatusNotFound}
}

// registered returns the registry slice without copying; callers must not modify it
func registered(field Field) []FieldPattern {
	switch field {
	case FieldPassword:
		return passwordPatterns
	case FieldAccount:
		return accountPatterns
	case FieldAmount:
		return amountPatterns
	}
	return nil
}
