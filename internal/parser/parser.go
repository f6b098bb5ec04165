package parser

import (
	"confirm.durgadawaghar.com/internal/extractor"
)

// Confirmation represents a parsed payment confirmation message
type Confirmation struct {
	Password string           // one-time password digits
	Account  string           // receiver account, 13-16 digits
	Amount   extractor.Amount // debited amount
}

// Report is the full outcome of parsing one message. Confirmation is nil
// unless every field was extracted; Fields is always populated so callers
// can tell "not found" from "ambiguous" when logging a rejection.
type Report struct {
	Confirmation *Confirmation
	Fields       [3]extractor.Diagnosis // password, account, amount
}

// OK reports whether the message produced a confirmation
func (r Report) OK() bool {
	return r.Confirmation != nil
}

// Field returns the diagnosis for f
func (r Report) Field(f extractor.Field) extractor.Diagnosis {
	for _, d := range r.Fields {
		if d.Field == f {
			return d
		}
	}
	return extractor.Diagnosis{Field: f, Status: extractor.StatusNotFound}
}

// Failed returns the diagnoses of fields that were not extracted
func (r Report) Failed() []extractor.Diagnosis {
	var failed []extractor.Diagnosis
	for _, d := range r.Fields {
		if !d.Found() {
			failed = append(failed, d)
		}
	}
	return failed
}

// Parse extracts password, account and amount from a confirmation message.
// It returns false unless all three fields were found; partial results are
// never returned.
func Parse(text string) (Confirmation, bool) {
	report := Inspect(text)
	if !report.OK() {
		return Confirmation{}, false
	}
	return *report.Confirmation, true
}

// Inspect runs every field extractor, without stopping at the first failed
// field, and returns their diagnoses together with the confirmation if any.
func Inspect(text string) Report {
	lines := extractor.SplitLines(text)
	password, account, amount, diags := extractor.ExtractLines(lines)

	report := Report{Fields: diags}
	for _, d := range diags {
		if !d.Found() {
			return report
		}
	}

	report.Confirmation = &Confirmation{
		Password: password,
		Account:  account,
		Amount:   amount,
	}
	return report
}
