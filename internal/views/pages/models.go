// Package pages renders the HTML pages and htmx fragments.
package pages

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

// FieldRow is one field's extraction diagnosis
type FieldRow struct {
	Field   string
	Status  string
	Pattern string
	Matches int
}

// ParseOutcome is the result fragment for a single parsed message
type ParseOutcome struct {
	OK               bool
	Password         string
	Account          string
	Amount           string
	Fields           []FieldRow
	Duplicate        bool
	MatchKind        string
	PaymentReference string
	Confidence       float64
}

// PreviewMessage is one message of an export before it is recorded
type PreviewMessage struct {
	Index    int
	Message  string
	OK       bool
	Password string
	Account  string
	Amount   string
	Fields   []FieldRow
}

// ImportSummary counts the outcomes of a recorded export
type ImportSummary struct {
	Accepted   int
	Rejected   int
	Duplicates int
	Matched    int
	Invalid    int
}

type ConfirmationRow struct {
	CreatedAt string
	Account   string
	Amount    string
	Source    string
	Linked    bool
}

type RejectionRow struct {
	CreatedAt string
	Source    string
	Message   string
	Password  string
	Account   string
	Amount    string
}

func countOK(messages []PreviewMessage) int {
	n := 0
	for _, m := range messages {
		if m.OK {
			n++
		}
	}
	return n
}
