package extractor

import (
	"fmt"
	"regexp"
)

// Field identifies one of the values extracted from a confirmation message
type Field string

const (
	FieldPassword Field = "password"
	FieldAccount  Field = "account"
	FieldAmount   Field = "amount"
)

// Fields lists every extracted field in report order
var Fields = []Field{FieldPassword, FieldAccount, FieldAmount}

// Capture group names used by the registry
const (
	GroupPassword = "password"
	GroupAccount  = "account"
	GroupInteger  = "integer"
	GroupFraction = "fraction"
	GroupSubunit  = "subunit"
)

// AmountShape tells the normalizer how an amount pattern encodes kopecks
type AmountShape int

const (
	// ShapeNone is used by non-amount patterns
	ShapeNone AmountShape = iota
	// ShapeAttached: "123,20" - fraction digits attached with a separator
	ShapeAttached
	// ShapeSubunit: "123 руб. 20 коп." - whole units and subunits worded separately
	ShapeSubunit
)

// FieldPattern is one registered phrasing for a field
type FieldPattern struct {
	Name  string
	Field Field
	Shape AmountShape

	// Required groups must participate in every counted match.
	Required []string
	// AnyOf groups: at least one must participate. Empty means no constraint.
	AnyOf []string

	expr string
	re   *regexp.Regexp
}

// Expr returns the expression as authored, before line anchoring
func (p FieldPattern) Expr() string {
	return p.expr
}

// mustPattern compiles expr anchored to a whole line and panics if any
// declared group is missing from it.
func mustPattern(p FieldPattern, expr string) FieldPattern {
	p.expr = expr
	p.re = regexp.MustCompile(`^(?:` + expr + `)$`)

	names := make(map[string]bool)
	for _, name := range p.re.SubexpNames() {
		if name != "" {
			names[name] = true
		}
	}
	for _, group := range append(append([]string{}, p.Required...), p.AnyOf...) {
		if !names[group] {
			panic(fmt.Sprintf("extractor: pattern %q does not declare group %q", p.Name, group))
		}
	}
	if p.Field == FieldAmount && p.Shape == ShapeNone {
		panic(fmt.Sprintf("extractor: amount pattern %q has no shape", p.Name))
	}
	return p
}

// Captures holds the named groups that participated in one line match.
// An optional group that did not participate is absent from the map,
// which is different from a group that matched the empty string.
type Captures map[string]string

// Has reports whether group participated in the match
func (c Captures) Has(group string) bool {
	_, ok := c[group]
	return ok
}
