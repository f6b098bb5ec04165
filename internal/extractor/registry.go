package extractor

// Patterns are tried in order; the first pattern with exactly one matching
// line wins. Phrasings are taken from wallet and card-issuer SMS texts.
// All expressions are RE2, so matching stays linear in the message length.
//
// Every expression is anchored to a whole trimmed line by mustPattern.
//
// Tokens may be separated by no-break spaces as well as ASCII whitespace;
// RE2's \s alone is ASCII-only. Digit groups use the same set.
const (
	sp            = `[\s\x{00A0}\x{202F}]`
	groupedDigits = `\d{1,3}(?:[ \x{00A0}\x{202F}]\d{3})+|\d+`
)

var (
	passwordPatterns = []FieldPattern{
		mustPattern(FieldPattern{
			Name:     "password_label",
			Field:    FieldPassword,
			Required: []string{GroupPassword},
		}, `Пароль:?`+sp+`*(?P<password>\d{4,8})\.?`),
		mustPattern(FieldPattern{
			Name:     "password_code_label",
			Field:    FieldPassword,
			Required: []string{GroupPassword},
		}, `(?i)код(?:`+sp+`+подтверждения)?:?`+sp+`*(?P<password>\d{4,8})\.?`),
		mustPattern(FieldPattern{
			Name:     "password_leading",
			Field:    FieldPassword,
			Required: []string{GroupPassword},
		}, `(?P<password>\d{4,8})`+sp+`*[-–—]`+sp+`*(?i:(?:ваш`+sp+`+)?(?:пароль|код(?:`+sp+`+подтверждения)?))\.?`),
	}

	accountPatterns = []FieldPattern{
		mustPattern(FieldPattern{
			Name:     "account_transfer",
			Field:    FieldAccount,
			Required: []string{GroupAccount},
		}, `Перевод`+sp+`+на`+sp+`+сч[её]т`+sp+`+(?P<account>\d{13,16})\.?`),
		mustPattern(FieldPattern{
			Name:     "account_recipient",
			Field:    FieldAccount,
			Required: []string{GroupAccount},
		}, `Получатель:?`+sp+`*(?:(?:кошел[её]к|сч[её]т)`+sp+`+)?(?P<account>\d{13,16})\.?`),
	}

	amountPatterns = []FieldPattern{
		mustPattern(FieldPattern{
			Name:     "amount_debit_attached",
			Field:    FieldAmount,
			Shape:    ShapeAttached,
			Required: []string{GroupInteger},
		}, `Спишется`+sp+`+(?P<integer>`+groupedDigits+`)(?:[,.](?P<fraction>\d{0,2}))?`+sp+`*(?:р|руб|₽)\.?`),
		mustPattern(FieldPattern{
			Name:  "amount_debit_subunit",
			Field: FieldAmount,
			Shape: ShapeSubunit,
			AnyOf: []string{GroupInteger, GroupSubunit},
		}, `(?:Спишется|Сумма:?)`+sp+`*(?:(?P<integer>`+groupedDigits+`)`+sp+`*руб\.?)?`+sp+`*(?:(?P<subunit>\d{1,2})`+sp+`*коп\.?)?`),
	}
)

// Patterns returns the ordered patterns registered for field.
// The returned slice is a copy; the registry itself is never mutated.
func Patterns(field Field) []FieldPattern {
	src := registered(field)
	out := make([]FieldPattern, len(src))
	copy(out, src)
	return out
}
