package extractor

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPassword(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
		status  Status
		pattern string
	}{
		{
			name:    "label",
			message: "Пароль: 4821\nСпишется 100р.\nПеревод на счет 410011234567890",
			want:    "4821",
			status:  StatusFound,
			pattern: "password_label",
		},
		{
			name:    "confirmation code",
			message: "Код подтверждения: 773310\nНикому его не сообщайте",
			want:    "773310",
			status:  StatusFound,
			pattern: "password_code_label",
		},
		{
			name:    "code leading",
			message: "993812 — ваш код подтверждения.",
			want:    "993812",
			status:  StatusFound,
			pattern: "password_leading",
		},
		{
			name:    "too short",
			message: "Пароль: 123",
			status:  StatusNotFound,
		},
		{
			name:    "repeated label is ambiguous",
			message: "Пароль: 4821\nПароль: 1111",
			status:  StatusAmbiguous,
			pattern: "password_label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := ExtractPassword(tt.message)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.status, diag.Status)
			assert.Equal(t, tt.pattern, diag.Pattern)
			assert.Equal(t, FieldPassword, diag.Field)
		})
	}
}

func TestExtractAccount(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
		status  Status
	}{
		{name: "13 digits", message: "Перевод на счет 4100112345678", want: "4100112345678", status: StatusFound},
		{name: "16 digits", message: "Перевод на счёт 4100112345678901", want: "4100112345678901", status: StatusFound},
		{name: "recipient wallet", message: "Получатель: кошелек 410011234567890", want: "410011234567890", status: StatusFound},
		{name: "12 digits", message: "Перевод на счет 410011234567", status: StatusNotFound},
		{name: "17 digits", message: "Перевод на счет 41001123456789012", status: StatusNotFound},
		{name: "17 digit recipient", message: "Получатель: 41001123456789012", status: StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := ExtractAccount(tt.message)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.status, diag.Status)
		})
	}
}

func TestExtractNoBreakSpaceSeparators(t *testing.T) {
	password, diag := ExtractPassword("Пароль:\u00a04821")
	assert.Equal(t, StatusFound, diag.Status)
	assert.Equal(t, "4821", password)

	password, diag = ExtractPassword("993812\u00a0—\u00a0ваш\u00a0код подтверждения.")
	assert.Equal(t, StatusFound, diag.Status)
	assert.Equal(t, "993812", password)

	account, diag := ExtractAccount("Перевод\u00a0на\u202fсчет\u00a0410011234567890")
	assert.Equal(t, StatusFound, diag.Status)
	assert.Equal(t, "410011234567890", account)
}

func TestExtractAccountAmbiguityIsFinal(t *testing.T) {
	// account_transfer matches twice; account_recipient would match once
	message := "Перевод на счет 4100112345678901\nПеревод на счет 4100100000000001\nПолучатель: 4100199999999999"

	got, diag := ExtractAccount(message)
	assert.Empty(t, got)
	assert.Equal(t, StatusAmbiguous, diag.Status)
	assert.Equal(t, "account_transfer", diag.Pattern)
	assert.Equal(t, 2, diag.Matches)
}

func TestExtractAccountFirstPatternWins(t *testing.T) {
	message := "Получатель: 4100199999999999\nПеревод на счет 4100112345678901"

	got, diag := ExtractAccount(message)
	assert.Equal(t, "4100112345678901", got)
	assert.Equal(t, "account_transfer", diag.Pattern)
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
		pattern string
	}{
		{name: "attached comma", message: "Спишется 123,20р.", want: "123.20", pattern: "amount_debit_attached"},
		{name: "attached dot rub", message: "Спишется 123.20 руб.", want: "123.20", pattern: "amount_debit_attached"},
		{name: "attached one digit", message: "Спишется 0,5р.", want: "0.50", pattern: "amount_debit_attached"},
		{name: "attached whole", message: "Спишется 300р.", want: "300", pattern: "amount_debit_attached"},
		{name: "attached grouped", message: "Спишется 1 250,00 ₽", want: "1250.00", pattern: "amount_debit_attached"},
		{name: "subunit", message: "Спишется 123 руб. 20 коп.", want: "123.20", pattern: "amount_debit_subunit"},
		{name: "sum subunit only", message: "Сумма: 7 коп.", want: "0.07", pattern: "amount_debit_subunit"},
		{name: "nbsp before currency", message: "Спишется 123,20\u00a0₽", want: "123.20", pattern: "amount_debit_attached"},
		{name: "nbsp after verb", message: "Спишется\u00a0300р.", want: "300", pattern: "amount_debit_attached"},
		{name: "narrow nbsp grouped", message: "Спишется\u202f1\u202f250,00\u00a0руб.", want: "1250.00", pattern: "amount_debit_attached"},
		{name: "nbsp subunit", message: "Сумма:\u00a07\u00a0руб.\u00a050\u00a0коп.", want: "7.50", pattern: "amount_debit_subunit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := ExtractAmount(tt.message)
			require.Equal(t, StatusFound, diag.Status)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.pattern, diag.Pattern)
		})
	}
}

func TestExtractAmountAbsent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		status  Status
	}{
		{name: "no amount", message: "Пароль: 1234", status: StatusNotFound},
		{name: "three digit kopecks", message: "Сумма: 1 руб. 150 коп.", status: StatusNotFound},
		{name: "empty sum", message: "Сумма:", status: StatusNotFound},
		{name: "two debits", message: "Спишется 10р.\nСпишется 20р.", status: StatusAmbiguous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := ExtractAmount(tt.message)
			assert.Equal(t, tt.status, diag.Status)
			assert.True(t, got.Value.IsZero())
		})
	}
}

func TestPatternsReturnsCopy(t *testing.T) {
	patterns := Patterns(FieldAccount)
	require.NotEmpty(t, patterns)
	patterns[0].Name = "changed"

	assert.Equal(t, "account_transfer", Patterns(FieldAccount)[0].Name)
	assert.Nil(t, Patterns(Field("unknown")))
}

func TestRegistryDeclarations(t *testing.T) {
	for _, field := range Fields {
		for _, p := range Patterns(field) {
			assert.Equal(t, field, p.Field, p.Name)
			assert.NotEmpty(t, p.Expr(), p.Name)
			if field == FieldAmount {
				assert.NotEqual(t, ShapeNone, p.Shape, p.Name)
			}
		}
	}
}

func TestMustPatternPanicsOnMissingGroup(t *testing.T) {
	assert.Panics(t, func() {
		mustPattern(FieldPattern{Name: "broken", Field: FieldPassword, Required: []string{GroupPassword}}, `Пароль: (\d+)`)
	})
	assert.Panics(t, func() {
		mustPattern(FieldPattern{Name: "shapeless", Field: FieldAmount}, `(?P<integer>\d+)`)
	})
	assert.NotPanics(t, func() {
		p := mustPattern(FieldPattern{Name: "ok", Field: FieldPassword, Required: []string{GroupPassword}}, `(?P<password>\d+)`)
		assert.IsType(t, &regexp.Regexp{}, p.re)
	})
}

func TestRunFallsThroughRejectedSingleMatch(t *testing.T) {
	lines := []string{"Итого 5", "Всего 7"}
	first := mustPattern(FieldPattern{Name: "first", Field: FieldAmount, Shape: ShapeAttached, Required: []string{GroupInteger}}, `Итого (?P<integer>\d+)`)
	second := mustPattern(FieldPattern{Name: "second", Field: FieldAmount, Shape: ShapeAttached, Required: []string{GroupInteger}}, `Всего (?P<integer>\d+)`)

	var tried []string
	accept := func(p FieldPattern, caps Captures) bool {
		tried = append(tried, p.Name)
		return p.Name != "first"
	}

	diag := runPatterns(FieldAmount, []FieldPattern{first, second}, lines, accept)
	assert.Equal(t, []string{"first", "second"}, tried)
	assert.Equal(t, StatusFound, diag.Status)
	assert.Equal(t, "second", diag.Pattern)

	tried = nil
	diag = runPatterns(FieldAmount, []FieldPattern{first}, lines, accept)
	assert.Equal(t, []string{"first"}, tried)
	assert.Equal(t, StatusNotFound, diag.Status)
	assert.Empty(t, diag.Pattern)
}

func TestExtractAmountSkipsUnusableSingleMatch(t *testing.T) {
	saved := amountPatterns
	t.Cleanup(func() { amountPatterns = saved })
	amountPatterns = []FieldPattern{
		mustPattern(FieldPattern{Name: "three_digit_fraction", Field: FieldAmount, Shape: ShapeAttached, Required: []string{GroupInteger}},
			`Итого (?P<integer>\d+),(?P<fraction>\d{3})`),
		mustPattern(FieldPattern{Name: "whole_units", Field: FieldAmount, Shape: ShapeAttached, Required: []string{GroupInteger}},
			`Итого (?P<integer>\d+),\d+`),
	}

	amount, diag := ExtractAmount("Итого 12,345")
	require.Equal(t, StatusFound, diag.Status)
	assert.Equal(t, "whole_units", diag.Pattern)
	assert.Equal(t, "12", amount.String())
}
