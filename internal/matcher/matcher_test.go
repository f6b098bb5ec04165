package matcher

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confirm.durgadawaghar.com/internal/db"
	"confirm.durgadawaghar.com/internal/extractor"
	"confirm.durgadawaghar.com/internal/parser"
)

const account = "410011234567890"

func newTestMatcher(t *testing.T) (*Matcher, *db.Queries) {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))
	q := db.New(conn)
	return NewMatcher(q), q
}

func confirmation(amount string) parser.Confirmation {
	return parser.Confirmation{
		Password: "4821",
		Account:  account,
		Amount:   extractor.Amount{Value: decimal.RequireFromString(amount), Scale: 2},
	}
}

func TestMatchExact(t *testing.T) {
	m, q := newTestMatcher(t)
	ctx := context.Background()

	_, err := m.Register(ctx, account, decimal.RequireFromString("50"))
	require.NoError(t, err)
	want, err := m.Register(ctx, account, decimal.RequireFromString("123.2"))
	require.NoError(t, err)
	assert.NotEmpty(t, want.Reference)

	result, err := m.Match(ctx, confirmation("123.20"))
	require.NoError(t, err)
	assert.Equal(t, MatchExact, result.Kind)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, want.Reference, result.Payment.Reference)
	assert.True(t, result.Confirmed)
	assert.ElementsMatch(t, []string{"account", "amount"}, result.MatchedOn)

	stored, err := q.GetPaymentByReference(ctx, want.Reference)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentConfirmed, stored.Status)
}

func TestMatchAmountMismatchStaysPending(t *testing.T) {
	m, q := newTestMatcher(t)
	ctx := context.Background()

	p, err := m.Register(ctx, account, decimal.RequireFromString("99.99"))
	require.NoError(t, err)

	result, err := m.Match(ctx, confirmation("123.20"))
	require.NoError(t, err)
	assert.Equal(t, MatchAmountMismatch, result.Kind)
	assert.Equal(t, 0.5, result.Confidence)
	assert.False(t, result.Confirmed)

	stored, err := q.GetPaymentByReference(ctx, p.Reference)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentPending, stored.Status)
}

func TestMatchNoPendingPayment(t *testing.T) {
	m, _ := newTestMatcher(t)
	ctx := context.Background()

	_, err := m.Register(ctx, "4100199999999999", decimal.RequireFromString("123.20"))
	require.NoError(t, err)

	_, err = m.Match(ctx, confirmation("123.20"))
	assert.ErrorIs(t, err, ErrNoPendingPayment)
}

func TestMatchConsumesPayment(t *testing.T) {
	m, _ := newTestMatcher(t)
	ctx := context.Background()

	_, err := m.Register(ctx, account, decimal.RequireFromString("10"))
	require.NoError(t, err)

	_, err = m.Match(ctx, confirmation("10.00"))
	require.NoError(t, err)

	_, err = m.Match(ctx, confirmation("10.00"))
	assert.ErrorIs(t, err, ErrNoPendingPayment)
}

func TestCandidatesOrder(t *testing.T) {
	m, _ := newTestMatcher(t)
	ctx := context.Background()

	first, err := m.Register(ctx, account, decimal.RequireFromString("1"))
	require.NoError(t, err)
	second, err := m.Register(ctx, account, decimal.RequireFromString("2"))
	require.NoError(t, err)
	exact, err := m.Register(ctx, account, decimal.RequireFromString("3"))
	require.NoError(t, err)

	results, err := m.Candidates(ctx, confirmation("3"))
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, exact.Reference, results[0].Payment.Reference)
	assert.Equal(t, first.Reference, results[1].Payment.Reference)
	assert.Equal(t, second.Reference, results[2].Payment.Reference)
}

func TestCalculateConfidence(t *testing.T) {
	tests := []struct {
		name      string
		matchedOn []string
		want      float64
	}{
		{"none", nil, 0},
		{"account", []string{"account"}, 0.5},
		{"both", []string{"account", "amount"}, 1.0},
		{"duplicates counted once", []string{"account", "account"}, 0.5},
		{"unknown ignored", []string{"account", "bank"}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateConfidence(tt.matchedOn))
		})
	}
}
