package matcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"confirm.durgadawaghar.com/internal/db"
	"confirm.durgadawaghar.com/internal/metrics"
	"confirm.durgadawaghar.com/internal/parser"
)

// ErrNoPendingPayment is returned when no pending payment exists for the
// confirmed account
var ErrNoPendingPayment = errors.New("no pending payment for account")

// MatchKind describes how a confirmation lines up with a payment
type MatchKind string

const (
	MatchExact          MatchKind = "exact"
	MatchAmountMismatch MatchKind = "amount_mismatch"
)

// Confidence weights for each matched attribute
const (
	AccountWeight = 0.50
	AmountWeight  = 0.50
)

// MatchResult represents a payment candidate with confidence score
type MatchResult struct {
	Payment    db.Payment
	Kind       MatchKind
	Confidence float64
	MatchedOn  []string // "account", "amount"
	Confirmed  bool     // payment was marked confirmed by this match
}

// Matcher pairs parsed confirmations with pending payments
type Matcher struct {
	queries *db.Queries
}

// NewMatcher creates a new Matcher instance
func NewMatcher(q *db.Queries) *Matcher {
	return &Matcher{queries: q}
}

// Register records a new pending payment under a fresh reference
func (m *Matcher) Register(ctx context.Context, account string, amount decimal.Decimal) (db.Payment, error) {
	return m.queries.CreatePayment(ctx, db.CreatePaymentParams{
		Reference: uuid.NewString(),
		Account:   account,
		Amount:    amount.StringFixed(2),
	})
}

// Candidates scores every pending payment for the confirmation's account,
// best first. Payments registered earlier win ties.
func (m *Matcher) Candidates(ctx context.Context, c parser.Confirmation) ([]MatchResult, error) {
	payments, err := m.queries.ListPendingPaymentsByAccount(ctx, c.Account)
	if err != nil {
		return nil, err
	}

	results := make([]MatchResult, 0, len(payments))
	for _, p := range payments {
		amount, err := decimal.NewFromString(p.Amount)
		if err != nil {
			return nil, fmt.Errorf("payment %s has invalid amount %q: %w", p.Reference, p.Amount, err)
		}

		matchedOn := []string{"account"}
		kind := MatchAmountMismatch
		if amount.Equal(c.Amount.Value) {
			matchedOn = append(matchedOn, "amount")
			kind = MatchExact
		}

		results = append(results, MatchResult{
			Payment:    p,
			Kind:       kind,
			Confidence: calculateConfidence(matchedOn),
			MatchedOn:  matchedOn,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results, nil
}

// Match finds the best pending payment for a confirmation. Only an exact
// match marks the payment as confirmed; an amount mismatch is returned for
// review and left pending.
func (m *Matcher) Match(ctx context.Context, c parser.Confirmation) (*MatchResult, error) {
	results, err := m.Candidates(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		metrics.PaymentMatches.WithLabelValues("none").Inc()
		return nil, ErrNoPendingPayment
	}

	best := results[0]
	if best.Kind == MatchExact {
		if err := m.queries.ConfirmPayment(ctx, best.Payment.ID); err != nil {
			return nil, fmt.Errorf("confirming payment %s: %w", best.Payment.Reference, err)
		}
		best.Confirmed = true
		best.Payment.Status = db.PaymentConfirmed
	}

	metrics.PaymentMatches.WithLabelValues(string(best.Kind)).Inc()
	return &best, nil
}

func calculateConfidence(matchedOn []string) float64 {
	var confidence float64
	seen := make(map[string]bool)
	for _, attr := range matchedOn {
		if seen[attr] {
			continue
		}
		seen[attr] = true

		switch attr {
		case "account":
			confidence += AccountWeight
		case "amount":
			confidence += AmountWeight
		}
	}
	return math.Min(confidence, 1.0)
}
