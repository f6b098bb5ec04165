package intake

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"confirm.durgadawaghar.com/internal/db"
	"confirm.durgadawaghar.com/internal/extractor"
	"confirm.durgadawaghar.com/internal/matcher"
	"confirm.durgadawaghar.com/internal/metrics"
)

const (
	testAccount   = "410011234567890"
	walletMessage = `Никому не говорите пароль! Его спрашивают только мошенники.
Пароль: 4821
Перевод на счет 410011234567890
Спишется 123,20р.`
)

func newTestService(t *testing.T) (*Service, *observer.ObservedLogs) {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))

	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewService(conn, zap.New(core), Options{CacheSize: 8, CacheTTL: time.Minute, MaxMessageBytes: 4096})
	return svc, logs
}

func registerPayment(t *testing.T, svc *Service, amount string) db.Payment {
	t.Helper()
	p, err := matcher.NewMatcher(svc.Queries()).Register(context.Background(), testAccount, decimal.RequireFromString(amount))
	require.NoError(t, err)
	return p
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrEmptyMessage},
		{"whitespace", " \r\n\t", ErrEmptyMessage},
		{"invalid utf8", "Пароль: 4821\n\xff", ErrInvalidEncoding},
		{"too large", strings.Repeat("a", 5000), ErrMessageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.raw, "test")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSubmitMatchesPendingPayment(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()
	payment := registerPayment(t, svc, "123.2")

	result, err := svc.Submit(ctx, walletMessage, "api")
	require.NoError(t, err)
	require.True(t, result.Report.OK())
	assert.False(t, result.Cached)
	assert.NotZero(t, result.ConfirmationID)

	require.NotNil(t, result.Match)
	assert.Equal(t, matcher.MatchExact, result.Match.Kind)
	assert.Equal(t, payment.Reference, result.Match.Payment.Reference)
	assert.True(t, result.Match.Confirmed)

	stored, err := svc.Queries().GetConfirmationByHash(ctx, result.Hash)
	require.NoError(t, err)
	assert.Equal(t, "123.20", stored.Amount)
	assert.Equal(t, payment.ID, stored.PaymentID.Int64)

	assert.Equal(t, 1, logs.FilterMessage("payment_matched").Len())
	assert.Equal(t, 1, logs.FilterMessage("confirmation_accepted").Len())
}

func TestSubmitDuplicate(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()
	registerPayment(t, svc, "123.20")

	first, err := svc.Submit(ctx, walletMessage, "api")
	require.NoError(t, err)

	second, err := svc.Submit(ctx, walletMessage, "api")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.ConfirmationID, second.ConfirmationID)
	require.NotNil(t, second.Match)
	assert.Equal(t, first.Match.Payment.Reference, second.Match.Payment.Reference)
	assert.False(t, second.Match.Confirmed)

	assert.Equal(t, 1, logs.FilterMessage("confirmation_duplicate").Len())

	recent, err := svc.Queries().ListRecentConfirmations(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestSubmitNormalizesBeforeHashing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// "ё" precomposed vs "е" + combining diaeresis
	composed := "Пароль: 4821\nПеревод на счёт 410011234567890\nСпишется 5р."
	decomposed := strings.Replace(composed, "\u0451", "\u0435\u0308", 1)

	a, err := svc.Submit(ctx, composed, "api")
	require.NoError(t, err)
	b, err := svc.Submit(ctx, decomposed, "api")
	require.NoError(t, err)

	assert.True(t, a.Report.OK())
	assert.Equal(t, a.Hash, b.Hash)
	assert.True(t, b.Duplicate)
}

func TestSubmitWithoutPendingPayment(t *testing.T) {
	svc, logs := newTestService(t)

	result, err := svc.Submit(context.Background(), walletMessage, "api")
	require.NoError(t, err)
	assert.True(t, result.Report.OK())
	assert.Nil(t, result.Match)
	assert.NotZero(t, result.ConfirmationID)
	assert.Equal(t, 1, logs.FilterMessage("no_pending_payment").Len())
}

func TestSubmitAmountMismatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	payment := registerPayment(t, svc, "99")

	result, err := svc.Submit(ctx, walletMessage, "api")
	require.NoError(t, err)
	require.NotNil(t, result.Match)
	assert.Equal(t, matcher.MatchAmountMismatch, result.Match.Kind)

	stored, err := svc.Queries().GetConfirmationByHash(ctx, result.Hash)
	require.NoError(t, err)
	assert.False(t, stored.PaymentID.Valid)

	p, err := svc.Queries().GetPaymentByReference(ctx, payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentPending, p.Status)
}

func TestSubmitRejected(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()

	message := "Пароль: 4821\nПеревод на счет 410011234567890\nСпишется 1р.\nСпишется 2р."
	result, err := svc.Submit(ctx, message, "import")
	require.NoError(t, err)
	assert.False(t, result.Report.OK())
	assert.Zero(t, result.ConfirmationID)

	ambiguous := logs.FilterMessage("field_ambiguous").All()
	require.Len(t, ambiguous, 1)
	fields := ambiguous[0].ContextMap()
	assert.Equal(t, string(extractor.FieldAmount), fields["field"])
	assert.Equal(t, "amount_debit_attached", fields["pattern"])
	assert.Equal(t, int64(2), fields["matches"])
	assert.Equal(t, zapcore.WarnLevel, ambiguous[0].Level)

	assert.Equal(t, 1, logs.FilterMessage("confirmation_rejected").Len())

	rejections, err := svc.Queries().ListRecentRejections(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rejections, 1)
	assert.Equal(t, "found", rejections[0].PasswordStatus)
	assert.Equal(t, "ambiguous", rejections[0].AmountStatus)
	assert.Equal(t, int64(2), rejections[0].AmountMatches)
	assert.Equal(t, "import", rejections[0].Source)
}

func TestCacheReturnsCopies(t *testing.T) {
	svc, _ := newTestService(t)

	text, err := svc.Normalize(walletMessage)
	require.NoError(t, err)

	first, _, cached := svc.inspect(text)
	require.False(t, cached)
	first.Confirmation.Password = "0000"

	second, _, cached := svc.inspect(text)
	require.True(t, cached)
	assert.Equal(t, "4821", second.Confirmation.Password)
	assert.Equal(t, 1, svc.cache.Len())
}

func TestSubmitBoundsSourceLabel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	other := metrics.ConfirmationsTotal.WithLabelValues(metrics.OutcomeRejected, metrics.SourceOther)
	before := testutil.ToFloat64(other)

	_, err := svc.Submit(ctx, "Пароль: 4821", "campaign-7f3a9c")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "Пароль: 1234", "campaign-b81e02")
	require.NoError(t, err)

	assert.Equal(t, before+2, testutil.ToFloat64(other))

	rejections, err := svc.Queries().ListRecentRejections(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rejections, 2)
	assert.ElementsMatch(t, []string{"campaign-7f3a9c", "campaign-b81e02"},
		[]string{rejections[0].Source, rejections[1].Source})
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		err  error
	}{
		{name: "composes", raw: "сче\u0308т", want: "счёт"},
		{name: "no size limit", raw: strings.Repeat("a", 5000), want: strings.Repeat("a", 5000)},
		{name: "blank", raw: "\n\t ", err: ErrEmptyMessage},
		{name: "invalid", raw: "\xff", err: ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeText(tt.raw)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
