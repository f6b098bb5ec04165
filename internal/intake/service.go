// Package intake accepts raw confirmation messages, parses them, records the
// outcome and pairs successful confirmations with pending payments.
package intake

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"confirm.durgadawaghar.com/internal/db"
	"confirm.durgadawaghar.com/internal/extractor"
	"confirm.durgadawaghar.com/internal/logging"
	"confirm.durgadawaghar.com/internal/matcher"
	"confirm.durgadawaghar.com/internal/metrics"
	"confirm.durgadawaghar.com/internal/parser"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrInvalidEncoding = errors.New("message is not valid UTF-8")
	ErrMessageTooLarge = errors.New("message is too large")
)

// Default options
const (
	DefaultCacheSize       = 1024
	DefaultCacheTTL        = 10 * time.Minute
	DefaultMaxMessageBytes = 64 << 10
)

type Options struct {
	CacheSize       int
	CacheTTL        time.Duration
	MaxMessageBytes int64
}

// Result is the outcome of one submitted message
type Result struct {
	Hash           string
	Report         parser.Report
	Cached         bool                 // report came from the parse cache
	Duplicate      bool                 // confirmation was stored by an earlier submission
	ConfirmationID int64                // zero when rejected
	Match          *matcher.MatchResult // nil when rejected or nothing is pending
}

// Service runs the intake pipeline
type Service struct {
	conn     *sql.DB
	queries  *db.Queries
	cache    *reportCache
	logger   *zap.Logger
	maxBytes int64
}

// NewService creates a new Service. Zero options fall back to defaults.
func NewService(conn *sql.DB, logger *zap.Logger, opts Options) *Service {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		conn:     conn,
		queries:  db.New(conn),
		cache:    newReportCache(opts.CacheSize, opts.CacheTTL),
		logger:   logger,
		maxBytes: opts.MaxMessageBytes,
	}
}

// Queries exposes the read side for listing pages
func (s *Service) Queries() *db.Queries {
	return s.queries
}

// Normalize validates raw input and returns its NFC form
func (s *Service) Normalize(raw string) (string, error) {
	if int64(len(raw)) > s.maxBytes {
		return "", ErrMessageTooLarge
	}
	return NormalizeText(raw)
}

// NormalizeText rejects invalid UTF-8 and blank input and returns the NFC
// form. Unlike Service.Normalize it applies no size limit.
func NormalizeText(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", ErrInvalidEncoding
	}
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyMessage
	}
	return norm.NFC.String(raw), nil
}

// Hash returns the hex SHA-256 of a normalized message
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// inspect parses a normalized message, consulting the cache first
func (s *Service) inspect(text string) (parser.Report, string, bool) {
	hash := Hash(text)
	if report, ok := s.cache.Get(hash); ok {
		return report, hash, true
	}
	report := parser.Inspect(text)
	s.cache.Add(hash, report)
	return report, hash, false
}

// Submit parses one message and records the outcome
func (s *Service) Submit(ctx context.Context, raw, source string) (Result, error) {
	text, err := s.Normalize(raw)
	if err != nil {
		return Result{}, err
	}

	report, hash, cached := s.inspect(text)
	result := Result{Hash: hash, Report: report, Cached: cached}
	log := logging.FromContext(ctx, s.logger).With(zap.String("hash", hash[:12]), zap.String("source", source))

	for _, d := range report.Fields {
		metrics.FieldExtractions.WithLabelValues(string(d.Field), string(d.Status)).Inc()
		if d.Status == extractor.StatusAmbiguous {
			log.Warn("field_ambiguous",
				zap.String("field", string(d.Field)),
				zap.String("pattern", d.Pattern),
				zap.Int("matches", d.Matches))
		}
	}

	if !report.OK() {
		metrics.ConfirmationsTotal.WithLabelValues(metrics.OutcomeRejected, metrics.SourceLabel(source)).Inc()
		log.Info("confirmation_rejected", zap.Strings("fields", failedFields(report)))
		if err := s.reject(ctx, hash, source, text, report); err != nil {
			return result, err
		}
		return result, nil
	}

	metrics.ConfirmationsTotal.WithLabelValues(metrics.OutcomeParsed, metrics.SourceLabel(source)).Inc()
	if err := s.accept(ctx, log, &result, source); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Service) reject(ctx context.Context, hash, source, text string, report parser.Report) error {
	password := report.Field(extractor.FieldPassword)
	account := report.Field(extractor.FieldAccount)
	amount := report.Field(extractor.FieldAmount)

	_, err := s.queries.CreateRejection(ctx, db.CreateRejectionParams{
		MessageHash:     hash,
		Source:          source,
		Message:         text,
		PasswordStatus:  string(password.Status),
		PasswordMatches: int64(password.Matches),
		AccountStatus:   string(account.Status),
		AccountMatches:  int64(account.Matches),
		AmountStatus:    string(amount.Status),
		AmountMatches:   int64(amount.Matches),
	})
	if err != nil {
		return fmt.Errorf("recording rejection: %w", err)
	}
	return nil
}

// accept stores the confirmation and pairs it with a pending payment inside
// one transaction, so a confirmed payment is always linked.
func (s *Service) accept(ctx context.Context, log *zap.Logger, result *Result, source string) error {
	conf := result.Report.Confirmation

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)
	stored, err := q.CreateConfirmation(ctx, db.CreateConfirmationParams{
		MessageHash: result.Hash,
		Password:    conf.Password,
		Account:     conf.Account,
		Amount:      conf.Amount.String(),
		Source:      source,
	})
	if errors.Is(err, db.ErrDuplicate) {
		return duplicate(ctx, q, log, result)
	}
	if err != nil {
		return fmt.Errorf("recording confirmation: %w", err)
	}
	result.ConfirmationID = stored.ID

	match, err := matcher.NewMatcher(q).Match(ctx, *conf)
	switch {
	case errors.Is(err, matcher.ErrNoPendingPayment):
		log.Info("no_pending_payment", zap.String("account", conf.Account))
	case err != nil:
		return fmt.Errorf("matching payment: %w", err)
	default:
		result.Match = match
		if match.Confirmed {
			if err := q.LinkConfirmationPayment(ctx, db.LinkConfirmationPaymentParams{
				ConfirmationID: stored.ID,
				PaymentID:      match.Payment.ID,
			}); err != nil {
				return fmt.Errorf("linking payment: %w", err)
			}
		}
		log.Info("payment_matched",
			zap.String("reference", match.Payment.Reference),
			zap.String("kind", string(match.Kind)),
			zap.Float64("confidence", match.Confidence))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing confirmation: %w", err)
	}
	log.Info("confirmation_accepted", zap.Int64("confirmation_id", stored.ID))
	return nil
}

// duplicate fills result from the confirmation stored by an earlier
// submission. Its payment, if any, was consumed then.
func duplicate(ctx context.Context, q *db.Queries, log *zap.Logger, result *Result) error {
	result.Duplicate = true

	stored, err := q.GetConfirmationByHash(ctx, result.Hash)
	if err != nil {
		return fmt.Errorf("loading confirmation: %w", err)
	}
	result.ConfirmationID = stored.ID

	if stored.PaymentID.Valid {
		payment, err := q.GetPaymentByID(ctx, stored.PaymentID.Int64)
		if err != nil {
			return fmt.Errorf("loading payment: %w", err)
		}
		result.Match = &matcher.MatchResult{
			Payment:    payment,
			Kind:       matcher.MatchExact,
			Confidence: 1.0,
			MatchedOn:  []string{"account", "amount"},
		}
	}

	log.Info("confirmation_duplicate", zap.Int64("confirmation_id", stored.ID))
	return nil
}

func failedFields(report parser.Report) []string {
	var names []string
	for _, d := range report.Failed() {
		names = append(names, string(d.Field)+"="+string(d.Status))
	}
	return names
}
