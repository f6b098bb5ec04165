package handler

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"confirm.durgadawaghar.com/internal/db"
	"confirm.durgadawaghar.com/internal/extractor"
	"confirm.durgadawaghar.com/internal/intake"
	"confirm.durgadawaghar.com/internal/logging"
	"confirm.durgadawaghar.com/internal/matcher"
	"confirm.durgadawaghar.com/internal/metrics"
	"confirm.durgadawaghar.com/internal/parser"
	"confirm.durgadawaghar.com/internal/views/pages"
)

const listLimit = 100

// Pinger reports database reachability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	intake    *intake.Service
	queries   *db.Queries
	matcher   *matcher.Matcher
	db        Pinger
	validator *Validator
	logger    *zap.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(svc *intake.Service, conn Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		intake:    svc,
		queries:   svc.Queries(),
		matcher:   matcher.NewMatcher(svc.Queries()),
		db:        conn,
		validator: NewValidator(),
		logger:    logger,
	}
}

func (h *Handler) log(r *http.Request) *zap.Logger {
	return logging.FromContext(r.Context(), h.logger)
}

// Healthz reports whether the database answers
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.log(r).Error("health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Home renders the parse page
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pages.Home())
}

// Parse submits one message from the form and renders the result fragment
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	message := r.FormValue("message")

	result, err := h.intake.Submit(r.Context(), message, metrics.SourceWeb)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, pages.ParseResult(parseOutcome(result)))
}

// Import renders the import page
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pages.Import())
}

// ImportPreview parses an export without recording it
func (h *Handler) ImportPreview(w http.ResponseWriter, r *http.Request) {
	data := r.FormValue("data")

	previews, err := h.intake.Preview(data)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	messages := make([]pages.PreviewMessage, len(previews))
	for i, p := range previews {
		m := pages.PreviewMessage{
			Index:   i + 1,
			Message: p.Message,
			OK:      p.Report.OK(),
			Fields:  fieldRows(p.Report),
		}
		if c := p.Report.Confirmation; c != nil {
			m.Password = c.Password
			m.Account = c.Account
			m.Amount = c.Amount.String()
		}
		messages[i] = m
	}
	h.render(w, r, pages.ImportPreview(messages, data))
}

// ImportConfirm records every message of an export
func (h *Handler) ImportConfirm(w http.ResponseWriter, r *http.Request) {
	data := r.FormValue("data")

	items, err := h.intake.SubmitBatch(r.Context(), data, metrics.SourceImport)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	var summary pages.ImportSummary
	for _, item := range items {
		switch {
		case item.Err != nil:
			summary.Invalid++
		case !item.Result.Report.OK():
			summary.Rejected++
		case item.Result.Duplicate:
			summary.Duplicates++
		default:
			summary.Accepted++
			if m := item.Result.Match; m != nil && m.Confirmed {
				summary.Matched++
			}
		}
	}
	h.log(r).Info("import_completed",
		zap.Int("accepted", summary.Accepted),
		zap.Int("rejected", summary.Rejected),
		zap.Int("duplicates", summary.Duplicates))
	h.render(w, r, pages.ImportResult(summary))
}

// Confirmations lists recent confirmations
func (h *Handler) Confirmations(w http.ResponseWriter, r *http.Request) {
	list, err := h.queries.ListRecentConfirmations(r.Context(), listLimit)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	rows := make([]pages.ConfirmationRow, len(list))
	for i, c := range list {
		rows[i] = pages.ConfirmationRow{
			CreatedAt: c.CreatedAt.Format("02 Jan 2006 15:04"),
			Account:   c.Account,
			Amount:    c.Amount,
			Source:    c.Source,
			Linked:    c.PaymentID.Valid,
		}
	}
	h.render(w, r, pages.ConfirmationList(rows))
}

// Rejections lists recent rejected messages
func (h *Handler) Rejections(w http.ResponseWriter, r *http.Request) {
	list, err := h.queries.ListRecentRejections(r.Context(), listLimit)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	rows := make([]pages.RejectionRow, len(list))
	for i, rej := range list {
		rows[i] = pages.RejectionRow{
			CreatedAt: rej.CreatedAt.Format("02 Jan 2006 15:04"),
			Source:    rej.Source,
			Message:   rej.Message,
			Password:  rej.PasswordStatus,
			Account:   rej.AccountStatus,
			Amount:    rej.AmountStatus,
		}
	}
	h.render(w, r, pages.RejectionList(rows))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.log(r).Error("rendering page", zap.Error(err))
	}
}

// renderError writes an error fragment. Validation errors keep their status
// so htmx callers can tell them apart; internal errors are logged.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)
	if status >= http.StatusInternalServerError {
		h.log(r).Error("request failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.Error(message).Render(r.Context(), w); err != nil {
		h.log(r).Error("rendering error", zap.Error(err))
	}
}

func parseOutcome(result intake.Result) pages.ParseOutcome {
	o := pages.ParseOutcome{
		OK:        result.Report.OK(),
		Fields:    fieldRows(result.Report),
		Duplicate: result.Duplicate,
	}
	if c := result.Report.Confirmation; c != nil {
		o.Password = c.Password
		o.Account = c.Account
		o.Amount = c.Amount.String()
	}
	if m := result.Match; m != nil {
		o.MatchKind = string(m.Kind)
		o.PaymentReference = m.Payment.Reference
		o.Confidence = m.Confidence
	}
	return o
}

func fieldRows(report parser.Report) []pages.FieldRow {
	rows := make([]pages.FieldRow, 0, len(extractor.Fields))
	for _, f := range extractor.Fields {
		d := report.Field(f)
		rows = append(rows, pages.FieldRow{
			Field:   string(d.Field),
			Status:  string(d.Status),
			Pattern: d.Pattern,
			Matches: d.Matches,
		})
	}
	return rows
}
