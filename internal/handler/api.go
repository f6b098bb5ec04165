package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"confirm.durgadawaghar.com/internal/db"
	"confirm.durgadawaghar.com/internal/intake"
	"confirm.durgadawaghar.com/internal/metrics"
)

type submitRequest struct {
	Message string `json:"message" validate:"required"`
	Source  string `json:"source" validate:"omitempty,oneof=api web import"`
}

type createPaymentRequest struct {
	Account string `json:"account" validate:"required,account"`
	Amount  string `json:"amount" validate:"required,amount"`
}

type fieldResponse struct {
	Field   string `json:"field"`
	Status  string `json:"status"`
	Pattern string `json:"pattern,omitempty"`
	Matches int    `json:"matches"`
}

type matchResponse struct {
	Reference  string  `json:"reference"`
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence"`
	Confirmed  bool    `json:"confirmed"`
}

type confirmationResponse struct {
	Password  string          `json:"password"`
	Account   string          `json:"account"`
	Amount    string          `json:"amount"`
	Hash      string          `json:"hash"`
	Duplicate bool            `json:"duplicate"`
	Payment   *matchResponse  `json:"payment"`
	Fields    []fieldResponse `json:"fields"`
}

type rejectionResponse struct {
	Error  string          `json:"error"`
	Hash   string          `json:"hash"`
	Fields []fieldResponse `json:"fields"`
}

type paymentResponse struct {
	Reference   string     `json:"reference"`
	Account     string     `json:"account"`
	Amount      string     `json:"amount"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// SubmitConfirmation parses a confirmation message and pairs it with a
// pending payment. A message without all three fields is answered with 422
// and the per-field diagnostics.
func (h *Handler) SubmitConfirmation(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Source == "" {
		req.Source = metrics.SourceAPI
	}

	result, err := h.intake.Submit(r.Context(), req.Message, req.Source)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	fields := fieldResponses(result)
	if !result.Report.OK() {
		respondJSON(w, http.StatusUnprocessableEntity, rejectionResponse{
			Error:  ErrMsgNoConfirmation,
			Hash:   result.Hash,
			Fields: fields,
		})
		return
	}

	c := result.Report.Confirmation
	resp := confirmationResponse{
		Password:  c.Password,
		Account:   c.Account,
		Amount:    c.Amount.String(),
		Hash:      result.Hash,
		Duplicate: result.Duplicate,
		Fields:    fields,
	}
	if m := result.Match; m != nil {
		resp.Payment = &matchResponse{
			Reference:  m.Payment.Reference,
			Kind:       string(m.Kind),
			Confidence: m.Confidence,
			Confirmed:  m.Confirmed,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// CreatePayment registers a pending payment
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	// validated by the amount rule
	amount := decimal.RequireFromString(req.Amount)
	payment, err := h.matcher.Register(r.Context(), req.Account, amount)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.log(r).Info("payment_registered",
		zap.String("reference", payment.Reference),
		zap.String("account", payment.Account),
		zap.String("amount", payment.Amount))
	respondJSON(w, http.StatusCreated, toPaymentResponse(payment))
}

// GetPayment returns a payment by reference
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.queries.GetPaymentByReference(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPaymentResponse(payment))
}

// decode reads and validates a JSON body, answering the request itself
// when the body is unusable
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		status, _ := mapError(err)
		if status == http.StatusRequestEntityTooLarge {
			respondError(w, status, ErrMsgTooLarge)
			return false
		}
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return false
	}
	if err := h.validator.ValidateStruct(v); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  ErrMsgInvalidRequest,
			Fields: FormatValidationError(err),
		})
		return false
	}
	return true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)
	if status >= http.StatusInternalServerError {
		h.log(r).Error("request failed", zap.Error(err))
	}
	respondError(w, status, message)
}

func fieldResponses(result intake.Result) []fieldResponse {
	rows := fieldRows(result.Report)
	out := make([]fieldResponse, len(rows))
	for i, row := range rows {
		out[i] = fieldResponse(row)
	}
	return out
}

func toPaymentResponse(p db.Payment) paymentResponse {
	resp := paymentResponse{
		Reference: p.Reference,
		Account:   p.Account,
		Amount:    p.Amount,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
	if p.ConfirmedAt.Valid {
		t := p.ConfirmedAt.Time
		resp.ConfirmedAt = &t
	}
	return resp
}
