package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db  DBTX
	now func() time.Time
}

func New(db DBTX) *Queries {
	return &Queries{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, now: q.now}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const createPayment = `
INSERT INTO payments (reference, account, amount, status, created_at)
VALUES (?, ?, ?, 'pending', ?)
`

type CreatePaymentParams struct {
	Reference string
	Account   string
	Amount    string
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	createdAt := q.now()
	res, err := q.db.ExecContext(ctx, createPayment, arg.Reference, arg.Account, arg.Amount, createdAt)
	if err != nil {
		return Payment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Payment{}, err
	}
	return Payment{
		ID:        id,
		Reference: arg.Reference,
		Account:   arg.Account,
		Amount:    arg.Amount,
		Status:    PaymentPending,
		CreatedAt: createdAt,
	}, nil
}

const getPaymentByReference = `
SELECT id, reference, account, amount, status, created_at, confirmed_at
FROM payments
WHERE reference = ?
`

func (q *Queries) GetPaymentByReference(ctx context.Context, reference string) (Payment, error) {
	row := q.db.QueryRowContext(ctx, getPaymentByReference, reference)
	var i Payment
	err := row.Scan(&i.ID, &i.Reference, &i.Account, &i.Amount, &i.Status, &i.CreatedAt, &i.ConfirmedAt)
	return i, notFound(err)
}

const getPaymentByID = `
SELECT id, reference, account, amount, status, created_at, confirmed_at
FROM payments
WHERE id = ?
`

func (q *Queries) GetPaymentByID(ctx context.Context, id int64) (Payment, error) {
	row := q.db.QueryRowContext(ctx, getPaymentByID, id)
	var i Payment
	err := row.Scan(&i.ID, &i.Reference, &i.Account, &i.Amount, &i.Status, &i.CreatedAt, &i.ConfirmedAt)
	return i, notFound(err)
}

const listPendingPaymentsByAccount = `
SELECT id, reference, account, amount, status, created_at, confirmed_at
FROM payments
WHERE account = ? AND status = 'pending'
ORDER BY created_at, id
`

func (q *Queries) ListPendingPaymentsByAccount(ctx context.Context, account string) ([]Payment, error) {
	rows, err := q.db.QueryContext(ctx, listPendingPaymentsByAccount, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Payment
	for rows.Next() {
		var i Payment
		if err := rows.Scan(&i.ID, &i.Reference, &i.Account, &i.Amount, &i.Status, &i.CreatedAt, &i.ConfirmedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const confirmPayment = `
UPDATE payments
SET status = 'confirmed', confirmed_at = ?
WHERE id = ? AND status = 'pending'
`

// ConfirmPayment marks a pending payment as confirmed. It returns
// ErrNotFound when the payment does not exist or was already confirmed.
func (q *Queries) ConfirmPayment(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, confirmPayment, q.now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const createConfirmation = `
INSERT INTO confirmations (message_hash, password, account, amount, source, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(message_hash) DO NOTHING
`

type CreateConfirmationParams struct {
	MessageHash string
	Password    string
	Account     string
	Amount      string
	Source      string
}

// CreateConfirmation stores a parsed confirmation. A message seen before
// is left untouched and ErrDuplicate is returned.
func (q *Queries) CreateConfirmation(ctx context.Context, arg CreateConfirmationParams) (Confirmation, error) {
	createdAt := q.now()
	res, err := q.db.ExecContext(ctx, createConfirmation,
		arg.MessageHash, arg.Password, arg.Account, arg.Amount, arg.Source, createdAt)
	if err != nil {
		return Confirmation{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Confirmation{}, err
	}
	if n == 0 {
		return Confirmation{}, ErrDuplicate
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Confirmation{}, err
	}
	return Confirmation{
		ID:          id,
		MessageHash: arg.MessageHash,
		Password:    arg.Password,
		Account:     arg.Account,
		Amount:      arg.Amount,
		Source:      arg.Source,
		CreatedAt:   createdAt,
	}, nil
}

const getConfirmationByHash = `
SELECT id, message_hash, password, account, amount, source, payment_id, created_at
FROM confirmations
WHERE message_hash = ?
`

func (q *Queries) GetConfirmationByHash(ctx context.Context, hash string) (Confirmation, error) {
	row := q.db.QueryRowContext(ctx, getConfirmationByHash, hash)
	var i Confirmation
	err := row.Scan(&i.ID, &i.MessageHash, &i.Password, &i.Account, &i.Amount, &i.Source, &i.PaymentID, &i.CreatedAt)
	return i, notFound(err)
}

const listRecentConfirmations = `
SELECT id, message_hash, password, account, amount, source, payment_id, created_at
FROM confirmations
ORDER BY created_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListRecentConfirmations(ctx context.Context, limit int64) ([]Confirmation, error) {
	rows, err := q.db.QueryContext(ctx, listRecentConfirmations, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Confirmation
	for rows.Next() {
		var i Confirmation
		if err := rows.Scan(&i.ID, &i.MessageHash, &i.Password, &i.Account, &i.Amount, &i.Source, &i.PaymentID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const linkConfirmationPayment = `
UPDATE confirmations SET payment_id = ? WHERE id = ?
`

type LinkConfirmationPaymentParams struct {
	ConfirmationID int64
	PaymentID      int64
}

func (q *Queries) LinkConfirmationPayment(ctx context.Context, arg LinkConfirmationPaymentParams) error {
	_, err := q.db.ExecContext(ctx, linkConfirmationPayment, arg.PaymentID, arg.ConfirmationID)
	return err
}

const createRejection = `
INSERT INTO rejections (
    message_hash, source, message,
    password_status, password_matches,
    account_status, account_matches,
    amount_status, amount_matches,
    created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateRejectionParams struct {
	MessageHash     string
	Source          string
	Message         string
	PasswordStatus  string
	PasswordMatches int64
	AccountStatus   string
	AccountMatches  int64
	AmountStatus    string
	AmountMatches   int64
}

func (q *Queries) CreateRejection(ctx context.Context, arg CreateRejectionParams) (Rejection, error) {
	createdAt := q.now()
	res, err := q.db.ExecContext(ctx, createRejection,
		arg.MessageHash, arg.Source, arg.Message,
		arg.PasswordStatus, arg.PasswordMatches,
		arg.AccountStatus, arg.AccountMatches,
		arg.AmountStatus, arg.AmountMatches,
		createdAt)
	if err != nil {
		return Rejection{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Rejection{}, err
	}
	return Rejection{
		ID:              id,
		MessageHash:     arg.MessageHash,
		Source:          arg.Source,
		Message:         arg.Message,
		PasswordStatus:  arg.PasswordStatus,
		PasswordMatches: arg.PasswordMatches,
		AccountStatus:   arg.AccountStatus,
		AccountMatches:  arg.AccountMatches,
		AmountStatus:    arg.AmountStatus,
		AmountMatches:   arg.AmountMatches,
		CreatedAt:       createdAt,
	}, nil
}

const listRecentRejections = `
SELECT id, message_hash, source, message,
       password_status, password_matches,
       account_status, account_matches,
       amount_status, amount_matches,
       created_at
FROM rejections
ORDER BY created_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListRecentRejections(ctx context.Context, limit int64) ([]Rejection, error) {
	rows, err := q.db.QueryContext(ctx, listRecentRejections, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Rejection
	for rows.Next() {
		var i Rejection
		if err := rows.Scan(
			&i.ID, &i.MessageHash, &i.Source, &i.Message,
			&i.PasswordStatus, &i.PasswordMatches,
			&i.AccountStatus, &i.AccountMatches,
			&i.AmountStatus, &i.AmountMatches,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
