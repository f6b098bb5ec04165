package db

import (
	"database/sql"
	"time"
)

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
)

type Payment struct {
	ID          int64
	Reference   string
	Account     string
	Amount      string
	Status      string
	CreatedAt   time.Time
	ConfirmedAt sql.NullTime
}

type Confirmation struct {
	ID          int64
	MessageHash string
	Password    string
	Account     string
	Amount      string
	Source      string
	PaymentID   sql.NullInt64
	CreatedAt   time.Time
}

type Rejection struct {
	ID              int64
	MessageHash     string
	Source          string
	Message         string
	PasswordStatus  string
	PasswordMatches int64
	AccountStatus   string
	AccountMatches  int64
	AmountStatus    string
	AmountMatches   int64
	CreatedAt       time.Time
}
