package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a cheque.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusSigned    Status = "Signed"
	StatusCleared   Status = "Cleared"
	StatusCancelled Status = "Cancelled"
	StatusExpired   Status = "Expired"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSigned, StatusCleared, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Live reports whether the cheque can still expire, i.e. it is Pending or Signed.
func (s Status) Live() bool {
	return s == StatusPending || s == StatusSigned
}

// Cheque is a single electronic cheque.
// Everything except Status and UpdatedAt is written once at issue time.
type Cheque struct {
	ID         string
	Sender     string
	Receiver   string
	Amount     decimal.Decimal
	ChequeDate time.Time // calendar date, UTC midnight
	ExpiryDate time.Time // calendar date, UTC midnight
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ExpiredOn reports whether the expiry date lies strictly before today.
// today must be a calendar date as returned by DateOf.
func (c Cheque) ExpiredOn(today time.Time) bool {
	return c.ExpiryDate.Before(today)
}
