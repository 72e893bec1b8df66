package storage

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/echeque-service/internal/models"
)

// Record is the serialised form of a cheque shared by the document stores
// (file and redis). Dates are kept as ISO-8601 strings.
type Record struct {
	ID         string          `json:"id"`
	Sender     string          `json:"sender"`
	Receiver   string          `json:"receiver"`
	Amount     decimal.Decimal `json:"amount"`
	ChequeDate string          `json:"cheque_date"`
	ExpiryDate string          `json:"expiry_date"`
	Status     models.Status   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ToRecord converts a cheque to its stored form.
func ToRecord(c models.Cheque) Record {
	return Record{
		ID:         c.ID,
		Sender:     c.Sender,
		Receiver:   c.Receiver,
		Amount:     c.Amount,
		ChequeDate: models.FormatDate(c.ChequeDate),
		ExpiryDate: models.FormatDate(c.ExpiryDate),
		Status:     c.Status,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// Cheque converts a stored record back into the domain type.
func (r Record) Cheque() (models.Cheque, error) {
	chequeDate, err := models.ParseDate(r.ChequeDate)
	if err != nil {
		return models.Cheque{}, fmt.Errorf("record %s cheque_date: %w", r.ID, err)
	}
	expiryDate, err := models.ParseDate(r.ExpiryDate)
	if err != nil {
		return models.Cheque{}, fmt.Errorf("record %s expiry_date: %w", r.ID, err)
	}
	if !r.Status.Valid() {
		return models.Cheque{}, fmt.Errorf("record %s: unknown status %q", r.ID, r.Status)
	}
	return models.Cheque{
		ID:         r.ID,
		Sender:     r.Sender,
		Receiver:   r.Receiver,
		Amount:     r.Amount,
		ChequeDate: chequeDate,
		ExpiryDate: expiryDate,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}
