package events

import (
	"time"

	"github.com/sheikh-saqib/echeque-service/internal/models"
)

// ChequeStatusChanged is emitted after a status transition has been persisted.
type ChequeStatusChanged struct {
	ChequeID   string        `json:"cheque_id"`
	From       models.Status `json:"from"`
	To         models.Status `json:"to"`
	OccurredAt time.Time     `json:"occurred_at"`
}
