package interfaces

import (
	"context"
	"time"

	"github.com/sheikh-saqib/echeque-service/internal/models"
)

// ChequeStore is the persistence contract the lifecycle manager depends on.
// Get and UpdateStatus return storage.ErrNotFound for unknown ids;
// Create returns storage.ErrAlreadyExists when the id is taken.
//
// UpdateStatus is a compare-and-set: it writes to only while the stored status is
// still from, and returns storage.ErrConflict otherwise. Managers in different
// processes rely on it to never commit two transitions from the same state.
type ChequeStore interface {
	Create(ctx context.Context, cheque models.Cheque) error
	Get(ctx context.Context, id string) (models.Cheque, error)
	UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) error
}
