package memory

import (
	"context" // standard Go package for request-scoped context (timeouts, cancellation)
	"sync"    // standard Go package for concurrency primitives like Mutex
	"time"

	interfaces "github.com/sheikh-saqib/echeque-service/internal/interfaces" // interface ChequeStore
	"github.com/sheikh-saqib/echeque-service/internal/models"                // domain models: Cheque
	"github.com/sheikh-saqib/echeque-service/internal/storage"
)

// MemoryChequeStore is an in-memory implementation of interfaces.ChequeStore.
// It keeps cheques in a map keyed by id and is safe for concurrent use.
type MemoryChequeStore struct {
	mu      sync.RWMutex             // protects cheques
	cheques map[string]models.Cheque // cheque id -> record
}

// NewMemoryChequeStore creates and returns a new MemoryChequeStore instance
func NewMemoryChequeStore() *MemoryChequeStore {
	return &MemoryChequeStore{
		cheques: make(map[string]models.Cheque),
	}
}

// Create inserts a new cheque. The id must not already be present.
func (m *MemoryChequeStore) Create(ctx context.Context, cheque models.Cheque) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cheques[cheque.ID]; exists {
		return storage.ErrAlreadyExists
	}
	m.cheques[cheque.ID] = cheque
	return nil
}

// Get returns a copy of the cheque stored under id.
func (m *MemoryChequeStore) Get(ctx context.Context, id string) (models.Cheque, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	cheque, exists := m.cheques[id]
	if !exists {
		return models.Cheque{}, storage.ErrNotFound
	}
	return cheque, nil // returned by value so callers can't modify internal state
}

// UpdateStatus moves the cheque from one status to another, failing with
// storage.ErrConflict if it is no longer in from.
func (m *MemoryChequeStore) UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	cheque, exists := m.cheques[id]
	if !exists {
		return storage.ErrNotFound
	}
	if cheque.Status != from {
		return storage.ErrConflict // someone else moved it first
	}
	cheque.Status = to
	cheque.UpdatedAt = at
	m.cheques[id] = cheque
	return nil
}

// Len reports how many cheques are stored. Useful for tests and debugging.
func (m *MemoryChequeStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cheques)
}

// Compile-time check: ensure MemoryChequeStore implements ChequeStore interface
var _ interfaces.ChequeStore = (*MemoryChequeStore)(nil)
