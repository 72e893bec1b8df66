// Package file stores cheques in a single JSON document on disk.
// The whole document is rewritten after every change, so it suits small deployments only.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	interfaces "github.com/sheikh-saqib/echeque-service/internal/interfaces"
	"github.com/sheikh-saqib/echeque-service/internal/models"
	"github.com/sheikh-saqib/echeque-service/internal/storage"
)

// FileChequeStore keeps all cheques in memory and mirrors them to a JSON file
// mapping cheque id to record.
type FileChequeStore struct {
	path    string
	mu      sync.RWMutex
	records map[string]storage.Record
}

// Open loads the store from path. A missing file is treated as an empty store.
func Open(path string) (*FileChequeStore, error) {
	s := &FileChequeStore{path: path, records: make(map[string]storage.Record)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cheque file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("parsing cheque file %s: %w", path, err)
	}
	return s, nil
}

func (s *FileChequeStore) Create(ctx context.Context, cheque models.Cheque) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[cheque.ID]; exists {
		return storage.ErrAlreadyExists
	}
	s.records[cheque.ID] = storage.ToRecord(cheque)
	if err := s.flush(); err != nil {
		delete(s.records, cheque.ID)
		return err
	}
	return nil
}

func (s *FileChequeStore) Get(ctx context.Context, id string) (models.Cheque, error) {
	s.mu.RLock()
	rec, exists := s.records[id]
	s.mu.RUnlock()

	if !exists {
		return models.Cheque{}, storage.ErrNotFound
	}
	return rec.Cheque()
}

func (s *FileChequeStore) UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.records[id]
	if !exists {
		return storage.ErrNotFound
	}
	if rec.Status != from {
		return storage.ErrConflict
	}
	prev := rec
	rec.Status = to
	rec.UpdatedAt = at
	s.records[id] = rec
	if err := s.flush(); err != nil {
		s.records[id] = prev
		return err
	}
	return nil
}

// flush writes the document to a temp file and renames it over the data file so
// a crash never leaves a half-written file. Callers must hold s.mu.
func (s *FileChequeStore) flush() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cheques: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cheques-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cheques: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing cheque file: %w", err)
	}
	return nil
}

var _ interfaces.ChequeStore = (*FileChequeStore)(nil)
