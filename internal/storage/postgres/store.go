package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	interfaces "github.com/sheikh-saqib/echeque-service/internal/interfaces" // interface ChequeStore
	"github.com/sheikh-saqib/echeque-service/internal/models"
	"github.com/sheikh-saqib/echeque-service/internal/storage"
)

// uniqueViolation is the SQLSTATE postgres reports for a duplicate primary key.
const uniqueViolation = "23505"

type PostgresChequeStore struct {
	db *sql.DB
}

func NewPostgresChequeStore(db *sql.DB) *PostgresChequeStore {
	return &PostgresChequeStore{
		db: db,
	}
}

// Open connects to dsn with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return db, nil
}

func (p *PostgresChequeStore) Create(ctx context.Context, cheque models.Cheque) error {
	const query = `INSERT INTO cheques (id, sender, receiver, amount, cheque_date, expiry_date, status, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := p.db.ExecContext(ctx, query,
		cheque.ID,
		cheque.Sender,
		cheque.Receiver,
		cheque.Amount,
		models.FormatDate(cheque.ChequeDate),
		models.FormatDate(cheque.ExpiryDate),
		string(cheque.Status),
		cheque.CreatedAt,
		cheque.UpdatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return storage.ErrAlreadyExists
	}
	return err
}

func (p *PostgresChequeStore) Get(ctx context.Context, id string) (models.Cheque, error) {
	const query = `SELECT id, sender, receiver, amount,
		to_char(cheque_date, 'YYYY-MM-DD'), to_char(expiry_date, 'YYYY-MM-DD'),
		status, created_at, updated_at
	FROM cheques WHERE id = $1`

	var (
		rec    storage.Record
		status string
	)
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.Sender,
		&rec.Receiver,
		&rec.Amount,
		&rec.ChequeDate,
		&rec.ExpiryDate,
		&status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Cheque{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Cheque{}, err
	}
	rec.Status = models.Status(status)
	return rec.Cheque()
}

// UpdateStatus only matches the row while it still holds the from status. When
// nothing matched, a second query tells a missing cheque from a lost race.
func (p *PostgresChequeStore) UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) error {
	const query = `UPDATE cheques SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`

	res, err := p.db.ExecContext(ctx, query, id, string(to), at, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := p.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM cheques WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrConflict
}

var _ interfaces.ChequeStore = (*PostgresChequeStore)(nil)
