// Package redis stores each cheque as a JSON document under its own key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	interfaces "github.com/sheikh-saqib/echeque-service/internal/interfaces"
	"github.com/sheikh-saqib/echeque-service/internal/models"
	"github.com/sheikh-saqib/echeque-service/internal/storage"
)

const (
	keyPrefix     = "echeque:cheque:"
	maxTxAttempts = 5
)

// RedisChequeStore implements interfaces.ChequeStore on a Redis server.
type RedisChequeStore struct {
	client redis.UniversalClient
}

func NewRedisChequeStore(client redis.UniversalClient) *RedisChequeStore {
	return &RedisChequeStore{client: client}
}

// Connect opens a client for addr and checks it responds.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}
	return client, nil
}

func key(id string) string {
	return keyPrefix + id
}

func (r *RedisChequeStore) Create(ctx context.Context, cheque models.Cheque) error {
	data, err := json.Marshal(storage.ToRecord(cheque))
	if err != nil {
		return fmt.Errorf("marshaling cheque: %w", err)
	}
	ok, err := r.client.SetNX(ctx, key(cheque.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("storing cheque: %w", err)
	}
	if !ok {
		return storage.ErrAlreadyExists
	}
	return nil
}

func (r *RedisChequeStore) Get(ctx context.Context, id string) (models.Cheque, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Cheque{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Cheque{}, fmt.Errorf("loading cheque: %w", err)
	}
	return decode(data)
}

// UpdateStatus rewrites the document inside a WATCH transaction, retrying when
// another client modified the key in between. The status check runs on the
// watched value, so a concurrent writer either aborts the transaction or is
// seen as storage.ErrConflict on retry.
func (r *RedisChequeStore) UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) error {
	k := key(id)
	update := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading cheque: %w", err)
		}
		var rec storage.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decoding cheque %s: %w", id, err)
		}
		if rec.Status != from {
			return storage.ErrConflict
		}
		rec.Status = to
		rec.UpdatedAt = at
		out, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling cheque: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, out, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := r.client.Watch(ctx, update, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("updating cheque %s: too much contention", id)
}

func decode(data []byte) (models.Cheque, error) {
	var rec storage.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.Cheque{}, fmt.Errorf("decoding cheque: %w", err)
	}
	return rec.Cheque()
}

var _ interfaces.ChequeStore = (*RedisChequeStore)(nil)
