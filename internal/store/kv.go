package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/learnhub/internal/kv"
)

const kvTable = "kv"

// KV is the durable key-value store. Values survive restarts.
type KV struct {
	db *sql.DB
}

var _ kv.Store = (*KV)(nil)

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	b := builder()
	query, args := b.Select("value").
		From(b.Table(kvTable)).
		Where(entsql.EQ("name", key)).
		Query()

	var value string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	query, args := builder().Insert(kvTable).
		Columns("name", "value", "updated_at").
		Values(key, value, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("name"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *KV) Remove(ctx context.Context, key string) error {
	query, args := builder().Delete(kvTable).Where(entsql.EQ("name", key)).Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}
