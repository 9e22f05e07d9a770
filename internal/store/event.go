package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const requestsTable = "api_requests"

// eventRepo implements EventRepo on the api_requests table.
type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendAPIRequest(ctx context.Context, data APIRequestEventData) error {
	query, args := builder().Insert(requestsTable).
		Columns("request_id", "method", "path", "status", "latency_ms", "success", "error_message", "created_at").
		Values(data.RequestID, data.Method, data.Path, data.Status, data.LatencyMs, data.Success, data.ErrorMessage, time.Now().UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append api request: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentRequests(ctx context.Context, limit int) ([]APIRequestEvent, error) {
	b := builder()
	sel := b.Select("id", "request_id", "method", "path", "status", "latency_ms", "success", "error_message", "created_at").
		From(b.Table(requestsTable)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query api requests: %w", err)
	}
	defer rows.Close()

	var events []APIRequestEvent
	for rows.Next() {
		var (
			e       APIRequestEvent
			created int64
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Method, &e.Path, &e.Status, &e.LatencyMs, &e.Success, &e.ErrorMessage, &created); err != nil {
			return nil, fmt.Errorf("scan api request: %w", err)
		}
		e.Timestamp = time.UnixMilli(created)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepo) PruneRequests(ctx context.Context, keep int) error {
	// Find the ID threshold: the newest event that falls outside the window.
	b := builder()
	query, args := b.Select("id").
		From(b.Table(requestsTable)).
		OrderBy(entsql.Desc("id")).
		Offset(keep).
		Limit(1).
		Query()

	var threshold int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if err == sql.ErrNoRows {
		return nil // fewer than keep events exist
	}
	if err != nil {
		return fmt.Errorf("query prune threshold: %w", err)
	}

	query, args = builder().Delete(requestsTable).Where(entsql.LTE("id", threshold)).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune api requests: %w", err)
	}
	return nil
}
