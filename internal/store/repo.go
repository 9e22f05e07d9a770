package store

import (
	"context"
	"time"
)

// APIRequestEventData captures one REST call made by the client.
type APIRequestEventData struct {
	RequestID    string
	Method       string
	Path         string
	Status       int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// APIRequestEvent is a persisted APIRequestEventData.
type APIRequestEvent struct {
	ID        int64
	Timestamp time.Time
	APIRequestEventData
}

// EventRepo provides append and query access to the request log.
type EventRepo interface {
	// AppendAPIRequest records a REST call.
	AppendAPIRequest(ctx context.Context, data APIRequestEventData) error

	// RecentRequests returns up to limit events, newest first.
	RecentRequests(ctx context.Context, limit int) ([]APIRequestEvent, error)

	// PruneRequests deletes all but the keep most recent events.
	PruneRequests(ctx context.Context, keep int) error
}
