package service

import (
	"context"
	"time"

	"pokerly/internal/domain"
)

// The aggregators read their inputs through these contracts and never write
// through them. The sqlite repositories satisfy all three.

type SessionSource interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Session, error)
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Session, error)
	ListVenueSessions(ctx context.Context, userID string) ([]domain.Session, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.Session, error)
}

type JournalSource interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Journal, error)
}

type VenueDirectory interface {
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
	ListWithPoints(ctx context.Context, userID string) ([]domain.Venue, error)
}
