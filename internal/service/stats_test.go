package service

import (
	"context"
	"time"

	"pokerly/internal/domain"
)

// in-memory stand-ins for the data sources

type stubSessions struct {
	sessions []domain.Session
	err      error
}

func (s *stubSessions) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	return s.sessions, s.err
}

func (s *stubSessions) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	matched := []domain.Session{}
	for _, session := range s.sessions {
		if session.PlayDate == nil {
			continue
		}
		if session.PlayDate.Before(from) || session.PlayDate.After(to) {
			continue
		}
		matched = append(matched, session)
	}
	return matched, nil
}

func (s *stubSessions) ListVenueSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	matched := []domain.Session{}
	for _, session := range s.sessions {
		if session.VenueID != nil {
			matched = append(matched, session)
		}
	}
	return matched, nil
}

func (s *stubSessions) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	// newest dated sessions first, undated ones at the back, like the
	// play_date DESC ordering the store uses
	sorted := sortChronological(s.sessions)
	recent := []domain.Session{}
	for i := len(sorted) - 1; i >= 0 && len(recent) < limit; i-- {
		if sorted[i].PlayDate == nil {
			continue
		}
		recent = append(recent, sorted[i])
	}
	for i := len(sorted) - 1; i >= 0 && len(recent) < limit; i-- {
		if sorted[i].PlayDate == nil {
			recent = append(recent, sorted[i])
		}
	}
	return recent, nil
}

type stubJournals struct {
	journals []domain.Journal
	err      error
}

func (s *stubJournals) ListByUser(ctx context.Context, userID string) ([]domain.Journal, error) {
	return s.journals, s.err
}

type stubVenues struct {
	names       map[string]string
	pointVenues []domain.Venue
	err         error
}

func (s *stubVenues) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	names := map[string]string{}
	for _, id := range ids {
		if name, ok := s.names[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

func (s *stubVenues) ListWithPoints(ctx context.Context, userID string) ([]domain.Venue, error) {
	return s.pointVenues, s.err
}

// builders

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func i64(v int64) *int64 { return &v }

func strp(v string) *string { return &v }

// session builds a row with net profit derived from prize and buy-in, the
// way the write path records it.
func session(id string, playDate *time.Time, buyIn, prize int64) domain.Session {
	profit := prize - buyIn
	return domain.Session{
		ID:          id,
		UserID:      "u1",
		PlayDate:    playDate,
		SessionType: domain.SessionTypeVenue,
		TotalBuyIn:  &buyIn,
		Prize:       &prize,
		NetProfit:   &profit,
	}
}
