package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"pokerly/internal/constants"
	"pokerly/internal/domain"

	"github.com/rs/zerolog"
)

type VenueStatsService struct {
	sessions SessionSource
	venues   VenueDirectory
	logger   zerolog.Logger
}

func NewVenueStatsService(sessions SessionSource, venues VenueDirectory, logger zerolog.Logger) *VenueStatsService {
	return &VenueStatsService{sessions: sessions, venues: venues, logger: logger}
}

type VenueStats struct {
	Summary VenueSummary `json:"summary"`
	Venues  []VenueStat  `json:"venues"`
	Top     TopVenues    `json:"topVenues"`
}

type VenueSummary struct {
	TotalSessions int64   `json:"totalSessions"`
	TotalBuyIn    int64   `json:"totalBuyIn"`
	TotalPrize    int64   `json:"totalPrize"`
	TotalProfit   int64   `json:"totalProfit"`
	ROI           float64 `json:"roi"`
	TotalVenues   int64   `json:"totalVenues"`
}

// VenueStat reports the average tournament field size only over sessions
// that recorded one; EntrySampleCount says how many did, so a consumer can
// judge how much the average is worth. AvgEntry stays nil on an empty
// sample.
type VenueStat struct {
	VenueID          string  `json:"venueId"`
	VenueName        string  `json:"venueName"`
	Sessions         int64   `json:"sessions"`
	TotalBuyIn       int64   `json:"totalBuyIn"`
	TotalPrize       int64   `json:"totalPrize"`
	TotalProfit      int64   `json:"totalProfit"`
	ROI              float64 `json:"roi"`
	ItmCount         int64   `json:"itmCount"`
	ItmRatio         float64 `json:"itmRatio"`
	AvgEntry         *int64  `json:"avgEntry"`
	EntrySampleCount int64   `json:"entrySampleCount"`
}

type TopVenues struct {
	BestByProfit  *VenueRank `json:"bestByProfit"`
	WorstByProfit *VenueRank `json:"worstByProfit"`
	BestByROI     *VenueRank `json:"bestByRoi"`
}

type VenueRank struct {
	VenueID     string  `json:"venueId"`
	VenueName   string  `json:"venueName"`
	TotalProfit int64   `json:"totalProfit"`
	ROI         float64 `json:"roi"`
}

// Venues aggregates per-venue performance over venue-type sessions only.
// Sessions without a venue reference are excluded entirely, not
// zero-weighted.
func (s *VenueStatsService) Venues(ctx context.Context, userID string) (*VenueStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	sessions, err := s.sessions.ListVenueSessions(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list venue sessions")
		return nil, fmt.Errorf("failed to list venue sessions: %w", err)
	}

	if len(sessions) == 0 {
		return &VenueStats{Venues: []VenueStat{}}, nil
	}

	venueNames, err := s.venues.NamesByIDs(ctx, distinctVenueIDs(sessions))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to resolve venue names")
		return nil, fmt.Errorf("failed to resolve venue names: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Int("session_count", len(sessions)).
		Msg("building venue statistics")

	stats := buildVenueStats(sessions, venueNames)

	return &VenueStats{
		Summary: buildVenueSummary(stats),
		Venues:  stats,
		Top:     buildTopVenues(stats),
	}, nil
}

func buildVenueStats(sessions []domain.Session, venueNames map[string]string) []VenueStat {
	byVenue := map[string][]domain.Session{}
	for _, session := range sessions {
		if session.VenueID == nil {
			continue
		}
		byVenue[*session.VenueID] = append(byVenue[*session.VenueID], session)
	}

	stats := make([]VenueStat, 0, len(byVenue))
	for venueID, venueSessions := range byVenue {
		stats = append(stats, buildVenueStat(venueID, venueSessions, venueNames))
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalProfit != stats[j].TotalProfit {
			return stats[i].TotalProfit > stats[j].TotalProfit
		}
		return stats[i].VenueID < stats[j].VenueID
	})
	return stats
}

func buildVenueStat(venueID string, sessions []domain.Session, venueNames map[string]string) VenueStat {
	var buyIn, prize, profit, itm int64
	var entrySum, entryCount int64
	for _, session := range sessions {
		buyIn += domain.OrZero(session.TotalBuyIn)
		prize += domain.OrZero(session.Prize)
		profit += domain.OrZero(session.NetProfit)
		if isITM(session) {
			itm++
		}
		if entries := domain.OrZero(session.FieldEntries); entries > 0 {
			entrySum += entries
			entryCount++
		}
	}

	var avgEntry *int64
	if entryCount > 0 {
		rounded := int64(math.Round(float64(entrySum) / float64(entryCount)))
		avgEntry = &rounded
	}

	count := int64(len(sessions))
	return VenueStat{
		VenueID:          venueID,
		VenueName:        venueLabel(&venueID, venueNames),
		Sessions:         count,
		TotalBuyIn:       buyIn,
		TotalPrize:       prize,
		TotalProfit:      profit,
		ROI:              roiPercent(profit, buyIn),
		ItmCount:         itm,
		ItmRatio:         ratioOf(itm, count),
		AvgEntry:         avgEntry,
		EntrySampleCount: entryCount,
	}
}

func buildVenueSummary(stats []VenueStat) VenueSummary {
	var sessions, buyIn, prize, profit int64
	for _, stat := range stats {
		sessions += stat.Sessions
		buyIn += stat.TotalBuyIn
		prize += stat.TotalPrize
		profit += stat.TotalProfit
	}

	return VenueSummary{
		TotalSessions: sessions,
		TotalBuyIn:    buyIn,
		TotalPrize:    prize,
		TotalProfit:   profit,
		ROI:           roiPercent(profit, buyIn),
		TotalVenues:   int64(len(stats)),
	}
}

func buildTopVenues(stats []VenueStat) TopVenues {
	var best, worst, bestROI *VenueStat
	for i := range stats {
		stat := &stats[i]
		if best == nil || stat.TotalProfit > best.TotalProfit {
			best = stat
		}
		if worst == nil || stat.TotalProfit < worst.TotalProfit {
			worst = stat
		}
		// a venue with no buy-in has no meaningful ROI
		if stat.TotalBuyIn > 0 && (bestROI == nil || stat.ROI > bestROI.ROI) {
			bestROI = stat
		}
	}

	return TopVenues{
		BestByProfit:  toVenueRank(best),
		WorstByProfit: toVenueRank(worst),
		BestByROI:     toVenueRank(bestROI),
	}
}

func toVenueRank(stat *VenueStat) *VenueRank {
	if stat == nil {
		return nil
	}
	return &VenueRank{
		VenueID:     stat.VenueID,
		VenueName:   stat.VenueName,
		TotalProfit: stat.TotalProfit,
		ROI:         stat.ROI,
	}
}
