package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pokerly/internal/constants"
	"pokerly/internal/domain"

	"github.com/rs/zerolog"
)

type MonthlyStatsService struct {
	sessions SessionSource
	logger   zerolog.Logger
}

func NewMonthlyStatsService(sessions SessionSource, logger zerolog.Logger) *MonthlyStatsService {
	return &MonthlyStatsService{sessions: sessions, logger: logger}
}

type MonthlyStats struct {
	Year       int               `json:"year"`
	Month      int               `json:"month"`
	Summary    MonthlySummary    `json:"summary"`
	Daily      []DailyItem       `json:"daily"`
	Highlights MonthlyHighlights `json:"highlights"`
}

type MonthlySummary struct {
	TotalSessions int64   `json:"totalSessions"`
	TotalBuyIn    int64   `json:"totalBuyIn"`
	TotalPrize    int64   `json:"totalPrize"`
	TotalProfit   int64   `json:"totalProfit"`
	ROI           float64 `json:"roi"`
	ItmCount      int64   `json:"itmCount"`
	ItmRatio      float64 `json:"itmRatio"`
	AvgBuyIn      float64 `json:"avgBuyIn"`
	AvgPrize      float64 `json:"avgPrize"`
}

// DailyItem carries one populated date. Dates without sessions are not
// emitted, so the daily list is sparse rather than a fixed month grid.
type DailyItem struct {
	Date        string `json:"date"`
	Sessions    int64  `json:"sessions"`
	TotalBuyIn  int64  `json:"totalBuyIn"`
	TotalPrize  int64  `json:"totalPrize"`
	TotalProfit int64  `json:"totalProfit"`
}

// MonthlyHighlights fields stay nil for a month with no sessions. "No data"
// is distinct from "data summing to zero".
type MonthlyHighlights struct {
	BestProfit        *int64 `json:"bestProfit"`
	WorstProfit       *int64 `json:"worstProfit"`
	MaxConsecutiveItm *int64 `json:"maxConsecutiveItm"`
}

// Monthly aggregates one calendar month, first day through last day
// inclusive.
func (s *MonthlyStatsService) Monthly(ctx context.Context, userID string, year, month int) (*MonthlyStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month out of range: %d", month)
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	sessions, err := s.sessions.ListByUserBetween(ctx, userID, monthStart, monthEnd)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Int("year", year).Int("month", month).
			Msg("failed to list sessions for month")
		return nil, fmt.Errorf("failed to list sessions for month: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Int("year", year).Int("month", month).
		Int("session_count", len(sessions)).Msg("building monthly statistics")

	return &MonthlyStats{
		Year:       year,
		Month:      month,
		Summary:    buildMonthlySummary(sessions),
		Daily:      buildDailyItems(sessions),
		Highlights: buildHighlights(sessions),
	}, nil
}

func buildMonthlySummary(sessions []domain.Session) MonthlySummary {
	var totalBuyIn, totalPrize, totalProfit, itmCount, itmPrize int64
	for _, session := range sessions {
		totalBuyIn += domain.OrZero(session.TotalBuyIn)
		totalPrize += domain.OrZero(session.Prize)
		totalProfit += domain.OrZero(session.NetProfit)
		if isITM(session) {
			itmCount++
			itmPrize += domain.OrZero(session.Prize)
		}
	}

	totalSessions := int64(len(sessions))

	avgBuyIn := 0.0
	if totalSessions > 0 {
		avgBuyIn = float64(totalBuyIn) / float64(totalSessions)
	}
	// average payout over paying sessions only
	avgPrize := 0.0
	if itmCount > 0 {
		avgPrize = float64(itmPrize) / float64(itmCount)
	}

	return MonthlySummary{
		TotalSessions: totalSessions,
		TotalBuyIn:    totalBuyIn,
		TotalPrize:    totalPrize,
		TotalProfit:   totalProfit,
		ROI:           roiPercent(totalProfit, totalBuyIn),
		ItmCount:      itmCount,
		ItmRatio:      ratioOf(itmCount, totalSessions),
		AvgBuyIn:      avgBuyIn,
		AvgPrize:      avgPrize,
	}
}

func buildDailyItems(sessions []domain.Session) []DailyItem {
	byDate := map[string]*DailyItem{}
	for _, session := range sessions {
		if session.PlayDate == nil {
			continue
		}
		key := session.PlayDate.Format(dateLayout)
		item, ok := byDate[key]
		if !ok {
			item = &DailyItem{Date: key}
			byDate[key] = item
		}
		item.Sessions++
		item.TotalBuyIn += domain.OrZero(session.TotalBuyIn)
		item.TotalPrize += domain.OrZero(session.Prize)
		item.TotalProfit += domain.OrZero(session.NetProfit)
	}

	daily := make([]DailyItem, 0, len(byDate))
	for _, item := range byDate {
		daily = append(daily, *item)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })
	return daily
}

func buildHighlights(sessions []domain.Session) MonthlyHighlights {
	if len(sessions) == 0 {
		return MonthlyHighlights{}
	}

	best := domain.OrZero(sessions[0].NetProfit)
	worst := best
	for _, session := range sessions[1:] {
		profit := domain.OrZero(session.NetProfit)
		if profit > best {
			best = profit
		}
		if profit < worst {
			worst = profit
		}
	}

	streak := maxConsecutiveItm(sessions)
	return MonthlyHighlights{
		BestProfit:        &best,
		WorstProfit:       &worst,
		MaxConsecutiveItm: &streak,
	}
}

func maxConsecutiveItm(sessions []domain.Session) int64 {
	var maxStreak, current int64
	for _, session := range sortChronological(sessions) {
		if isITM(session) {
			current++
			if current > maxStreak {
				maxStreak = current
			}
		} else {
			current = 0
		}
	}
	return maxStreak
}
