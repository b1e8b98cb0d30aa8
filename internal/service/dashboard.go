package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pokerly/internal/constants"
	"pokerly/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	sessions SessionSource
	venues   VenueDirectory
	logger   zerolog.Logger
}

func NewDashboardService(sessions SessionSource, venues VenueDirectory, logger zerolog.Logger) *DashboardService {
	return &DashboardService{sessions: sessions, venues: venues, logger: logger}
}

type MonthlyDashboard struct {
	Year                 int                  `json:"year"`
	Month                int                  `json:"month"`
	Kpi                  KpiSection           `json:"kpi"`
	Summary              DashboardSummary     `json:"summary"`
	Trend                []TrendPoint         `json:"trend"`
	RecentSessions       []RecentSession      `json:"recentSessions"`
	TopProfitVenues      []DashboardVenueStat `json:"topProfitVenues"`
	TopVisitVenues       []DashboardVenueStat `json:"topVisitVenues"`
	RemainingPointVenues []PointVenue         `json:"remainingPointVenues"`
}

type KpiSection struct {
	TotalProfit int64   `json:"totalProfit"`
	TotalBuyIn  int64   `json:"totalBuyIn"`
	TotalPrize  int64   `json:"totalPrize"`
	ROI         float64 `json:"roi"`
}

type DashboardSummary struct {
	Sessions    int64 `json:"sessions"`
	TotalBuyIn  int64 `json:"totalBuyIn"`
	TotalPrize  int64 `json:"totalPrize"`
	TotalProfit int64 `json:"totalProfit"`
}

type TrendPoint struct {
	Year        int   `json:"year"`
	Month       int   `json:"month"`
	Sessions    int64 `json:"sessions"`
	TotalBuyIn  int64 `json:"totalBuyIn"`
	TotalPrize  int64 `json:"totalPrize"`
	TotalProfit int64 `json:"totalProfit"`
}

type RecentSession struct {
	ID        string `json:"id"`
	PlayDate  string `json:"playDate"`
	Title     string `json:"title"`
	VenueName string `json:"venueName"`
	NetProfit int64  `json:"netProfit"`
}

type DashboardVenueStat struct {
	VenueID      string `json:"venueId"`
	VenueName    string `json:"venueName"`
	SessionCount int64  `json:"sessionCount"`
	TotalProfit  int64  `json:"totalProfit"`
}

type PointVenue struct {
	VenueID      string `json:"venueId"`
	VenueName    string `json:"venueName"`
	PointBalance int64  `json:"pointBalance"`
}

// Monthly builds the dashboard for one month. The trend covers the fixed
// window of the six calendar months ending at the requested one, zero-filled
// for empty months; the sparse monthly daily view does the opposite on
// purpose.
func (s *DashboardService) Monthly(ctx context.Context, userID string, year, month int) (*MonthlyDashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month out of range: %d", month)
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	trendStart := monthStart.AddDate(0, -(constants.TrendMonths - 1), 0)

	var (
		monthSessions []domain.Session
		trendSessions []domain.Session
		recent        []domain.Session
		pointVenues   []domain.Venue
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthSessions, err = s.sessions.ListByUserBetween(gCtx, userID, monthStart, monthEnd)
		return err
	})
	g.Go(func() error {
		var err error
		trendSessions, err = s.sessions.ListByUserBetween(gCtx, userID, trendStart, monthEnd)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.sessions.ListRecent(gCtx, userID, constants.RecentSessionLimit)
		return err
	})
	g.Go(func() error {
		var err error
		pointVenues, err = s.venues.ListWithPoints(gCtx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch dashboard data")
		return nil, fmt.Errorf("failed to fetch dashboard data: %w", err)
	}

	// one batched name lookup covers the month's venues and the recent cards
	venueNames, err := s.venues.NamesByIDs(ctx, distinctVenueIDs(append(append([]domain.Session{}, monthSessions...), recent...)))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to resolve venue names")
		return nil, fmt.Errorf("failed to resolve venue names: %w", err)
	}

	var totalBuyIn, totalPrize, totalProfit int64
	for _, session := range monthSessions {
		totalBuyIn += domain.OrZero(session.TotalBuyIn)
		totalPrize += domain.OrZero(session.Prize)
		totalProfit += domain.OrZero(session.NetProfit)
	}

	venueStats := buildDashboardVenueStats(monthSessions, venueNames)

	return &MonthlyDashboard{
		Year:  year,
		Month: month,
		Kpi: KpiSection{
			TotalProfit: totalProfit,
			TotalBuyIn:  totalBuyIn,
			TotalPrize:  totalPrize,
			ROI:         roiPercent(totalProfit, totalBuyIn),
		},
		Summary: DashboardSummary{
			Sessions:    int64(len(monthSessions)),
			TotalBuyIn:  totalBuyIn,
			TotalPrize:  totalPrize,
			TotalProfit: totalProfit,
		},
		Trend:                buildTrend(trendSessions, monthStart),
		RecentSessions:       buildRecentSessions(recent, venueNames),
		TopProfitVenues:      topByProfit(venueStats),
		TopVisitVenues:       topByVisits(venueStats),
		RemainingPointVenues: buildPointVenues(pointVenues),
	}, nil
}

func buildTrend(sessions []domain.Session, monthStart time.Time) []TrendPoint {
	points := make([]TrendPoint, constants.TrendMonths)
	index := map[string]*TrendPoint{}
	for i := range points {
		m := monthStart.AddDate(0, i-(constants.TrendMonths-1), 0)
		points[i] = TrendPoint{Year: m.Year(), Month: int(m.Month())}
		index[m.Format("2006-01")] = &points[i]
	}

	for _, session := range sessions {
		if session.PlayDate == nil {
			continue
		}
		point, ok := index[session.PlayDate.Format("2006-01")]
		if !ok {
			continue
		}
		point.Sessions++
		point.TotalBuyIn += domain.OrZero(session.TotalBuyIn)
		point.TotalPrize += domain.OrZero(session.Prize)
		point.TotalProfit += domain.OrZero(session.NetProfit)
	}

	return points
}

func buildRecentSessions(sessions []domain.Session, venueNames map[string]string) []RecentSession {
	recent := make([]RecentSession, 0, len(sessions))
	for _, session := range sessions {
		recent = append(recent, RecentSession{
			ID:        session.ID,
			PlayDate:  playDateLabel(session.PlayDate),
			Title:     session.Title,
			VenueName: venueLabel(session.VenueID, venueNames),
			NetProfit: domain.OrZero(session.NetProfit),
		})
	}
	return recent
}

func buildDashboardVenueStats(sessions []domain.Session, venueNames map[string]string) []DashboardVenueStat {
	byVenue := map[string]*DashboardVenueStat{}
	for _, session := range sessions {
		if session.VenueID == nil {
			continue
		}
		stat, ok := byVenue[*session.VenueID]
		if !ok {
			stat = &DashboardVenueStat{
				VenueID:   *session.VenueID,
				VenueName: venueLabel(session.VenueID, venueNames),
			}
			byVenue[*session.VenueID] = stat
		}
		stat.SessionCount++
		stat.TotalProfit += domain.OrZero(session.NetProfit)
	}

	stats := make([]DashboardVenueStat, 0, len(byVenue))
	for _, stat := range byVenue {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalProfit != stats[j].TotalProfit {
			return stats[i].TotalProfit > stats[j].TotalProfit
		}
		return stats[i].VenueID < stats[j].VenueID
	})
	return stats
}

func topByProfit(stats []DashboardVenueStat) []DashboardVenueStat {
	limit := constants.TopVenueLimit
	if limit > len(stats) {
		limit = len(stats)
	}
	top := make([]DashboardVenueStat, limit)
	copy(top, stats[:limit])
	return top
}

func topByVisits(stats []DashboardVenueStat) []DashboardVenueStat {
	byVisits := make([]DashboardVenueStat, len(stats))
	copy(byVisits, stats)
	sort.Slice(byVisits, func(i, j int) bool {
		if byVisits[i].SessionCount != byVisits[j].SessionCount {
			return byVisits[i].SessionCount > byVisits[j].SessionCount
		}
		if byVisits[i].TotalProfit != byVisits[j].TotalProfit {
			return byVisits[i].TotalProfit > byVisits[j].TotalProfit
		}
		return byVisits[i].VenueID < byVisits[j].VenueID
	})

	limit := constants.TopVenueLimit
	if limit > len(byVisits) {
		limit = len(byVisits)
	}
	return byVisits[:limit]
}

func buildPointVenues(venues []domain.Venue) []PointVenue {
	points := make([]PointVenue, 0, len(venues))
	for _, venue := range venues {
		points = append(points, PointVenue{
			VenueID:      venue.ID,
			VenueName:    venue.Name,
			PointBalance: venue.PointBalance,
		})
	}
	return points
}
