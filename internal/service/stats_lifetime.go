package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"pokerly/internal/constants"
	"pokerly/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type SessionStatsService struct {
	sessions SessionSource
	journals JournalSource
	venues   VenueDirectory
	logger   zerolog.Logger
}

func NewSessionStatsService(sessions SessionSource, journals JournalSource, venues VenueDirectory, logger zerolog.Logger) *SessionStatsService {
	return &SessionStatsService{sessions: sessions, journals: journals, venues: venues, logger: logger}
}

type SessionStats struct {
	Summary            Summary            `json:"summary"`
	ByType             []TypeStat         `json:"byType"`
	ItmPattern         ItmPattern         `json:"itmPattern"`
	ProfitDistribution ProfitDistribution `json:"profitDistribution"`
	ConditionAnalysis  ConditionAnalysis  `json:"conditionAnalysis"`
	TopSessions        []SimpleSession    `json:"topSessions"`
	WorstSessions      []SimpleSession    `json:"worstSessions"`
}

type Summary struct {
	TotalSessions int64   `json:"totalSessions"`
	TotalBuyIn    int64   `json:"totalBuyIn"`
	TotalPrize    int64   `json:"totalPrize"`
	TotalProfit   int64   `json:"totalProfit"`
	ROI           float64 `json:"roi"`
	ItmCount      int64   `json:"itmCount"`
	ItmRatio      float64 `json:"itmRatio"`
}

type TypeStat struct {
	Type          string  `json:"type"`
	Sessions      int64   `json:"sessions"`
	TotalBuyIn    int64   `json:"totalBuyIn"`
	TotalProfit   int64   `json:"totalProfit"`
	ROI           float64 `json:"roi"`
	ItmCount      int64   `json:"itmCount"`
	ItmRatio      float64 `json:"itmRatio"`
}

type ItmPattern struct {
	MaxConsecutiveItm  int64 `json:"maxConsecutiveItm"`
	MaxConsecutiveLose int64 `json:"maxConsecutiveLose"`
}

// ProfitDistribution exposes the raw per-session profits so clients can
// build their own histograms. StdDev is the population deviation.
type ProfitDistribution struct {
	Profits []int64 `json:"profits"`
	StdDev  float64 `json:"stddev"`
	MaxUp   int64   `json:"maxUp"`
	MaxDown int64   `json:"maxDown"`
}

type ConditionAnalysis struct {
	ByMood   []ConditionEntry `json:"byMood"`
	ByFocus  []ConditionEntry `json:"byFocus"`
	ByEnergy []ConditionEntry `json:"byEnergy"`
}

type ConditionEntry struct {
	Score     int64   `json:"score"`
	Count     int64   `json:"count"`
	AvgProfit int64   `json:"avgProfit"`
	AvgROI    float64 `json:"avgRoi"`
}

type SimpleSession struct {
	ID          string  `json:"id"`
	PlayDate    string  `json:"playDate"`
	TotalBuyIn  int64   `json:"totalBuyIn"`
	Prize       int64   `json:"prize"`
	NetProfit   int64   `json:"netProfit"`
	ROI         float64 `json:"roi"`
	VenueName   string  `json:"venueName"`
	SessionType string  `json:"sessionType"`
	IsCollab    bool    `json:"isCollab"`
	CollabLabel string  `json:"collabLabel"`
}

// Lifetime aggregates the user's entire session history. A user with no
// sessions gets the explicit all-empty snapshot, never nil.
func (s *SessionStatsService) Lifetime(ctx context.Context, userID string) (*SessionStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	var (
		sessions []domain.Session
		journals []domain.Journal
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.sessions.ListByUser(gCtx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		journals, err = s.journals.ListByUser(gCtx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch session history")
		return nil, fmt.Errorf("failed to fetch session history: %w", err)
	}

	if len(sessions) == 0 {
		return emptySessionStats(), nil
	}

	venueNames, err := s.venues.NamesByIDs(ctx, distinctVenueIDs(sessions))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to resolve venue names")
		return nil, fmt.Errorf("failed to resolve venue names: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).
		Int("session_count", len(sessions)).
		Int("journal_count", len(journals)).
		Msg("building lifetime statistics")

	return &SessionStats{
		Summary:            buildSummary(sessions),
		ByType:             buildTypeStats(sessions),
		ItmPattern:         buildItmPattern(sessions),
		ProfitDistribution: buildDistribution(sessions),
		ConditionAnalysis:  buildConditionAnalysis(journals, sessions),
		TopSessions:        rankSessions(sessions, venueNames, true),
		WorstSessions:      rankSessions(sessions, venueNames, false),
	}, nil
}

func emptySessionStats() *SessionStats {
	return &SessionStats{
		ByType: []TypeStat{},
		ProfitDistribution: ProfitDistribution{
			Profits: []int64{},
		},
		ConditionAnalysis: ConditionAnalysis{
			ByMood:   []ConditionEntry{},
			ByFocus:  []ConditionEntry{},
			ByEnergy: []ConditionEntry{},
		},
		TopSessions:   []SimpleSession{},
		WorstSessions: []SimpleSession{},
	}
}

func buildSummary(sessions []domain.Session) Summary {
	var totalBuyIn, totalPrize, totalProfit, itmCount int64
	for _, session := range sessions {
		totalBuyIn += domain.OrZero(session.TotalBuyIn)
		totalPrize += domain.OrZero(session.Prize)
		totalProfit += domain.OrZero(session.NetProfit)
		if isITM(session) {
			itmCount++
		}
	}

	totalSessions := int64(len(sessions))
	return Summary{
		TotalSessions: totalSessions,
		TotalBuyIn:    totalBuyIn,
		TotalPrize:    totalPrize,
		TotalProfit:   totalProfit,
		ROI:           roiPercent(totalProfit, totalBuyIn),
		ItmCount:      itmCount,
		ItmRatio:      ratioOf(itmCount, totalSessions),
	}
}

// buildTypeStats groups by session type and emits the buckets in the fixed
// type order, skipping types with no sessions. A blank or unrecognized type
// landed in the UNKNOWN bucket on read, so no session is ever dropped.
func buildTypeStats(sessions []domain.Session) []TypeStat {
	buckets := map[domain.SessionType][]domain.Session{}
	for _, session := range sessions {
		buckets[session.SessionType] = append(buckets[session.SessionType], session)
	}

	stats := []TypeStat{}
	for _, sessionType := range domain.SessionTypes {
		bucket, ok := buckets[sessionType]
		if !ok {
			continue
		}

		var buyIn, profit, itm int64
		for _, session := range bucket {
			buyIn += domain.OrZero(session.TotalBuyIn)
			profit += domain.OrZero(session.NetProfit)
			if isITM(session) {
				itm++
			}
		}

		count := int64(len(bucket))
		stats = append(stats, TypeStat{
			Type:        string(sessionType),
			Sessions:    count,
			TotalBuyIn:  buyIn,
			TotalProfit: profit,
			ROI:         roiPercent(profit, buyIn),
			ItmCount:    itm,
			ItmRatio:    ratioOf(itm, count),
		})
	}
	return stats
}

// buildItmPattern scans the chronologically ordered history once,
// maintaining both streak counters; each resets when the opposite outcome
// occurs.
func buildItmPattern(sessions []domain.Session) ItmPattern {
	var maxItm, maxLose, curItm, curLose int64

	for _, session := range sortChronological(sessions) {
		if isITM(session) {
			curItm++
			if curItm > maxItm {
				maxItm = curItm
			}
			curLose = 0
		} else {
			curLose++
			if curLose > maxLose {
				maxLose = curLose
			}
			curItm = 0
		}
	}

	return ItmPattern{MaxConsecutiveItm: maxItm, MaxConsecutiveLose: maxLose}
}

func buildDistribution(sessions []domain.Session) ProfitDistribution {
	profits := make([]int64, len(sessions))
	for i, session := range sessions {
		profits[i] = domain.OrZero(session.NetProfit)
	}

	maxUp, maxDown := profits[0], profits[0]
	var sum float64
	for _, p := range profits {
		if p > maxUp {
			maxUp = p
		}
		if p < maxDown {
			maxDown = p
		}
		sum += float64(p)
	}

	mean := sum / float64(len(profits))
	var squares float64
	for _, p := range profits {
		d := float64(p) - mean
		squares += d * d
	}
	// population variance: divide by n, not n-1
	variance := squares / float64(len(profits))

	return ProfitDistribution{
		Profits: profits,
		StdDev:  math.Sqrt(variance),
		MaxUp:   maxUp,
		MaxDown: maxDown,
	}
}

// buildConditionAnalysis joins journal scores to same-day financial
// outcomes. Per-date profit and buy-in are pre-summed once, then each score
// dimension is grouped independently. Journal days with no sessions count
// as zero-profit days rather than being excluded.
func buildConditionAnalysis(journals []domain.Journal, sessions []domain.Session) ConditionAnalysis {
	if len(journals) == 0 {
		return ConditionAnalysis{
			ByMood:   []ConditionEntry{},
			ByFocus:  []ConditionEntry{},
			ByEnergy: []ConditionEntry{},
		}
	}

	profitByDate := map[string]int64{}
	buyInByDate := map[string]int64{}
	for _, session := range sessions {
		if session.PlayDate == nil {
			continue
		}
		key := session.PlayDate.Format(dateLayout)
		profitByDate[key] += domain.OrZero(session.NetProfit)
		buyInByDate[key] += domain.OrZero(session.TotalBuyIn)
	}

	return ConditionAnalysis{
		ByMood:   aggregateScore(journals, profitByDate, buyInByDate, func(j domain.Journal) *int64 { return j.MoodScore }),
		ByFocus:  aggregateScore(journals, profitByDate, buyInByDate, func(j domain.Journal) *int64 { return j.FocusScore }),
		ByEnergy: aggregateScore(journals, profitByDate, buyInByDate, func(j domain.Journal) *int64 { return j.EnergyScore }),
	}
}

type conditionAccumulator struct {
	count     int64
	sumProfit int64
	sumBuyIn  int64
}

func aggregateScore(journals []domain.Journal, profitByDate, buyInByDate map[string]int64, score func(domain.Journal) *int64) []ConditionEntry {
	acc := map[int64]*conditionAccumulator{}
	for _, journal := range journals {
		v := score(journal)
		if v == nil {
			// absent in this dimension only
			continue
		}

		key := journal.JournalDate.Format(dateLayout)
		bucket, ok := acc[*v]
		if !ok {
			bucket = &conditionAccumulator{}
			acc[*v] = bucket
		}
		bucket.count++
		bucket.sumProfit += profitByDate[key]
		bucket.sumBuyIn += buyInByDate[key]
	}

	scores := make([]int64, 0, len(acc))
	for s := range acc {
		scores = append(scores, s)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i] < scores[j] })

	entries := make([]ConditionEntry, 0, len(scores))
	for _, s := range scores {
		bucket := acc[s]
		entries = append(entries, ConditionEntry{
			Score:     s,
			Count:     bucket.count,
			AvgProfit: bucket.sumProfit / bucket.count,
			AvgROI:    roiPercent(bucket.sumProfit, bucket.sumBuyIn),
		})
	}
	return entries
}

// rankSessions renders the best (or worst) sessions by net profit. An
// absent profit sorts below every recorded one; ties break by session id.
func rankSessions(sessions []domain.Session, venueNames map[string]string, best bool) []SimpleSession {
	ranked := make([]domain.Session, len(sessions))
	copy(ranked, sessions)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := profitSortKey(ranked[i]), profitSortKey(ranked[j])
		if a != b {
			if best {
				return a > b
			}
			return a < b
		}
		return ranked[i].ID < ranked[j].ID
	})

	limit := constants.TopSessionLimit
	if limit > len(ranked) {
		limit = len(ranked)
	}

	cards := make([]SimpleSession, 0, limit)
	for _, session := range ranked[:limit] {
		cards = append(cards, simpleSession(session, venueNames))
	}
	return cards
}

func simpleSession(session domain.Session, venueNames map[string]string) SimpleSession {
	buyIn := domain.OrZero(session.TotalBuyIn)
	profit := domain.OrZero(session.NetProfit)

	label := ""
	if session.CollabLabel != nil {
		label = *session.CollabLabel
	}

	return SimpleSession{
		ID:          session.ID,
		PlayDate:    playDateLabel(session.PlayDate),
		TotalBuyIn:  buyIn,
		Prize:       domain.OrZero(session.Prize),
		NetProfit:   profit,
		ROI:         roiPercent(profit, buyIn),
		VenueName:   venueLabel(session.VenueID, venueNames),
		SessionType: string(session.SessionType),
		IsCollab:    session.IsCollab,
		CollabLabel: label,
	}
}
