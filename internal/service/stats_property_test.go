package service

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
	"time"

	"pokerly/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
)

// sessionSeed is the raw material for a generated session. Day lands inside
// January 2026 so every seed falls into one known month.
type sessionSeed struct {
	Day     int
	BuyIn   int64
	Prize   int64
	Entries int64
}

func seedGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(sessionSeed{}), map[string]gopter.Gen{
		"Day":     gen.IntRange(1, 28),
		"BuyIn":   gen.Int64Range(0, 100000),
		"Prize":   gen.Int64Range(0, 500000),
		"Entries": gen.Int64Range(0, 5000),
	})
}

func seedSliceGen(maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, seedGen())
}

func sessionsFromSeeds(seeds []sessionSeed) []domain.Session {
	sessions := make([]domain.Session, 0, len(seeds))
	for i, seed := range seeds {
		s := session(fmt.Sprintf("s%03d", i), day(2026, time.January, seed.Day), seed.BuyIn, seed.Prize)
		if seed.Entries > 0 {
			s.FieldEntries = i64(seed.Entries)
		}
		sessions = append(sessions, s)
	}
	return sessions
}

// TestProperty_LifetimeSummaryBalances tests that profit, prize and buy-in
// totals stay consistent and the ITM counters stay within the session count.
func TestProperty_LifetimeSummaryBalances(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Summary totals balance and ratios stay bounded", prop.ForAll(
		func(seeds []sessionSeed) bool {
			sessions := sessionsFromSeeds(seeds)
			svc := NewSessionStatsService(&stubSessions{sessions: sessions}, &stubJournals{}, &stubVenues{}, zerolog.Nop())

			stats, err := svc.Lifetime(context.Background(), "u1")
			if err != nil {
				return false
			}

			sum := stats.Summary
			if sum.TotalProfit != sum.TotalPrize-sum.TotalBuyIn {
				return false
			}
			if sum.ItmCount > sum.TotalSessions {
				return false
			}
			if sum.ItmRatio < 0 || sum.ItmRatio > 1 {
				return false
			}
			if sum.TotalBuyIn == 0 && sum.ROI != 0.0 {
				return false
			}
			return sum.TotalSessions == int64(len(sessions))
		},
		seedSliceGen(40),
	))

	properties.TestingRun(t)
}

// TestProperty_LifetimeItmStreaksDisjoint tests that the best in-the-money
// streak and the best losing streak cover disjoint sessions, so their sum
// never exceeds the session count.
func TestProperty_LifetimeItmStreaksDisjoint(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("ITM and losing streaks fit inside the session count", prop.ForAll(
		func(seeds []sessionSeed) bool {
			sessions := sessionsFromSeeds(seeds)
			svc := NewSessionStatsService(&stubSessions{sessions: sessions}, &stubJournals{}, &stubVenues{}, zerolog.Nop())

			stats, err := svc.Lifetime(context.Background(), "u1")
			if err != nil {
				return false
			}

			pattern := stats.ItmPattern
			total := stats.Summary.TotalSessions
			if pattern.MaxConsecutiveItm < 0 || pattern.MaxConsecutiveLose < 0 {
				return false
			}
			return pattern.MaxConsecutiveItm+pattern.MaxConsecutiveLose <= total
		},
		seedSliceGen(40),
	))

	properties.TestingRun(t)
}

// TestProperty_LifetimeByTypePartitions tests that the per-type buckets
// partition the session population.
func TestProperty_LifetimeByTypePartitions(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Type buckets partition sessions and profit", prop.ForAll(
		func(seeds []sessionSeed, typePicks []int) bool {
			sessions := sessionsFromSeeds(seeds)
			for i := range sessions {
				if i < len(typePicks) {
					sessions[i].SessionType = domain.SessionTypes[typePicks[i]%len(domain.SessionTypes)]
				}
			}
			svc := NewSessionStatsService(&stubSessions{sessions: sessions}, &stubJournals{}, &stubVenues{}, zerolog.Nop())

			stats, err := svc.Lifetime(context.Background(), "u1")
			if err != nil {
				return false
			}

			var bucketSessions, bucketProfit int64
			for _, bucket := range stats.ByType {
				if bucket.Sessions <= 0 {
					return false
				}
				bucketSessions += bucket.Sessions
				bucketProfit += bucket.TotalProfit
			}
			return bucketSessions == stats.Summary.TotalSessions &&
				bucketProfit == stats.Summary.TotalProfit
		},
		seedSliceGen(40),
		gen.SliceOfN(40, gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}

// TestProperty_LifetimeDeterministicOutput tests that two runs over the same
// history serialize to identical bytes regardless of map iteration order.
func TestProperty_LifetimeDeterministicOutput(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Repeated aggregation is byte-identical", prop.ForAll(
		func(seeds []sessionSeed) bool {
			sessions := sessionsFromSeeds(seeds)
			svc := NewSessionStatsService(&stubSessions{sessions: sessions}, &stubJournals{}, &stubVenues{}, zerolog.Nop())

			first, err := svc.Lifetime(context.Background(), "u1")
			if err != nil {
				return false
			}
			second, err := svc.Lifetime(context.Background(), "u1")
			if err != nil {
				return false
			}

			firstJSON, err := json.Marshal(first)
			if err != nil {
				return false
			}
			secondJSON, err := json.Marshal(second)
			if err != nil {
				return false
			}
			return string(firstJSON) == string(secondJSON)
		},
		seedSliceGen(30),
	))

	properties.TestingRun(t)
}

// TestProperty_MonthlyDailyItemsSumToSummary tests that the sparse daily view
// adds back up to the monthly totals.
func TestProperty_MonthlyDailyItemsSumToSummary(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Daily groups sum to the monthly summary", prop.ForAll(
		func(seeds []sessionSeed) bool {
			sessions := sessionsFromSeeds(seeds)
			svc := NewMonthlyStatsService(&stubSessions{sessions: sessions}, zerolog.Nop())

			stats, err := svc.Monthly(context.Background(), "u1", 2026, 1)
			if err != nil {
				return false
			}

			var sessionCount, profit, buyIn int64
			lastDate := ""
			for _, item := range stats.Daily {
				if item.Date <= lastDate {
					return false
				}
				lastDate = item.Date
				sessionCount += item.Sessions
				profit += item.TotalProfit
				buyIn += item.TotalBuyIn
			}
			return sessionCount == stats.Summary.TotalSessions &&
				profit == stats.Summary.TotalProfit &&
				buyIn == stats.Summary.TotalBuyIn
		},
		seedSliceGen(40),
	))

	properties.TestingRun(t)
}

// TestProperty_VenueStatsConsistent tests per-venue aggregates against the
// roll-up summary.
func TestProperty_VenueStatsConsistent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Venue rows sum to the venue summary", prop.ForAll(
		func(seeds []sessionSeed, venuePicks []int) bool {
			sessions := sessionsFromSeeds(seeds)
			for i := range sessions {
				if i < len(venuePicks) {
					sessions[i].VenueID = strp(fmt.Sprintf("v%d", venuePicks[i]%5))
				}
			}
			svc := NewVenueStatsService(&stubSessions{sessions: sessions}, &stubVenues{}, zerolog.Nop())

			stats, err := svc.Venues(context.Background(), "u1")
			if err != nil {
				return false
			}

			var rowSessions, rowProfit, rowBuyIn int64
			lastProfit := int64(0)
			for i, row := range stats.Venues {
				if row.ItmCount > row.Sessions {
					return false
				}
				if row.AvgEntry == nil && row.EntrySampleCount != 0 {
					return false
				}
				if i > 0 && row.TotalProfit > lastProfit {
					return false
				}
				lastProfit = row.TotalProfit
				rowSessions += row.Sessions
				rowProfit += row.TotalProfit
				rowBuyIn += row.TotalBuyIn
			}
			return rowSessions == stats.Summary.TotalSessions &&
				rowProfit == stats.Summary.TotalProfit &&
				rowBuyIn == stats.Summary.TotalBuyIn
		},
		seedSliceGen(40),
		gen.SliceOfN(40, gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
