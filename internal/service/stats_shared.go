package service

import (
	"math"
	"sort"
	"time"

	"pokerly/internal/constants"
	"pokerly/internal/domain"
)

const dateLayout = "2006-01-02"

// roiPercent is profit over buy-in as a percentage, 0.0 when the buy-in is
// zero. Never divides by zero.
func roiPercent(profit, buyIn int64) float64 {
	if buyIn <= 0 {
		return 0.0
	}
	return float64(profit) * 100.0 / float64(buyIn)
}

func ratioOf(part, whole int64) float64 {
	if whole <= 0 {
		return 0.0
	}
	return float64(part) / float64(whole)
}

// A session is in the money when it paid anything at all.
func isITM(s domain.Session) bool {
	return domain.OrZero(s.Prize) > 0
}

// sortChronological returns a copy ordered by play date ascending with the
// session id as tie-break. Sessions without a play date sort last.
func sortChronological(sessions []domain.Session) []domain.Session {
	sorted := make([]domain.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.PlayDate == nil && b.PlayDate == nil:
			return a.ID < b.ID
		case a.PlayDate == nil:
			return false
		case b.PlayDate == nil:
			return true
		case !a.PlayDate.Equal(*b.PlayDate):
			return a.PlayDate.Before(*b.PlayDate)
		default:
			return a.ID < b.ID
		}
	})
	return sorted
}

// profitSortKey orders sessions by net profit with an absent profit below
// every recorded one.
func profitSortKey(s domain.Session) int64 {
	if s.NetProfit == nil {
		return math.MinInt64
	}
	return *s.NetProfit
}

// distinctVenueIDs collects the non-nil venue ids of a session slice,
// deduplicated and sorted, ready for one batched name lookup.
func distinctVenueIDs(sessions []domain.Session) []string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, s := range sessions {
		if s.VenueID == nil {
			continue
		}
		if _, ok := seen[*s.VenueID]; ok {
			continue
		}
		seen[*s.VenueID] = struct{}{}
		ids = append(ids, *s.VenueID)
	}
	sort.Strings(ids)
	return ids
}

func venueLabel(venueID *string, names map[string]string) string {
	if venueID == nil {
		return constants.VenueLabelNone
	}
	if name, ok := names[*venueID]; ok {
		return name
	}
	return constants.VenueLabelUnknown
}

func playDateLabel(t *time.Time) string {
	if t == nil {
		return constants.DateLabelUnknown
	}
	return t.Format(dateLayout)
}
