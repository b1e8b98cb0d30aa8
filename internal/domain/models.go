package domain

import (
	"time"
)

// SessionType is the closed set of session categories. Blank or
// unrecognized stored values normalize to SessionTypeUnknown so every
// session always lands in exactly one bucket.
type SessionType string

const (
	SessionTypeVenue   SessionType = "VENUE"
	SessionTypeMajor   SessionType = "MAJOR"
	SessionTypeOnline  SessionType = "ONLINE"
	SessionTypeOther   SessionType = "OTHER"
	SessionTypeUnknown SessionType = "UNKNOWN"
)

// SessionTypes lists every type in the fixed order aggregations emit them.
var SessionTypes = []SessionType{
	SessionTypeVenue,
	SessionTypeMajor,
	SessionTypeOnline,
	SessionTypeOther,
	SessionTypeUnknown,
}

func NormalizeSessionType(s string) SessionType {
	switch SessionType(s) {
	case SessionTypeVenue, SessionTypeMajor, SessionTypeOnline, SessionTypeOther:
		return SessionType(s)
	default:
		return SessionTypeUnknown
	}
}

type Session struct {
	ID           string
	UserID       string
	VenueID      *string    // nil for non-venue sessions
	PlayDate     *time.Time // nil on legacy rows
	Title        string
	SessionType  SessionType
	TotalBuyIn   *int64 // already net of discounts
	Prize        *int64 // zero means no payout
	NetProfit    *int64 // prize - totalBuyIn, precomputed upstream
	FieldEntries *int64 // tournament field size, when recorded
	IsCollab     bool
	CollabLabel  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Journal struct {
	ID          string
	UserID      string
	JournalDate time.Time
	Title       string
	Content     string
	MoodScore   *int64
	FocusScore  *int64
	TiltScore   *int64
	EnergyScore *int64
	Tags        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Venue struct {
	ID           string
	UserID       string
	Name         string
	Location     string
	Notes        string
	VenueType    string
	PointBalance int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrZero reads an optional numeric field, treating absent as zero. Every
// aggregation goes through this helper so null handling cannot diverge.
func OrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
