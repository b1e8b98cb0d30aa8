package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	TopSessionLimit    = 3
	TopVenueLimit      = 3
	RecentSessionLimit = 3
	TrendMonths        = 6
)

// Labels rendered when a reference cannot be resolved. Kept in one place so
// every aggregator reports the same sentinel.
const (
	VenueLabelNone    = "Other"
	VenueLabelUnknown = "Unknown venue"
	DateLabelUnknown  = "Unknown date"
)
