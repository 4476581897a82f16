package models

import (
	"fmt"
	"time"
)

// Granularity is the width of a time bucket.
type Granularity string

const (
	GranularityMinute Granularity = "minute"
	GranularityHour   Granularity = "hour"
	GranularityDay    Granularity = "day"
)

// Granularities lists every granularity an order event is applied to.
var Granularities = []Granularity{GranularityMinute, GranularityHour, GranularityDay}

func (g Granularity) Duration() time.Duration {
	switch g {
	case GranularityMinute:
		return time.Minute
	case GranularityHour:
		return time.Hour
	case GranularityDay:
		return 24 * time.Hour
	default:
		panic(fmt.Sprintf("invalid Granularity: %q", g))
	}
}

// Retention is how long a bucket is kept after it ends.
func (g Granularity) Retention() time.Duration {
	switch g {
	case GranularityMinute:
		return 2 * time.Hour
	case GranularityHour:
		return 7 * 24 * time.Hour
	case GranularityDay:
		return 30 * 24 * time.Hour
	default:
		panic(fmt.Sprintf("invalid Granularity: %q", g))
	}
}

// Truncate returns the UTC start of the bucket containing t.
func (g Granularity) Truncate(t time.Time) time.Time {
	utc := t.UTC()
	if g == GranularityDay {
		return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	}
	return utc.Truncate(g.Duration())
}

// ExpiresAt is the instant the bucket containing t is dropped from the store.
func (g Granularity) ExpiresAt(t time.Time) time.Time {
	return g.Truncate(t).Add(g.Duration() + g.Retention())
}

func (g Granularity) layout() string {
	switch g {
	case GranularityMinute:
		return "2006-01-02-15-04"
	case GranularityHour:
		return "2006-01-02-15"
	case GranularityDay:
		return "2006-01-02"
	default:
		panic(fmt.Sprintf("invalid Granularity: %q", g))
	}
}

// FormatBucket renders the zero-padded UTC bucket label used in keys.
func (g Granularity) FormatBucket(t time.Time) string {
	return g.Truncate(t).Format(g.layout())
}

// BucketKey is the deterministic store key of the tenant's bucket containing t.
//
//	minute: metrics:{tenant}:minute:2025-12-28-18-03
//	hour:   analytics:{tenant}:hourly:2025-12-28-18
//	day:    analytics:{tenant}:daily:2025-12-28
func (g Granularity) BucketKey(tenantID string, t time.Time) string {
	switch g {
	case GranularityMinute:
		return fmt.Sprintf("metrics:%s:minute:%s", tenantID, g.FormatBucket(t))
	case GranularityHour:
		return fmt.Sprintf("analytics:%s:hourly:%s", tenantID, g.FormatBucket(t))
	default:
		return fmt.Sprintf("analytics:%s:daily:%s", tenantID, g.FormatBucket(t))
	}
}

// BucketStarts enumerates the starts of every bucket overlapping [from, to), ascending.
func (g Granularity) BucketStarts(from, to time.Time) []time.Time {
	if !from.Before(to) {
		return nil
	}
	var starts []time.Time
	for s := g.Truncate(from); s.Before(to); s = s.Add(g.Duration()) {
		starts = append(starts, s)
	}
	return starts
}

// SnapshotKey is the key of the tenant's cached rolling snapshot.
func SnapshotKey(tenantID string) string {
	return "aggregated:" + tenantID
}

// SnapshotTTL bounds how long a cached rolling snapshot survives without a refresh.
const SnapshotTTL = 2 * time.Hour
