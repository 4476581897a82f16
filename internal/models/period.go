package models

import (
	"fmt"
	"time"
)

// Period is an analytics look-back window.
type Period string

const (
	Period24Hours Period = "24h"
	Period7Days   Period = "7d"
	Period30Days  Period = "30d"
	Period90Days  Period = "90d"
)

var ErrInvalidPeriod = fmt.Errorf("period must be one of %s, %s, %s, %s", Period24Hours, Period7Days, Period30Days, Period90Days)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Period24Hours, Period7Days, Period30Days, Period90Days:
		return p, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidPeriod, s)
	}
}

func (p Period) Duration() time.Duration {
	switch p {
	case Period24Hours:
		return 24 * time.Hour
	case Period7Days:
		return 7 * 24 * time.Hour
	case Period30Days:
		return 30 * 24 * time.Hour
	case Period90Days:
		return 90 * 24 * time.Hour
	default:
		panic(fmt.Sprintf("invalid Period: %q", p))
	}
}

// ChartGranularity is the bucket width used for totals and chart series.
// Hour buckets only live for seven days, so longer periods read day buckets.
func (p Period) ChartGranularity() Granularity {
	if p == Period24Hours || p == Period7Days {
		return GranularityHour
	}
	return GranularityDay
}

// Window returns the bucket-aligned [start, end) range ending at now.
// start is the beginning of the oldest chart bucket so cached and recomputed
// summaries cover exactly the same orders.
func (p Period) Window(now time.Time) (time.Time, time.Time) {
	g := p.ChartGranularity()
	n := int(p.Duration() / g.Duration())
	start := g.Truncate(now).Add(-time.Duration(n-1) * g.Duration())
	return start, now.UTC()
}
