package types

import "github.com/tradeterm-lab/tradeterm/pkg/errors"

// Interval is the sampling granularity of a cached series.
type Interval string

const (
	IntervalOneHour  Interval = "1h"
	IntervalOneDay   Interval = "1d"
	IntervalOneWeek  Interval = "1w"
	IntervalOneMonth Interval = "1M"
)

// Intervals returns every supported interval in display order. Every asset in
// the cache carries a series slot for each of these.
func Intervals() []Interval {
	return []Interval{IntervalOneHour, IntervalOneDay, IntervalOneWeek, IntervalOneMonth}
}

// ParseInterval converts a raw string into an Interval.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case IntervalOneHour, IntervalOneDay, IntervalOneWeek, IntervalOneMonth:
		return Interval(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", s)
	}
}
