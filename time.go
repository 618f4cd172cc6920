/*
Copyright © 2019 the CovJSON converter authors.
This file is part of the CovJSON converter.

The CovJSON converter is free software: you can redistribute it and/or
modify it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

The CovJSON converter is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with the CovJSON converter.  If not, see <http://www.gnu.org/licenses/>.
*/

package covjson

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// CF-convention time coordinates store offsets from a reference instant,
// declared in a units attribute of the form "<interval> since <instant>".
// The intervals supported here cover the common cases; calendar-dependent
// intervals (months, years) have no fixed length and are rejected.
var timeIntervals = map[string]time.Duration{
	"second":  time.Second,
	"seconds": time.Second,
	"sec":     time.Second,
	"secs":    time.Second,
	"s":       time.Second,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"min":     time.Minute,
	"mins":    time.Minute,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"hr":      time.Hour,
	"h":       time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
	"d":       24 * time.Hour,
}

// Reference-instant layouts seen in the wild, most specific first.
var timeLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.0",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15",
	"2006-01-02",
	"2006-1-2 15:4:5.0",
	"2006-1-2 15:4:5",
	"2006-1-2",
}

// decodeTimes converts numeric time-coordinate values into RFC 3339
// timestamps using a CF "<interval> since <instant>" units declaration.
// The whole and fractional parts of each offset are applied separately:
// whole interval counts as integer seconds, so offsets far exceeding
// time.Duration's range (distant epochs such as "days since 0001-01-01")
// convert exactly, and only the sub-interval fraction passes through
// floating point.
func decodeTimes(units string, vals []float64) ([]string, error) {
	interval, epoch, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	intervalSecs := int64(interval / time.Second)
	times := make([]string, len(vals))
	for i, v := range vals {
		whole, frac := math.Modf(v)
		if math.Abs(whole) >= float64(math.MaxInt64)/float64(intervalSecs) {
			return nil, fmt.Errorf("time offset %v in units %q is out of the representable range", v, units)
		}
		t := time.Unix(epoch.Unix()+int64(whole)*intervalSecs,
			int64(epoch.Nanosecond())+int64(frac*float64(interval)))
		times[i] = t.UTC().Format(time.RFC3339)
	}
	return times, nil
}

// parseTimeUnits splits a CF time units declaration into the interval
// length and the reference instant.
func parseTimeUnits(units string) (time.Duration, time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("time units %q do not have the form \"<interval> since <instant>\"", units)
	}
	interval, ok := timeIntervals[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return 0, time.Time{}, fmt.Errorf("unsupported time interval %q", parts[0])
	}
	ref := strings.TrimSpace(parts[1])
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, ref); err == nil {
			return interval, t, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("cannot parse time reference instant %q", ref)
}
