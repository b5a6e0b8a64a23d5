package media

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/sosodev/duration"
)

var isoDurationShape = regexp.MustCompile(`^P(?:\d+(?:\.\d+)?[YMWD])*(?:T(?:\d+(?:\.\d+)?[HMS])+)?$`)

// maxDurationSeconds is the largest length a time.Duration can hold.
var maxDurationSeconds = float64(math.MaxInt64 / int64(time.Second))

// ParseISODuration parses the ISO 8601 durations the YouTube Data API returns
// in contentDetails.duration (e.g. "PT1H2M3S", "P1DT2H").
func ParseISODuration(s string) (time.Duration, error) {
	if s == "P" || !isoDurationShape.MatchString(s) {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", s)
	}
	d, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q: %w", s, err)
	}
	// years and months have no fixed length and never appear in video metadata
	if d.Years != 0 || d.Months != 0 {
		return 0, fmt.Errorf("unsupported ISO 8601 duration %q", s)
	}

	seconds := ((d.Weeks*7+d.Days)*24+d.Hours)*3600 + d.Minutes*60 + d.Seconds
	if seconds >= maxDurationSeconds {
		return 0, fmt.Errorf("ISO 8601 duration %q out of range", s)
	}
	return d.ToTimeDuration(), nil
}
