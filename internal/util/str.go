package util

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration prettifies a duration by removing useless units.
// eg. 1h20m0s -> 1h20m
// It does not round/truncate the duration, it only works on the string.
func FormatDuration(d time.Duration) string {
	var prefix string
	if d > (24 * time.Hour) {
		prefix = fmt.Sprintf("%dd", d/(24*time.Hour))
		// Don't need minutes if its in more than a day
		d = (d % (24 * time.Hour)).Truncate(time.Hour)
	}

	ret := d.Truncate(time.Second).String()
	if strings.HasSuffix(ret, "m0s") {
		ret = strings.TrimSuffix(ret, "0s")
	}
	if strings.HasSuffix(ret, "h0m") {
		return prefix + strings.TrimSuffix(ret, "0m")
	}

	return prefix + ret
}

// Datetime is the format to use anywhere we need to output a date+time to an user.
func Datetime(t TimeAsTimestamp) string {
	return t.Time().UTC().Format("2006-01-02 15h04 MST")
}

// FormatRating displays a rating or rating delta without decimals, deltas
// get an explicit sign.
func FormatRating(v float64, signed bool) string {
	if signed {
		return fmt.Sprintf("%+.0f", v)
	}

	return fmt.Sprintf("%.0f", v)
}
