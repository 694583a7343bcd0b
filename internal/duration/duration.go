// Package duration parses the free-form duration strings typed into the
// manual entry form and renders second counts for display.
package duration

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	colonForm  = regexp.MustCompile(`^(\d+):(\d+)$`)
	hourMinute = regexp.MustCompile(`^(?:(\d+(?:\.\d+)?)\s*h)?\s*(?:(\d+)\s*m)?$`)
	leadingNum = regexp.MustCompile(`^(\d+(?:\.\d*)?|\.\d+)`)
)

// MaxSeconds is the longest span a time.Duration can hold, in seconds.
const MaxSeconds = math.MaxInt64 / int64(time.Second)

// Step is the increment of the +/- stepper in the manual entry form.
const Step int64 = 300

// Preset is a one-key duration choice in the manual entry form.
type Preset struct {
	Label string
	Secs  int64
}

var Presets = []Preset{
	{Label: "10m", Secs: 600},
	{Label: "15m", Secs: 900},
	{Label: "30m", Secs: 1800},
	{Label: "1h", Secs: 3600},
	{Label: "2h", Secs: 7200},
}

// Parse converts s into whole seconds. Accepted forms, first match wins:
//
//	H:MM        "1:30"   -> 5400
//	[Nh][Nm]    "1h 20m" -> 4800, "1.5h" -> 5400, "45m" -> 2700
//	N           "0.5"    -> 30 (bare numbers are minutes)
//
// A bare number is read from the leading numeric prefix of s. The second
// result is false when nothing could be parsed or the value exceeds
// MaxSeconds.
func Parse(s string) (int64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	if m := colonForm.FindStringSubmatch(s); m != nil {
		h, err1 := strconv.ParseInt(m[1], 10, 64)
		min, err2 := strconv.ParseInt(m[2], 10, 64)
		if err1 != nil || err2 != nil || h > MaxSeconds/3600 || min > MaxSeconds/60 {
			return 0, false
		}
		secs := h*3600 + min*60
		if secs > MaxSeconds {
			return 0, false
		}
		return secs, true
	}

	if m := hourMinute.FindStringSubmatch(s); m != nil && (m[1] != "" || m[2] != "") {
		var hours, mins float64
		if m[1] != "" {
			hours, _ = strconv.ParseFloat(m[1], 64)
		}
		if m[2] != "" {
			mins, _ = strconv.ParseFloat(m[2], 64)
		}
		return seconds(hours*3600 + mins*60)
	}

	if m := leadingNum.FindString(s); m != "" {
		n, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return seconds(n * 60)
	}
	return 0, false
}

// seconds rounds f to whole seconds. NaN and values outside
// [0, MaxSeconds] are rejected before the integer conversion.
func seconds(f float64) (int64, bool) {
	if !(f >= 0 && f <= float64(MaxSeconds)) {
		return 0, false
	}
	return int64(math.Floor(f + 0.5)), true
}

// Format renders secs as "1h 5m", "5m 3s" or "3s".
func Format(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatHM renders secs as "1h 5m" or "5m", dropping seconds.
func FormatHM(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// Decimal renders secs as hours with two decimals, e.g. "1.50".
func Decimal(secs int64) string {
	return fmt.Sprintf("%.2f", float64(secs)/3600)
}

// Clock renders d as HH:MM:SS.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Adjust moves secs by delta, never going below zero.
func Adjust(secs, delta int64) int64 {
	if secs+delta < 0 {
		return 0
	}
	return secs + delta
}
