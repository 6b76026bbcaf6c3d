package tle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseLines builds a TLEEntry from a caller-supplied two-line element set,
// without requiring the leading name line a catalog entry would carry. Used
// by the run API, where a client posts line1/line2 (and optionally a name)
// directly rather than a 3-line catalog excerpt.
func ParseLines(name, line1, line2 string) (TLEEntry, error) {
	if len(line1) < 7 || line1[0] != '1' {
		return TLEEntry{}, fmt.Errorf("line1 malformed: must start with '1'")
	}
	if len(line2) < 7 || line2[0] != '2' {
		return TLEEntry{}, fmt.Errorf("line2 malformed: must start with '2'")
	}

	noradStr := strings.TrimSpace(line1[2:7])
	noradID, err := strconv.Atoi(noradStr)
	if err != nil {
		return TLEEntry{}, fmt.Errorf("invalid NORAD id in line1 %q: %w", noradStr, err)
	}

	var epochStr string
	if len(line1) >= 32 {
		epochStr = strings.TrimSpace(line1[18:32])
	}
	epoch, err := parseEpoch(epochStr)
	if err != nil {
		return TLEEntry{}, fmt.Errorf("invalid epoch in line1: %w", err)
	}

	return TLEEntry{
		NORADID: noradID,
		Name:    strings.TrimSpace(name),
		Epoch:   epoch,
		Line1:   line1,
		Line2:   line2,
	}, nil
}

// parseEpoch converts a TLE epoch string in YYDDD.DDDDDDDD format to time.Time.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	yearStr := s[:2]
	dayStr := s[2:]

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", yearStr, err)
	}

	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(dayStr, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", dayStr, err)
	}

	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	dur := time.Duration((dayOfYear - 1) * float64(24*time.Hour))
	t = t.Add(dur)

	return t, nil
}
