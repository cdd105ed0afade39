// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editdoc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/geobrowser/grc-20-sub000/lib/grc20"
)

const (
	microsPerMinute = int64(60_000_000)
	secondsPerDay   = 86_400
)

// The text forms follow RFC 3339: full-date, partial-time and
// date-time, each optionally followed by a time offset ("Z" or
// "±hh:mm"). A missing offset means UTC. Fractions are limited to
// microseconds, the wire precision.

// FormatDate renders a Date as "2006-01-02" plus its offset.
func FormatDate(d grc20.Date) string {
	day := time.Unix(int64(d.Days)*secondsPerDay, 0).UTC()
	return day.Format(time.DateOnly) + formatOffset(d.OffsetMin)
}

// ParseDate parses the form FormatDate produces.
func ParseDate(s string) (grc20.Date, error) {
	if len(s) < len(time.DateOnly) {
		return grc20.Date{}, fmt.Errorf("date %q: too short", s)
	}
	day, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)])
	if err != nil {
		return grc20.Date{}, fmt.Errorf("date %q: %w", s, err)
	}
	offset, err := parseOffset(s[len(time.DateOnly):])
	if err != nil {
		return grc20.Date{}, fmt.Errorf("date %q: %w", s, err)
	}
	days := day.Unix() / secondsPerDay
	if days < -1<<31 || days > 1<<31-1 {
		return grc20.Date{}, fmt.Errorf("date %q: outside the 32-bit day range", s)
	}
	return grc20.Date{Days: int32(days), OffsetMin: offset}, nil
}

// FormatTime renders a Time as "15:04:05[.ffffff]" plus its offset.
func FormatTime(t grc20.Time) string {
	clock := time.UnixMicro(t.Micros).UTC()
	return clock.Format("15:04:05.999999") + formatOffset(t.OffsetMin)
}

// ParseTime parses the form FormatTime produces.
func ParseTime(s string) (grc20.Time, error) {
	body, offsetText := splitOffset(s, len("15:04:05"))
	clock, err := time.Parse("15:04:05.999999999", body)
	if err != nil {
		return grc20.Time{}, fmt.Errorf("time %q: %w", s, err)
	}
	if clock.Nanosecond()%1000 != 0 {
		return grc20.Time{}, fmt.Errorf("time %q: precision finer than a microsecond", s)
	}
	offset, err := parseOffset(offsetText)
	if err != nil {
		return grc20.Time{}, fmt.Errorf("time %q: %w", s, err)
	}
	micros := int64(clock.Hour())*3600_000_000 + int64(clock.Minute())*microsPerMinute +
		int64(clock.Second())*1_000_000 + int64(clock.Nanosecond()/1000)
	return grc20.Time{Micros: micros, OffsetMin: offset}, nil
}

// FormatDatetime renders a Datetime as RFC 3339 in its recorded
// offset.
func FormatDatetime(d grc20.Datetime) string {
	local := time.UnixMicro(d.Micros + int64(d.OffsetMin)*microsPerMinute).UTC()
	return local.Format("2006-01-02T15:04:05.999999") + formatOffset(d.OffsetMin)
}

// ParseDatetime parses an RFC 3339 date-time, keeping its offset.
func ParseDatetime(s string) (grc20.Datetime, error) {
	body, offsetText := splitOffset(s, len("2006-01-02T15:04:05"))
	local, err := time.Parse("2006-01-02T15:04:05.999999999", body)
	if err != nil {
		return grc20.Datetime{}, fmt.Errorf("datetime %q: %w", s, err)
	}
	if local.Nanosecond()%1000 != 0 {
		return grc20.Datetime{}, fmt.Errorf("datetime %q: precision finer than a microsecond", s)
	}
	offset, err := parseOffset(offsetText)
	if err != nil {
		return grc20.Datetime{}, fmt.Errorf("datetime %q: %w", s, err)
	}
	return grc20.Datetime{
		Micros:    local.UnixMicro() - int64(offset)*microsPerMinute,
		OffsetMin: offset,
	}, nil
}

// splitOffset separates a trailing offset from s. The offset can only
// start after the fixed-width prefix, which keeps the dashes of a date
// from being mistaken for one.
func splitOffset(s string, minimum int) (string, string) {
	if len(s) <= minimum {
		return s, ""
	}
	if i := strings.IndexAny(s[minimum:], "Zz+-"); i >= 0 {
		return s[:minimum+i], s[minimum+i:]
	}
	return s, ""
}

func formatOffset(minutes int16) string {
	if minutes == 0 {
		return ""
	}
	sign := '+'
	m := int(minutes)
	if m < 0 {
		sign = '-'
		m = -m
	}
	return fmt.Sprintf("%c%02d:%02d", sign, m/60, m%60)
}

func parseOffset(s string) (int16, error) {
	switch {
	case s == "", s == "Z", s == "z":
		return 0, nil
	case len(s) != len("+00:00") || (s[0] != '+' && s[0] != '-') || s[3] != ':':
		return 0, fmt.Errorf("offset %q: want Z or ±hh:mm", s)
	}
	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, fmt.Errorf("offset %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(s[4:6])
	if err != nil || minutes > 59 {
		return 0, fmt.Errorf("offset %q: bad minutes", s)
	}
	total := hours*60 + minutes
	if total > grc20.MaxOffsetMin {
		return 0, fmt.Errorf("offset %q: beyond ±24:00", s)
	}
	if s[0] == '-' {
		total = -total
	}
	return int16(total), nil
}
