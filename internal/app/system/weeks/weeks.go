// Package weeks validates the ISO-8601 week keys that identify weekly
// reports, e.g. "2024-W10". The key is part of the reports collection's
// unique index, so every entry point parses through here before writing.
package weeks

import (
	"fmt"
	"strconv"
	"time"
)

// Parse splits a week key of the form "YYYY-Www" into its year and week
// number, validating both. Week numbers run 1..52, or 1..53 in ISO long
// years.
func Parse(key string) (year int, week int, err error) {
	if len(key) != 8 || key[4] != '-' || key[5] != 'W' {
		return 0, 0, fmt.Errorf("week %q: want format YYYY-Www", key)
	}
	year, err = strconv.Atoi(key[:4])
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, fmt.Errorf("week %q: bad year", key)
	}
	week, err = strconv.Atoi(key[6:])
	if err != nil || week < 1 || week > weeksInYear(year) {
		return 0, 0, fmt.Errorf("week %q: bad week number", key)
	}
	return year, week, nil
}

// Valid reports whether key is a well-formed week key.
func Valid(key string) bool {
	_, _, err := Parse(key)
	return err == nil
}

// Key formats a year and ISO week number as a week key.
func Key(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// Current returns the week key for the given instant in UTC.
func Current(now time.Time) string {
	y, w := now.UTC().ISOWeek()
	return Key(y, w)
}

// weeksInYear returns 53 for ISO long years, else 52. A year has 53 ISO
// weeks when Jan 1 falls on Thursday, or on Wednesday in a leap year.
func weeksInYear(year int) int {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	switch jan1.Weekday() {
	case time.Thursday:
		return 53
	case time.Wednesday:
		if isLeap(year) {
			return 53
		}
	}
	return 52
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
