package model

import "time"

// unixEpochOrdinal is the proleptic Gregorian ordinal of 1970-01-01, counting
// 0001-01-01 as day 1.
const unixEpochOrdinal = 719163

const secondsPerDay = 86400

// Ordinal returns the proleptic Gregorian day number of t's calendar date
// (0001-01-01 is 1). The time of day and location are ignored.
func Ordinal(t time.Time) int {
	d := Day(t)
	return int(d.Unix()/secondsPerDay) + unixEpochOrdinal
}

// DateFromOrdinal is the inverse of Ordinal.
func DateFromOrdinal(n int) time.Time {
	return time.Unix(int64(n-unixEpochOrdinal)*secondsPerDay, 0).UTC()
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
