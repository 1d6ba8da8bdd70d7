// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package database holds small helpers shared by the SQLite repository
// implementations — timestamp formatting and UUID blob conversion, since
// SQLite has no native timestamp or UUID column type.
package database

import (
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the text representation used for all stored timestamps.
// UTC, at-least-millisecond precision, matching spec.md §3. The fraction
// always has nine digits, so stored strings compare in time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp string. Any number of fractional
// digits is accepted.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// FormatOptionalTime renders a nullable timestamp, returning nil for zero time.
func FormatOptionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

// ParseOptionalTime parses a nullable timestamp column value.
func ParseOptionalTime(v any) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IDBytes converts a UUID string into the 16-byte blob stored in id columns.
func IDBytes(id string) ([]byte, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	b := [16]byte(u)
	return b[:], nil
}

// IDString converts a stored 16-byte blob back into a UUID string.
func IDString(b []byte) (string, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
