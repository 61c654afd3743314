package service

import (
	"errors"
	"time"
)

// parseTime parses an RFC 3339 timestamp from a request payload.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("timestamp must be RFC 3339")
	}
	return t.UTC(), nil
}

// parseWindow parses a start/end pair and requires a well-formed window.
func parseWindow(start, end string) (time.Time, time.Time, error) {
	from, err := parseTime(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseTime(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, errors.New("start must be before end")
	}
	return from, to, nil
}
