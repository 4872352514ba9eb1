package view

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006", "2 Jan 2006"}

// ParseDate accepts "today", "yesterday" or a calendar date. Empty input means today.
func ParseDate(s string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			if t.After(today) {
				return time.Time{}, fmt.Errorf("date %s is in the future", FormatDate(t))
			}

			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q, use YYYY-MM-DD", s)
}
