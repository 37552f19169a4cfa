package core

import (
	"fmt"
	"strings"
	"time"
)

// closingLayouts are the accepted REGISTRATION_CLOSES_AT spellings without
// an offset.
var closingLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseClosingTime parses an ISO-8601 timestamp. Values without an offset
// are interpreted in loc; values with one are converted to loc.
func ParseClosingTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range closingLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid closing time %q", s)
}

// Countdown describes the time left until registration closes.
type Countdown struct {
	ClosesAt time.Time `json:"closes_at"`
	Closed   bool      `json:"closed"`
	Days     int       `json:"days"`
	Hours    int       `json:"hours"`
	Minutes  int       `json:"minutes"`
}

// CountdownAt computes the countdown to closesAt as seen at now.
func CountdownAt(closesAt, now time.Time) Countdown {
	c := Countdown{ClosesAt: closesAt}
	left := closesAt.Sub(now)
	if left <= 0 {
		c.Closed = true
		return c
	}
	c.Days = int(left / (24 * time.Hour))
	left -= time.Duration(c.Days) * 24 * time.Hour
	c.Hours = int(left / time.Hour)
	left -= time.Duration(c.Hours) * time.Hour
	c.Minutes = int(left / time.Minute)
	return c
}

// String renders the banner line.
func (c Countdown) String() string {
	if c.Closed {
		return "Registration has closed."
	}
	return fmt.Sprintf("Registration closes in: %d days %d hours %d minutes", c.Days, c.Hours, c.Minutes)
}

// RegistrationStatus is what clients show in the registration banner.
type RegistrationStatus struct {
	WritesEnabled bool       `json:"writes_enabled"`
	Countdown     *Countdown `json:"countdown,omitempty"`
}
