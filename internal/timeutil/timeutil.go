// Package timeutil resolves the configured display timezone once at
// startup and hands out a converter, rather than calling time.LoadLocation
// ad hoc throughout the codebase (§5: no ambient global state other than
// the configured, initialised-once collaborators).
package timeutil

import "time"

const DefaultTimezone = "Africa/Johannesburg"

type Converter struct {
	loc *time.Location
}

func NewConverter(tz string) (*Converter, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	return &Converter{loc: loc}, nil
}

// Local renders a UTC timestamp in the configured timezone, for notification
// formatting (§6: "Each accepts a timestamp and formats it in the configured
// timezone"). A nil Converter passes the timestamp through unchanged, so
// callers in tests need not construct one.
func (c *Converter) Local(t time.Time) time.Time {
	if c == nil {
		return t
	}
	return t.In(c.loc)
}

func (c *Converter) Format(t time.Time, layout string) string {
	return c.Local(t).Format(layout)
}
