package services

import (
	"time"
)

// BusinessCalendar converts civil business days in a fixed-offset timezone
// into absolute UTC instants. The offset comes from configuration; the
// host's local zone is never consulted.
type BusinessCalendar struct {
	loc *time.Location
}

// NewBusinessCalendar builds a calendar for a fixed civil timezone, e.g.
// NewBusinessCalendar("IST", 330) for UTC+05:30. No daylight-saving rules
// are applied.
func NewBusinessCalendar(name string, utcOffsetMinutes int) *BusinessCalendar {
	return &BusinessCalendar{loc: time.FixedZone(name, utcOffsetMinutes*60)}
}

// Location returns the fixed business zone.
func (c *BusinessCalendar) Location() *time.Location {
	return c.loc
}

// TomorrowWindow returns the UTC instants bounding the next civil day after
// now in the business timezone: [start of tomorrow, end of tomorrow]. The
// end bound is the last representable instant before the following midnight.
func (c *BusinessCalendar) TomorrowWindow(now time.Time) (start, end time.Time) {
	local := now.In(c.loc)
	y, m, d := local.Date()
	start = time.Date(y, m, d+1, 0, 0, 0, 0, c.loc).UTC()
	end = time.Date(y, m, d+2, 0, 0, 0, 0, c.loc).Add(-time.Nanosecond).UTC()
	return start, end
}
