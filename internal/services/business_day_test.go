package services

import (
	"testing"
	"time"
)

func TestTomorrowWindowIST(t *testing.T) {
	cal := NewBusinessCalendar("IST", 330)

	// 2025-06-09 15:00 IST = 2025-06-09 09:30 UTC
	now := time.Date(2025, 6, 9, 9, 30, 0, 0, time.UTC)
	start, end := cal.TomorrowWindow(now)

	// Tomorrow is 2025-06-10 IST; midnight IST is 18:30 UTC the day before.
	wantStart := time.Date(2025, 6, 9, 18, 30, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Fatalf("window start: want %v, got %v", wantStart, start)
	}

	wantEndDay := time.Date(2025, 6, 10, 18, 30, 0, 0, time.UTC)
	if !end.Before(wantEndDay) {
		t.Fatalf("window end %v must fall before next midnight %v", end, wantEndDay)
	}
	if wantEndDay.Sub(end) > time.Second {
		t.Fatalf("window end %v too far from next midnight %v", end, wantEndDay)
	}
}

func TestTomorrowWindowBoundaries(t *testing.T) {
	cal := NewBusinessCalendar("IST", 330)
	ist := cal.Location()

	now := time.Date(2025, 6, 9, 12, 0, 0, 0, ist)
	start, end := cal.TomorrowWindow(now)

	lastMoment := time.Date(2025, 6, 10, 23, 59, 59, 0, ist).UTC()
	if lastMoment.Before(start) || lastMoment.After(end) {
		t.Fatalf("23:59:59 business-local tomorrow must be inside the window")
	}

	twoDaysOut := time.Date(2025, 6, 11, 0, 0, 1, 0, ist).UTC()
	if !twoDaysOut.After(end) {
		t.Fatalf("00:00:01 two days out must fall outside the window")
	}
}

func TestTomorrowWindowIgnoresHostZone(t *testing.T) {
	cal := NewBusinessCalendar("IST", 330)

	// The same instant expressed in two zones must produce the same window.
	utcNow := time.Date(2025, 6, 9, 20, 0, 0, 0, time.UTC)
	pst := time.FixedZone("PST", -8*3600)

	s1, e1 := cal.TomorrowWindow(utcNow)
	s2, e2 := cal.TomorrowWindow(utcNow.In(pst))

	if !s1.Equal(s2) || !e1.Equal(e2) {
		t.Fatalf("window depends on input zone: (%v,%v) vs (%v,%v)", s1, e1, s2, e2)
	}

	// 20:00 UTC is already 01:30 IST the next civil day, so "tomorrow" in
	// IST is two UTC days ahead of the naive reading.
	wantStart := time.Date(2025, 6, 10, 18, 30, 0, 0, time.UTC)
	if !s1.Equal(wantStart) {
		t.Fatalf("window start: want %v, got %v", wantStart, s1)
	}
}
