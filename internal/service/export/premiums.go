package export

import (
	"time"
)

// Premium-qualifying night window: 23:00 of one day to 06:00 of the next.
const (
	nightStartHour = 23
	nightEndHour   = 6
)

// workedMinutes returns the net worked minutes of a shift after the break.
func workedMinutes(start, end time.Time, breakMinutes int) int {
	if !end.After(start) {
		return 0
	}
	minutes := int(end.Sub(start).Minutes()) - breakMinutes
	if minutes < 0 {
		return 0
	}
	return minutes
}

// nightMinutes returns how many minutes of [start, end) fall into a night
// window. Shifts crossing midnight are handled by checking the windows
// around both calendar days.
func nightMinutes(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}

	total := 0
	// Night windows that can overlap the shift start the evening before the
	// shift begins and the evening the shift ends.
	for day := start.AddDate(0, 0, -1); !day.After(end); day = day.AddDate(0, 0, 1) {
		winStart := time.Date(day.Year(), day.Month(), day.Day(), nightStartHour, 0, 0, 0, start.Location())
		winEnd := winStart.Add(time.Duration(24-nightStartHour+nightEndHour) * time.Hour)
		total += overlapMinutes(start, end, winStart, winEnd)
	}
	return total
}

// sundayMinutes returns how many minutes of [start, end) fall on a Sunday.
func sundayMinutes(start, end time.Time) int {
	return minutesOnDays(start, end, func(day time.Time) bool {
		return day.Weekday() == time.Sunday
	})
}

// holidayMinutes returns how many minutes of [start, end) fall on a Bavarian
// public holiday.
func holidayMinutes(start, end time.Time) int {
	return minutesOnDays(start, end, isBavarianHoliday)
}

func minutesOnDays(start, end time.Time, match func(time.Time) bool) int {
	if !end.After(start) {
		return 0
	}

	total := 0
	for day := truncateToDay(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		if !match(day) {
			continue
		}
		total += overlapMinutes(start, end, day, day.AddDate(0, 0, 1))
	}
	return total
}

func overlapMinutes(aStart, aEnd, bStart, bEnd time.Time) int {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Minutes())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isBavarianHoliday reports whether the day is a public holiday in Bavaria.
// Covers the state-wide holidays; Augsburger Friedensfest and
// Mariä Himmelfahrt variations by municipality are out.
func isBavarianHoliday(day time.Time) bool {
	month, dom := day.Month(), day.Day()

	switch {
	case month == time.January && dom == 1: // Neujahr
		return true
	case month == time.January && dom == 6: // Heilige Drei Könige
		return true
	case month == time.May && dom == 1: // Tag der Arbeit
		return true
	case month == time.August && dom == 15: // Mariä Himmelfahrt
		return true
	case month == time.October && dom == 3: // Tag der Deutschen Einheit
		return true
	case month == time.November && dom == 1: // Allerheiligen
		return true
	case month == time.December && (dom == 25 || dom == 26): // Weihnachten
		return true
	}

	easter := easterSunday(day.Year())
	for _, offset := range []int{-2, 1, 39, 50, 60} { // Karfreitag, Ostermontag, Himmelfahrt, Pfingstmontag, Fronleichnam
		h := easter.AddDate(0, 0, offset)
		if h.Month() == month && h.Day() == dom {
			return true
		}
	}
	return false
}

// easterSunday computes the Gregorian Easter date (Gauss algorithm).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
