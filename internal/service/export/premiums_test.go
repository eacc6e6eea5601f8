package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestWorkedMinutes(t *testing.T) {
	start := at(2026, time.March, 16, 8, 0)

	assert.Equal(t, 450, workedMinutes(start, start.Add(8*time.Hour), 30))
	assert.Equal(t, 480, workedMinutes(start, start.Add(8*time.Hour), 0))

	// A break longer than the shift clamps to zero.
	assert.Equal(t, 0, workedMinutes(start, start.Add(time.Hour), 90))
	// Inverted windows count nothing.
	assert.Equal(t, 0, workedMinutes(start, start.Add(-time.Hour), 0))
}

func TestNightMinutes(t *testing.T) {
	// Day shift, no night share.
	assert.Equal(t, 0, nightMinutes(at(2026, time.March, 16, 8, 0), at(2026, time.March, 16, 16, 0)))

	// Evening shift reaching into the window.
	assert.Equal(t, 30, nightMinutes(at(2026, time.March, 16, 20, 0), at(2026, time.March, 16, 23, 30)))

	// Full night shift crossing midnight: 23:00 to 06:00 qualifies.
	assert.Equal(t, 420, nightMinutes(at(2026, time.March, 16, 22, 0), at(2026, time.March, 17, 6, 0)))

	// Early shift overlapping the tail of the previous night's window.
	assert.Equal(t, 60, nightMinutes(at(2026, time.March, 17, 5, 0), at(2026, time.March, 17, 9, 0)))
}

func TestSundayMinutes(t *testing.T) {
	// 2026-03-15 is a Sunday.
	sunday := at(2026, time.March, 15, 8, 0)
	assert.Equal(t, 480, sundayMinutes(sunday, sunday.Add(8*time.Hour)))

	// Saturday night into Sunday morning: only the Sunday share counts.
	assert.Equal(t, 360, sundayMinutes(at(2026, time.March, 14, 22, 0), at(2026, time.March, 15, 6, 0)))

	monday := at(2026, time.March, 16, 8, 0)
	assert.Equal(t, 0, sundayMinutes(monday, monday.Add(8*time.Hour)))
}

func TestHolidayMinutes(t *testing.T) {
	// Tag der Arbeit.
	mayDay := at(2026, time.May, 1, 8, 0)
	assert.Equal(t, 480, holidayMinutes(mayDay, mayDay.Add(8*time.Hour)))

	// Shift crossing into the holiday at midnight.
	assert.Equal(t, 120, holidayMinutes(at(2026, time.April, 30, 22, 0), at(2026, time.May, 1, 2, 0)))

	ordinary := at(2026, time.May, 4, 8, 0)
	assert.Equal(t, 0, holidayMinutes(ordinary, ordinary.Add(8*time.Hour)))
}

func TestIsBavarianHoliday(t *testing.T) {
	holidays := []time.Time{
		at(2026, time.January, 1, 0, 0),   // Neujahr
		at(2026, time.January, 6, 0, 0),   // Heilige Drei Könige
		at(2026, time.April, 3, 0, 0),     // Karfreitag
		at(2026, time.April, 6, 0, 0),     // Ostermontag
		at(2026, time.May, 14, 0, 0),      // Christi Himmelfahrt
		at(2026, time.May, 25, 0, 0),      // Pfingstmontag
		at(2026, time.June, 4, 0, 0),      // Fronleichnam
		at(2026, time.August, 15, 0, 0),   // Mariä Himmelfahrt
		at(2026, time.October, 3, 0, 0),   // Tag der Deutschen Einheit
		at(2026, time.November, 1, 0, 0),  // Allerheiligen
		at(2026, time.December, 25, 0, 0), // 1. Weihnachtsfeiertag
		at(2026, time.December, 26, 0, 0), // 2. Weihnachtsfeiertag
	}
	for _, day := range holidays {
		assert.True(t, isBavarianHoliday(day), day.Format("2006-01-02"))
	}

	workdays := []time.Time{
		at(2026, time.March, 16, 0, 0),
		at(2026, time.April, 4, 0, 0),    // Karsamstag is not a holiday
		at(2026, time.October, 31, 0, 0), // Reformationstag is not Bavarian
	}
	for _, day := range workdays {
		assert.False(t, isBavarianHoliday(day), day.Format("2006-01-02"))
	}
}

func TestEasterSunday(t *testing.T) {
	assert.Equal(t, at(2025, time.April, 20, 0, 0), easterSunday(2025))
	assert.Equal(t, at(2026, time.April, 5, 0, 0), easterSunday(2026))
	assert.Equal(t, at(2027, time.March, 28, 0, 0), easterSunday(2027))
}
