package services

import (
	"fmt"
	"regexp"
	"strconv"
)

// Timeframe parsing for customer-requested windows like "7:30am - 9am".
//
// Two AM/PM inference rules coexist on purpose. Bucketing assumes hours
// 1-6 without a meridiem are PM; the overlap check assumes 1-7 excluding
// 10/11/12. The cutoffs encode observed scheduling behavior and must not
// be unified without product sign-off, so each lives in its own pure
// function with its own tests.

var clockExpr = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

// unscheduledHour sorts stops without a usable timeframe after every real
// hour bucket.
const unscheduledHour = 99

// bucketHour extracts the first clock time from a free-text timeframe and
// returns its 24-hour bucket. Hours 1-6 with no meridiem marker are
// assumed PM: nobody books a roof visit for 3 in the morning.
func bucketHour(timeframe string) (int, bool) {
	m := clockExpr.FindStringSubmatch(timeframe)
	if m == nil {
		return 0, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}

	switch m[3] {
	case "":
		if hour >= 1 && hour <= 6 {
			hour += 12
		}
	default:
		hour = to24Hour(hour, m[3])
	}

	if hour > 23 {
		return 0, false
	}
	return hour, true
}

// clockRange parses a "start - end" timeframe into minute-of-day bounds.
// Endpoints without a meridiem use the second observed inference rule:
// hours 1-7, excluding 10, 11 and 12, are assumed PM.
func clockRange(timeframe string) (startMin, endMin int, ok bool) {
	matches := clockExpr.FindAllStringSubmatch(timeframe, 2)
	if len(matches) < 2 {
		return 0, 0, false
	}

	startMin, ok = clockMinutes(matches[0])
	if !ok {
		return 0, 0, false
	}
	endMin, ok = clockMinutes(matches[1])
	if !ok {
		return 0, 0, false
	}

	return startMin, endMin, true
}

func clockMinutes(m []string) (int, bool) {
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}

	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return 0, false
		}
	}

	switch m[3] {
	case "":
		if hour >= 1 && hour <= 7 && hour != 10 && hour != 11 && hour != 12 {
			hour += 12
		}
	default:
		hour = to24Hour(hour, m[3])
	}

	if hour > 23 {
		return 0, false
	}
	return hour*60 + minute, true
}

func to24Hour(hour int, meridiem string) int {
	switch meridiem[0] {
	case 'p', 'P':
		if hour != 12 {
			hour += 12
		}
	case 'a', 'A':
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

// rangesOverlap is boundary-exclusive: windows that merely touch do not
// overlap.
func rangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// formatClock renders a minute-of-day as a 12-hour clock label.
func formatClock(minuteOfDay int) string {
	hour := minuteOfDay / 60 % 24
	minute := minuteOfDay % 60

	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}

	display := hour % 12
	if display == 0 {
		display = 12
	}

	return fmt.Sprintf("%d:%02d %s", display, minute, meridiem)
}

// formatClockRange renders a [start, end) window as a display label.
func formatClockRange(startMin, endMin int) string {
	return formatClock(startMin) + " - " + formatClock(endMin)
}
