package constants

import (
	"strings"
)

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// DefaultWeekday is used when a line names no day.
const DefaultWeekday = Monday

var allWeekdays = []Weekday{
	Monday,
	Tuesday,
	Wednesday,
	Thursday,
	Friday,
	Saturday,
	Sunday,
}

func Weekdays() []Weekday {
	out := make([]Weekday, len(allWeekdays))
	copy(out, allWeekdays)
	return out
}

func WeekdayNames() []string {
	result := make([]string, len(allWeekdays))
	for i, d := range allWeekdays {
		result[i] = string(d)
	}
	return result
}

// Index returns 0 for Monday through 6 for Sunday, or -1.
func (d Weekday) Index() int {
	for i, w := range allWeekdays {
		if w == d {
			return i
		}
	}
	return -1
}

func IsWeekday(s string) bool {
	return Weekday(s).Index() >= 0
}

// CanonicalizeWeekday maps full names and common abbreviations to a Weekday.
func CanonicalizeWeekday(input string) (Weekday, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.TrimSuffix(normalized, ".")
	if normalized == "" {
		return DefaultWeekday, false
	}

	synonyms := map[string]Weekday{
		"mon":   Monday,
		"tue":   Tuesday,
		"tues":  Tuesday,
		"wed":   Wednesday,
		"weds":  Wednesday,
		"thu":   Thursday,
		"thur":  Thursday,
		"thurs": Thursday,
		"fri":   Friday,
		"sat":   Saturday,
		"sun":   Sunday,
	}
	if d, ok := synonyms[normalized]; ok {
		return d, true
	}

	for _, d := range allWeekdays {
		if normalized == strings.ToLower(string(d)) {
			return d, true
		}
	}
	return DefaultWeekday, false
}
