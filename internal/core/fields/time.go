// Package fields holds the stateless line-level matchers used by the heuristic parser.
package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TimeRange is a start/end pair found on one line. Start and End are the verbatim clock
// tokens; meridiem suffixes are kept separately and are empty when absent.
type TimeRange struct {
	Start         string
	End           string
	StartMeridiem string
	EndMeridiem   string
	Match         string
	Span          Span
}

var reTimeRange = regexp.MustCompile(
	`(?i)\b(\d{1,2}:\d{2})(?:\s*([ap]m)\b)?\s*(?:-|–|—|\bto)\s*(\d{1,2}:\d{2})(?:\s*([ap]m)\b)?`)

// FindTimeRange returns the first time range on the line.
func FindTimeRange(line string) (TimeRange, bool) {
	idx := reTimeRange.FindStringSubmatchIndex(line)
	if idx == nil {
		return TimeRange{}, false
	}
	group := func(i int) string {
		if idx[2*i] < 0 {
			return ""
		}
		return line[idx[2*i]:idx[2*i+1]]
	}
	return TimeRange{
		Start:         group(1),
		StartMeridiem: strings.ToUpper(group(2)),
		End:           group(3),
		EndMeridiem:   strings.ToUpper(group(4)),
		Match:         group(0),
		Span:          Span{Start: idx[0], End: idx[1]},
	}, true
}

// To24Hour converts an H:MM token with an AM/PM suffix to HH:MM. Tokens without a
// suffix, or whose hour does not fit a 12-hour clock, are returned unchanged.
func To24Hour(token, meridiem string) string {
	meridiem = strings.ToUpper(strings.TrimSpace(meridiem))
	if meridiem != "AM" && meridiem != "PM" {
		return token
	}
	hs, ms, ok := strings.Cut(token, ":")
	if !ok {
		return token
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 1 || h > 12 {
		return token
	}
	switch {
	case meridiem == "AM" && h == 12:
		h = 0
	case meridiem == "PM" && h != 12:
		h += 12
	}
	return fmt.Sprintf("%02d:%s", h, ms)
}

// Normalized returns the start and end times with AM/PM suffixes applied.
func (r TimeRange) Normalized() (start, end string) {
	return To24Hour(r.Start, r.StartMeridiem), To24Hour(r.End, r.EndMeridiem)
}
