package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
)

type ICSOptions struct {
	// WeekOf picks the week the recurring events start in. Zero means the current week.
	WeekOf   time.Time
	Location *time.Location
	Name     string
}

// WriteICS writes one weekly recurring event per entry.
// Entries with an unknown day or unparsable time are skipped; the count of written events is returned.
func WriteICS(w io.Writer, entries []entity.ExtractedEntry, opts ICSOptions) (int, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	weekOf := opts.WeekOf
	if weekOf.IsZero() {
		weekOf = time.Now()
	}
	monday := startOfWeek(weekOf.In(loc))
	now := time.Now()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//timetable-import//EN")
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	written := 0
	for i, e := range entries {
		idx := constants.Weekday(e.Day).Index()
		if idx < 0 {
			continue
		}
		day := monday.AddDate(0, 0, idx)
		start, ok := atClock(day, e.StartTime)
		if !ok {
			continue
		}
		end, ok := atClock(day, e.EndTime)
		if !ok {
			continue
		}
		if !end.After(start) {
			end = start.Add(time.Hour)
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%d@timetable-import", start.UTC().Format("20060102T150405Z"), i))
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(e.Title)
		if e.Location != "" {
			event.SetLocation(e.Location)
		}
		event.SetProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY")
		written++
	}

	if err := cal.SerializeTo(w); err != nil {
		return written, fmt.Errorf("ics write: %w", err)
	}
	return written, nil
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

func atClock(day time.Time, hhmm string) (time.Time, bool) {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return time.Time{}, false
	}
	hi, err1 := strconv.Atoi(h)
	mi, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hi > 23 || mi > 59 {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hi, mi, 0, 0, day.Location()), true
}
