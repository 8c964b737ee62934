// Package heuristic recovers schedule entries from OCR text line by line.
package heuristic

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/core/fields"
	"github.com/joseph-ayodele/timetable-import/internal/core/textnorm"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
)

// titleTrim is stripped from both ends of the leftover title text.
const titleTrim = " \t|,;:/-–—•·()[]"

type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseText normalizes raw recognized text and parses the resulting lines.
func (p *Parser) ParseText(text string) []entity.ExtractedEntry {
	return p.Parse(textnorm.Lines(text))
}

// Parse turns each line carrying a time range into an entry. Lines without a time range
// are skipped. Output order follows input order.
func (p *Parser) Parse(lines []string) []entity.ExtractedEntry {
	var out []entity.ExtractedEntry
	skipped := 0
	for _, line := range lines {
		tr, ok := fields.FindTimeRange(line)
		if !ok {
			skipped++
			continue
		}

		cut := []fields.Span{tr.Span}
		day := string(constants.DefaultWeekday)
		if dm, ok := fields.FindDay(line); ok {
			day = dm.Value
			cut = append(cut, dm.Span)
		}
		loc, hasLoc := fields.FindLocationOutside(line, tr.Span)
		if hasLoc {
			cut = append(cut, loc.Span)
		}

		title := cleanTitle(cutSpans(line, cut))
		if title == "" {
			title = "Class " + strconv.Itoa(len(out)+1)
		}

		start, end := tr.Normalized()
		if padHour(end) < padHour(start) {
			p.logger.Debug("heuristic.parse.end_before_start", "start", start, "end", end, "line", line)
		}

		out = append(out, entity.ExtractedEntry{
			Day:       day,
			StartTime: start,
			EndTime:   end,
			Title:     title,
			Location:  loc.Value,
		})
	}
	p.logger.Debug("heuristic.parse.done", "lines", len(lines), "entries", len(out), "skipped", skipped)
	return out
}

// cutSpans replaces each span of line with a single space.
func cutSpans(line string, spans []fields.Span) string {
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.Start < pos {
			sp.Start = pos
		}
		if sp.End <= sp.Start {
			continue
		}
		b.WriteString(line[pos:sp.Start])
		b.WriteByte(' ')
		pos = sp.End
	}
	b.WriteString(line[pos:])
	return b.String()
}

func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, titleTrim)
}

// padHour left-pads single-digit hours so HH:MM strings compare lexically.
func padHour(t string) string {
	if len(t) == 4 {
		return "0" + t
	}
	return t
}
