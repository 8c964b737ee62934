package fields

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Span is a half-open byte range [Start, End) within a line.
type Span struct {
	Start int
	End   int
}

func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Match is a matcher hit: Value is the extracted field, Raw the substring it came from
// and Span its position in the line.
type Match struct {
	Value string
	Raw   string
	Span  Span
}

var reDay = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

// FindDay returns the first full weekday name on the line, re-cased to "Monday" form.
func FindDay(line string) (Match, bool) {
	loc := reDay.FindStringIndex(line)
	if loc == nil {
		return Match{}, false
	}
	raw := line[loc[0]:loc[1]]
	// Casers are stateful and not shared across goroutines.
	return Match{
		Value: cases.Title(language.English).String(raw),
		Raw:   raw,
		Span:  Span{Start: loc[0], End: loc[1]},
	}, true
}
