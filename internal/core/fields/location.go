package fields

import "regexp"

var reLocation = regexp.MustCompile(`(?i)\b(?:room|lab|hall|lecture)[\s\-]*(?:[a-z][\s\-]?)?\d+`)

// FindLocation returns the first room-like token ("Room 101", "Lab-3", "Hall B2") verbatim.
func FindLocation(line string) (Match, bool) {
	return FindLocationOutside(line, Span{})
}

// FindLocationOutside is FindLocation ignoring candidates that overlap skip, such as
// "Lab 9" read out of "Lab 9:00-10:00".
func FindLocationOutside(line string, skip Span) (Match, bool) {
	for _, loc := range reLocation.FindAllStringIndex(line, -1) {
		span := Span{Start: loc[0], End: loc[1]}
		if span.Overlaps(skip) {
			continue
		}
		raw := line[loc[0]:loc[1]]
		return Match{Value: raw, Raw: raw, Span: span}, true
	}
	return Match{}, false
}
