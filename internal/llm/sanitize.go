package llm

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/core/fields"
)

var reLooseTime = regexp.MustCompile(`(?i)^(\d{1,2})[:.](\d{2})(?::\d{2})?\s*([ap])?\.?(m)?\.?$`)

// key synonyms seen in vision responses, folded onto the entry field names.
var entryKeySynonyms = map[string]string{
	"day":        "day",
	"weekday":    "day",
	"dayofweek":  "day",
	"starttime":  "startTime",
	"start":      "startTime",
	"from":       "startTime",
	"begin":      "startTime",
	"endtime":    "endTime",
	"end":        "endTime",
	"to":         "endTime",
	"finish":     "endTime",
	"title":      "title",
	"subject":    "title",
	"course":     "title",
	"coursename": "title",
	"name":       "title",
	"class":      "title",
	"event":      "title",
	"location":   "location",
	"room":       "location",
	"venue":      "location",
	"place":      "location",
}

// SanitizeEntry coerces one loosely-typed entry object into the entry shape:
// - folds key synonyms (start_time -> startTime, room -> location)
// - coerces scalars to trimmed strings, null -> ""
// - canonicalizes the day ("MON" -> "Monday"), defaulting to Monday
// - converts AM/PM times to 24-hour HH:MM and drops seconds
// - synthesizes "Class N" for an empty title
// - removes unknown keys
//
// It returns the cleaned object and a list of adjustments for logging.
func SanitizeEntry(in map[string]any, ordinal int) (map[string]any, []string) {
	out := map[string]any{"day": "", "startTime": "", "endTime": "", "title": "", "location": ""}
	var notes []string

	for _, k := range orderedKeys(in) {
		v := in[k]
		norm := normalizeKey(k)
		field, ok := entryKeySynonyms[norm]
		if !ok {
			notes = append(notes, k+"(unknown)")
			continue
		}
		if field != k {
			notes = append(notes, k+"->"+field)
		}
		s, ok := scalarString(v)
		if !ok {
			notes = append(notes, k+"(type)")
			continue
		}
		if cur, _ := out[field].(string); cur == "" {
			out[field] = s
		}
	}

	day, _ := out["day"].(string)
	if d, ok := constants.CanonicalizeWeekday(day); ok {
		out["day"] = string(d)
	} else if m, ok := fields.FindDay(day); ok {
		out["day"] = m.Value
	} else {
		out["day"] = string(constants.DefaultWeekday)
		if day != "" {
			notes = append(notes, "day(unrecognized)")
		}
	}

	for _, k := range []string{"startTime", "endTime"} {
		s, _ := out[k].(string)
		out[k] = normalizeTime(s)
	}

	if t, _ := out["title"].(string); t == "" {
		out["title"] = "Class " + strconv.Itoa(ordinal)
		notes = append(notes, "title(synthesized)")
	}
	return out, notes
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(k))
}

// orderedKeys puts exact field names ahead of synonyms so "title" beats "subject".
func orderedKeys(in map[string]any) []string {
	keys := slices.Collect(maps.Keys(in))
	rank := func(k string) int {
		norm := normalizeKey(k)
		if f, ok := entryKeySynonyms[norm]; ok && strings.ToLower(f) == norm {
			return 0
		}
		return 1
	}
	slices.SortFunc(keys, func(a, b string) int {
		if d := rank(a) - rank(b); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return keys
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// normalizeTime accepts "9:00", "09.30", "14:00:00" and "2:00 PM"; anything else is
// returned unchanged for the schema to reject.
func normalizeTime(s string) string {
	m := reLooseTime.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}
	token := fmt.Sprintf("%s:%s", m[1], m[2])
	if m[3] != "" {
		return fields.To24Hour(token, m[3]+"M")
	}
	return token
}
