// Package textnorm turns recognized text into candidate lines for the heuristic parser.
package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinLineLength is the shortest line (in runes) kept after trimming.
const MinLineLength = 5

var (
	reLineBreak = regexp.MustCompile(`\r\n?|\n`)
	reNoise     = regexp.MustCompile(`(?i)\b(?:header|table|schedule|timetable)\b`)
)

// Lines splits text into trimmed lines, dropping short lines and lines carrying a
// header word as a whole word.
func Lines(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, ln := range reLineBreak.Split(text, -1) {
		ln = strings.TrimSpace(ln)
		if utf8.RuneCountInString(ln) < MinLineLength {
			continue
		}
		if reNoise.MatchString(ln) {
			continue
		}
		out = append(out, ln)
	}
	return out
}
