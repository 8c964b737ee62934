package ocr

import (
	"regexp"
	"strings"
)

var (
	reClock   = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
	reWeekday = regexp.MustCompile(`(?i)\b(mon|tue|wed|thu|fri|sat|sun)[a-z]*\b`)
	reRoom    = regexp.MustCompile(`(?i)\b(room|lab|hall|lecture)\b`)
)

// heuristicConfidence scores how timetable-like the recognized text looks, 0..1.
func heuristicConfidence(txt string) float32 {
	score := float32(0.2)
	if n := len(reClock.FindAllString(txt, -1)); n >= 2 {
		score += 0.3
	} else if n == 1 {
		score += 0.1
	}
	if reWeekday.MatchString(txt) {
		score += 0.2
	}
	if reRoom.MatchString(txt) {
		score += 0.1
	}
	if len(strings.TrimSpace(txt)) > 80 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
