package route

import (
	"regexp"
	"strings"

	"github.com/benz16107/BlindSpot/pkg/geo"
)

var (
	markupTags = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// street connectors, checked in order of appearance in the instruction
var streetConnectors = []string{" onto ", " toward ", " on "}

// Clean strips presentation markup from a raw instruction and collapses
// whitespace.
func Clean(raw string) string {
	s := markupTags.ReplaceAllString(raw, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Normalize rewrites a raw step instruction into a heading-relative
// phrase when a compass heading is available. The bearing from the
// listener's position to the step's end coordinate is classified against
// the heading, so "turn left" becomes "Head left, that's west" no matter
// which way the phone is pointing. Any street-name suffix introduced by
// "onto", "toward" or "on" is carried over verbatim. Without a heading
// the cleaned raw text is returned unchanged.
func Normalize(raw string, from, to geo.Point, heading *float64) string {
	cleaned := Clean(raw)
	if heading == nil {
		return cleaned
	}

	bearing := geo.Bearing(from, to)
	relative := geo.Relative(bearing, *heading)
	compass := geo.CompassLabel(bearing)

	phrase := "Head " + relative.String() + ", that's " + compass
	if suffix := streetSuffix(cleaned); suffix != "" {
		phrase += suffix
	}
	return phrase
}

// streetSuffix returns the earliest " onto ... "/" toward ... "/" on ... "
// tail of the instruction, or "" when there is none.
func streetSuffix(instruction string) string {
	best := -1
	for _, conn := range streetConnectors {
		if idx := strings.Index(instruction, conn); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	if best < 0 {
		return ""
	}
	return instruction[best:]
}
