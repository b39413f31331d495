package usecase

import (
	"regexp"
	"strings"
)

// MinDescribedMatterLength is the trimmed length below which a matter
// description is always considered underspecified.
const MinDescribedMatterLength = 80

// gapPatterns match placeholder tokens and dangling references that
// indicate a matter description is missing concrete facts.
var gapPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[[^\[\]\n]{0,60}\]`),     // [AMOUNT], [DATE]
	regexp.MustCompile(`<[A-Za-z][^<>\n]{0,60}>`), // <Recipient Name>
	regexp.MustCompile(`(?i)\b(?:tbd|tba)\b`),     // to-be-decided markers
	regexp.MustCompile(`(?i)\bto be (?:decided|determined|confirmed|announced)\b`),
	regexp.MustCompile(`_{3,}`),         // fill-in blanks
	regexp.MustCompile(`(?i)\bx{2,}\b`), // XXX placeholders
	regexp.MustCompile(`(?i)\b(?:amount|sum|rent|fee|deposit)\s+of\s*(?:\?|\.{3})`),
	regexp.MustCompile(`(?i)\b(?:on|by|before|dated)\s*(?:\?|\.{3})`),
}

// GapDetector is a cheap deterministic pre-filter that flags
// underspecified matter descriptions. It only gates whether the
// LLM-based planner runs; it never blocks drafting by itself.
type GapDetector struct{}

func NewGapDetector() *GapDetector {
	return &GapDetector{}
}

// NeedsClarification reports whether the matter text looks
// underspecified: too short, or containing placeholder patterns.
func (d *GapDetector) NeedsClarification(matter string) bool {
	trimmed := strings.TrimSpace(matter)
	if len(trimmed) < MinDescribedMatterLength {
		return true
	}
	for _, p := range gapPatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}
