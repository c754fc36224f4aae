package compose

import (
	"regexp"
	"strings"
)

var (
	titleLineRe    = regexp.MustCompile(`^# [^\n]*$`)
	overviewRe     = regexp.MustCompile(`(?i)^##[ \t]+overview\b`)
	headingLineRe  = regexp.MustCompile(`^#{1,6}[ \t]+\S`)
	excessBlanksRe = regexp.MustCompile(`\n{4,}`)
)

// Merge stitches the ordered per-chunk generations into one document.
// Chunk overlap plus the generator re-stating its continuation context means
// each part may open by repeating recently written content; when a part's
// first heading already occurs in the merged text, the merged text is
// trimmed back to just before that occurrence and the part's fresher
// restatement takes over.
func Merge(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	merged := parts[0]
	// A single result passes through untouched; the blank-line normalization
	// below only cleans up spacing introduced by the trims.
	if len(parts) == 1 {
		return merged
	}
	for _, part := range parts[1:] {
		part = stripLeadingPreamble(part)
		if h := firstHeadingLine(part); h != "" {
			if idx := strings.Index(merged, h); idx >= 0 {
				merged = merged[:idx]
			}
		}
		merged = strings.TrimRight(merged, "\n") + "\n\n" + strings.TrimLeft(part, "\n")
	}
	return excessBlanksRe.ReplaceAllString(merged, "\n\n\n")
}

// stripLeadingPreamble drops a duplicated top-level title, and an Overview
// section following it, from the start of a continuation part. Generators
// sometimes replay the document opening despite the prompt instructions.
func stripLeadingPreamble(part string) string {
	lines := strings.Split(part, "\n")
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) || !titleLineRe.MatchString(lines[i]) {
		return part
	}
	i++
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i < len(lines) && overviewRe.MatchString(lines[i]) {
		i++
		for i < len(lines) && !headingLineRe.MatchString(lines[i]) {
			i++
		}
	}
	return strings.Join(lines[i:], "\n")
}

// firstHeadingLine returns the first markdown heading line of part, or "".
func firstHeadingLine(part string) string {
	for _, line := range strings.Split(part, "\n") {
		if headingLineRe.MatchString(line) {
			return line
		}
	}
	return ""
}
