// Package compose derives continuation context from generated output and
// stitches per-chunk generations into one document. Everything here is a
// total function over arbitrary text: malformed or heading-less input
// degrades to character-window fallbacks, never to an error.
package compose

import (
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+)$`)

const (
	maxSummaryHeadings = 10
	summaryFallback    = 500
	tailWindow         = 1000
	tailFallback       = 500
)

// Summarize produces a compact "sections covered so far" listing from the
// accumulated output: the first 10 heading titles, markers stripped. Text
// with no headings falls back to its last 500 characters verbatim.
func Summarize(accumulated string) string {
	matches := headingRe.FindAllStringSubmatch(accumulated, maxSummaryHeadings)
	if len(matches) == 0 {
		return lastChars(accumulated, summaryFallback)
	}
	titles := make([]string, 0, len(matches))
	for _, m := range matches {
		titles = append(titles, strings.TrimSpace(m[2]))
	}
	return strings.Join(titles, ", ")
}

// TailPreview returns the end of the most recent chunk's output, trimmed to
// start at the last heading inside the final 1000 characters so the preview
// opens on a clean section boundary. Without a heading it falls back to the
// last 500 characters verbatim.
func TailPreview(last string) string {
	window := lastChars(last, tailWindow)
	locs := headingRe.FindAllStringIndex(window, -1)
	if len(locs) == 0 {
		return lastChars(last, tailFallback)
	}
	return window[locs[len(locs)-1][0]:]
}

func lastChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
