package prompt

import (
	"fmt"
	"strings"
)

// Context is the continuity state carried between successive chunk
// generations. Empty for the first chunk.
type Context struct {
	PreviousSummary    string
	LastSectionPreview string
}

const taskPrompt = `You are a technical writer. Convert the following spoken-tutorial transcript into a clear, well-structured markdown guide.

Structure:
- Start with a single "# " title naming the topic of the video
- Follow with a short "## Overview" section (2-4 sentences)
- Organize the material into "## " sections in the order it is presented, using numbered steps wherever the narration walks through a procedure
- Reconstruct any code the narrator dictates or reads aloud into fenced code blocks with the right language tag; turn dictation artifacts ("open paren", "new line", "dot") back into real syntax
- Bold key terms on first use and keep the narrator's terminology

Rules:
- Use only what the transcript says; do not invent steps or details
- Drop filler words, false starts, repetitions, and off-topic asides
- End the document with "## Summary" and "## Next Steps" sections`

const continuationPrompt = `You are continuing a markdown guide that is being written from a spoken-tutorial transcript, one part at a time.

Sections already covered: %s

The document currently ends with:
---
%s
---

Continue the guide from the transcript part below. Rules:
- Do NOT repeat the title, the Overview, or any section already covered
- Do NOT restart step numbering; continue the existing step flow
- The transcript part overlaps slightly with the previous one; skip anything already written`

// First builds the prompt for the opening chunk. When the transcript is
// split (total > 1) the closing sections are suppressed so they are written
// exactly once, by the final chunk.
func First(chunkText string, total int) string {
	var sb strings.Builder
	sb.WriteString(taskPrompt)
	if total > 1 {
		fmt.Fprintf(&sb, "\n\nThis transcript is part 1 of %d. Do NOT write the Summary or Next Steps sections yet; they are written once, at the very end.", total)
	}
	fmt.Fprintf(&sb, "\n\n---\nTranscript (part 1 of %d):\n", total)
	sb.WriteString(chunkText)
	return sb.String()
}

// Continuation builds the prompt for chunk index (0-based) of total,
// injecting the continuity context extracted from the output so far.
func Continuation(chunkText string, index, total int, c Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, continuationPrompt, c.PreviousSummary, c.LastSectionPreview)
	if index == total-1 {
		sb.WriteString("\n- This is the final part: close the guide with \"## Summary\" and \"## Next Steps\" sections")
	} else {
		sb.WriteString("\n- Do NOT write the Summary or Next Steps sections yet; more parts follow")
	}
	fmt.Fprintf(&sb, "\n\n---\nTranscript (part %d of %d):\n", index+1, total)
	sb.WriteString(chunkText)
	return sb.String()
}
