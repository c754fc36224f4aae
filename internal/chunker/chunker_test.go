package chunker

import (
	"fmt"
	"strings"
	"testing"
)

// sentences produces text made of distinct short sentences until it reaches
// n chars. Sentences are numbered so every substring is unique and chunk
// offsets can be recovered with strings.Index.
func sentences(n int) string {
	var sb strings.Builder
	for i := 0; sb.Len() < n; i++ {
		fmt.Fprintf(&sb, "Step %d of the walkthrough is explained now. ", i)
	}
	return sb.String()[:n]
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	text := sentences(5000)
	chunks := Split(text, 20000, 500)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("single chunk should be the whole text")
	}
	if !chunks[0].IsFirst || !chunks[0].IsLast {
		t.Errorf("single chunk must be both first and last, got first=%v last=%v",
			chunks[0].IsFirst, chunks[0].IsLast)
	}
}

func TestSplit_ThreeChunksAt45k(t *testing.T) {
	text := sentences(45000)
	chunks := Split(text, 20000, 500)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 45k chars at 20k/500, got %d", len(chunks))
	}
	if !chunks[0].IsFirst || chunks[0].IsLast {
		t.Errorf("chunk 0 flags wrong: first=%v last=%v", chunks[0].IsFirst, chunks[0].IsLast)
	}
	if chunks[1].IsFirst || chunks[1].IsLast {
		t.Errorf("chunk 1 flags wrong: first=%v last=%v", chunks[1].IsFirst, chunks[1].IsLast)
	}
	if !chunks[2].IsLast {
		t.Errorf("chunk 2 should be last")
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: index %d", i, c.Index)
		}
	}
}

func TestSplit_FullCoverageWithOverlap(t *testing.T) {
	text := sentences(45000)
	chunks := Split(text, 20000, 500)

	// Every chunk is a substring of the source; verify consecutive chunks
	// overlap (no gaps) and the last chunk reaches the end of the text.
	offset := 0
	prevEnd := 0
	for i, c := range chunks {
		at := strings.Index(text[offset:], c.Text)
		if at < 0 {
			t.Fatalf("chunk %d not found in source from offset %d", i, offset)
		}
		start := offset + at
		if i > 0 && start >= prevEnd {
			t.Errorf("chunk %d starts at %d but previous ended at %d (no overlap)", i, start, prevEnd)
		}
		prevEnd = start + len(c.Text)
		offset = start
	}
	if prevEnd != len(text) {
		t.Errorf("last chunk ends at %d, want %d", prevEnd, len(text))
	}
}

func TestSplit_SnapsToSentenceBoundary(t *testing.T) {
	text := sentences(45000)
	chunks := Split(text, 20000, 500)

	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(strings.TrimRight(c.Text, " "), ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, tail(c.Text, 20))
		}
	}
}

func TestSplit_NoPunctuationStillTerminates(t *testing.T) {
	text := strings.Repeat("a", 50000)
	chunks := Split(text, 20000, 500)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		// Without sentence boundaries the raw window size is used.
		if len(c.Text) != 20000 {
			t.Errorf("chunk %d: len %d, want raw window 20000", i, len(c.Text))
		}
	}
}

func TestSplit_DegenerateOverlapStillProgresses(t *testing.T) {
	// Text length deliberately not a multiple of the window, so the final
	// partial window must still be emitted.
	text := strings.Repeat("b", 5050)
	chunks := Split(text, 100, 100)

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if !chunks[len(chunks)-1].IsLast {
		t.Error("last chunk not flagged")
	}

	// With overlap >= window size the chunks carry no overlap; they must
	// tile the text exactly, short tail included.
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.Text)
	}
	if sb.String() != text {
		t.Errorf("chunks cover %d of %d chars", sb.Len(), len(text))
	}
}

func TestSplit_ZeroConfigUsesDefaults(t *testing.T) {
	text := sentences(1000)
	chunks := Split(text, 0, 0)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk under default 20k window, got %d", len(chunks))
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
