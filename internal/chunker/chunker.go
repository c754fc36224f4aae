package chunker

// Default window parameters. Tunable; these values keep a chunk comfortably
// inside one generation request while leaving enough overlap for the merger
// to detect duplicated content.
const (
	DefaultMaxSize = 20000
	DefaultOverlap = 500

	// How far around the tentative window end we search for a sentence
	// boundary before giving up and cutting at the raw offset.
	boundaryRadius = 200
)

// Chunk is one contiguous transcript window. Chunks are produced in order
// and never mutated after creation.
type Chunk struct {
	Text    string
	Index   int
	IsFirst bool
	IsLast  bool
}

// Split carves text into overlapping windows of at most maxSize characters,
// snapped to sentence boundaries where possible. Adjacent windows share
// roughly overlap characters so downstream merging can trim duplication.
func Split(text string, maxSize, overlap int) []Chunk {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap <= 0 {
		overlap = DefaultOverlap
	}

	if len(text) <= maxSize {
		return []Chunk{{Text: text, Index: 0, IsFirst: true, IsLast: true}}
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + maxSize
		if end >= len(text) {
			end = len(text)
		} else if cut := sentenceCut(text, end); cut > start {
			end = cut
		}

		chunks = append(chunks, Chunk{
			Text:    text[start:end],
			Index:   len(chunks),
			IsFirst: len(chunks) == 0,
		})

		if end >= len(text) {
			break
		}

		next := end - overlap
		if next <= start {
			// Overlap swallowed the whole window (overlap >= maxSize or an
			// aggressive boundary snap). Move forward without overlap so the
			// loop always makes progress. The tail-coverage break below does
			// not apply: with no overlap carried, the remaining tail is not
			// inside the chunk just emitted.
			next = end
		} else if len(text)-next < overlap {
			// The chunk just emitted already covers the remaining tail.
			break
		}
		start = next
	}

	chunks[len(chunks)-1].IsLast = true
	return chunks
}

// sentenceCut looks within boundaryRadius characters around pos for the last
// sentence end: '.', '!' or '?' followed by whitespace and an upper-case
// letter. Returns the index just past the punctuation, or -1 if the region
// has no sentence boundary.
func sentenceCut(text string, pos int) int {
	lo := pos - boundaryRadius
	if lo < 0 {
		lo = 0
	}
	hi := pos + boundaryRadius
	if hi > len(text) {
		hi = len(text)
	}

	cut := -1
	for i := lo; i < hi-1; i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if !isSpace(text[i+1]) {
			continue
		}
		// Skip the whitespace run and require an upper-case letter so we
		// don't cut at abbreviations or mid-list punctuation.
		j := i + 1
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j < len(text) && text[j] >= 'A' && text[j] <= 'Z' {
			cut = i + 1
		}
	}
	return cut
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
