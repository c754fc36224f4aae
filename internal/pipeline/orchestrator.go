// Package pipeline drives the transcript-to-document loop:
// chunk -> build prompt -> generate -> extract context -> repeat -> merge.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/vidgest/internal/chunker"
	"github.com/dgallion1/vidgest/internal/compose"
	"github.com/dgallion1/vidgest/internal/llm"
	"github.com/dgallion1/vidgest/internal/prompt"
)

// ErrNoTranscript is returned when BuildDocument is handed an empty
// transcript. No transcript, no document.
var ErrNoTranscript = errors.New("transcript is empty")

// TextClient is the generation client used for each chunk. Implemented by
// llm.FallbackClient; tests supply fakes.
type TextClient interface {
	Generate(ctx context.Context, prompt string) (llm.Result, error)
}

// Orchestrator converts transcripts into merged markdown documents.
type Orchestrator struct {
	client   TextClient
	log      *slog.Logger
	maxChunk int
	overlap  int
}

func NewOrchestrator(client TextClient, log *slog.Logger, maxChunk, overlap int) *Orchestrator {
	if maxChunk <= 0 {
		maxChunk = chunker.DefaultMaxSize
	}
	if overlap <= 0 {
		overlap = chunker.DefaultOverlap
	}
	return &Orchestrator{
		client:   client,
		log:      log,
		maxChunk: maxChunk,
		overlap:  overlap,
	}
}

// BuildResult is the output of one document build. ModelsUsed holds the
// model that served each chunk, in chunk order.
type BuildResult struct {
	Document   string
	ChunkCount int
	ModelsUsed []string
}

// BuildDocument runs the full loop for one transcript. Generation is
// strictly sequential: chunk k+1's prompt depends on context extracted from
// chunk k's output, so there is no valid parallelization here. Any
// generation failure other than a roster-absorbed quota error aborts the
// whole request; partial documents are never returned.
func (o *Orchestrator) BuildDocument(ctx context.Context, transcript string) (*BuildResult, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, ErrNoTranscript
	}

	chunks := chunker.Split(transcript, o.maxChunk, o.overlap)
	o.log.Info("chunked transcript", "chars", len(transcript), "chunks", len(chunks))

	parts := make([]string, 0, len(chunks))
	models := make([]string, 0, len(chunks))
	var pctx prompt.Context

	for _, ch := range chunks {
		var p string
		if ch.IsFirst {
			p = prompt.First(ch.Text, len(chunks))
		} else {
			p = prompt.Continuation(ch.Text, ch.Index, len(chunks), pctx)
		}

		res, err := o.client.Generate(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", ch.Index, err)
		}
		o.log.Info("chunk generated",
			"chunk", ch.Index, "model", res.ModelUsed, "chars", len(res.Text))

		parts = append(parts, res.Text)
		models = append(models, res.ModelUsed)

		// The final chunk's output is never fed forward.
		if !ch.IsLast {
			pctx = prompt.Context{
				PreviousSummary:    compose.Summarize(strings.Join(parts, "\n\n")),
				LastSectionPreview: compose.TailPreview(res.Text),
			}
		}
	}

	doc := compose.Merge(parts)
	return &BuildResult{
		Document:   doc,
		ChunkCount: len(chunks),
		ModelsUsed: models,
	}, nil
}
