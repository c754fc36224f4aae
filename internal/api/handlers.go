package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dgallion1/vidgest/internal/llm"
	"github.com/dgallion1/vidgest/internal/outline"
	"github.com/dgallion1/vidgest/internal/pipeline"
	"github.com/dgallion1/vidgest/internal/youtube"
)

type documentRequest struct {
	URL string `json:"url"`
}

type documentResponse struct {
	VideoID      string            `json:"video_id"`
	Title        string            `json:"title,omitempty"`
	Channel      string            `json:"channel,omitempty"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	Source       string            `json:"source"`
	Document     string            `json:"document"`
	ChunkCount   int               `json:"chunk_count"`
	ModelsUsed   []string          `json:"models_used"`
	Outline      []outline.Section `json:"outline"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}

	videoID, err := youtube.ParseVideoID(raw)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	log := s.log.With("video_id", videoID)

	// Metadata is independent of the generation loop; fetch it while the
	// chunks are being processed.
	metaCh := make(chan *youtube.Metadata, 1)
	go func() {
		meta, err := s.yt.Metadata(ctx, videoID)
		if err != nil {
			log.Warn("metadata fetch failed", "error", err)
			meta = &youtube.Metadata{}
		}
		metaCh <- meta
	}()

	tr, err := s.yt.FetchTranscript(ctx, videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrNoCaptions) {
			log.Info("no captions", "error", err)
			jsonError(w, "no captions available for this video; try one with subtitles enabled", http.StatusUnprocessableEntity)
			return
		}
		log.Error("transcript fetch failed", "error", err)
		jsonError(w, "transcript fetch failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	log.Info("transcript fetched", "source", tr.Source, "chars", len(tr.Text))

	result, err := s.orchestrator.BuildDocument(ctx, tr.Text)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrNoTranscript):
			jsonError(w, "transcript is empty", http.StatusUnprocessableEntity)
		case errors.Is(err, llm.ErrAllModelsExhausted):
			log.Warn("all models exhausted")
			jsonError(w, "all generation models are over quota; retry later", http.StatusServiceUnavailable)
		default:
			log.Error("generation failed", "error", err)
			jsonError(w, "generation failed: "+err.Error(), http.StatusBadGateway)
		}
		return
	}
	meta := <-metaCh

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(documentResponse{
		VideoID:      videoID,
		Title:        meta.Title,
		Channel:      meta.Channel,
		ThumbnailURL: meta.ThumbnailURL,
		Source:       tr.Source,
		Document:     result.Document,
		ChunkCount:   result.ChunkCount,
		ModelsUsed:   result.ModelsUsed,
		Outline:      outline.Parse(result.Document),
	})
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"models": s.cfg.Models,
		"stats":  s.stats.Snapshot(),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
