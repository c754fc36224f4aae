package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgallion1/vidgest/internal/config"
	"github.com/dgallion1/vidgest/internal/llm"
	"github.com/dgallion1/vidgest/internal/pipeline"
	"github.com/dgallion1/vidgest/internal/youtube"
)

const testVideoID = "dQw4w9WgXcQ"

// countingClient is a pipeline.TextClient returning a fixed document.
type countingClient struct {
	calls int
}

func (c *countingClient) Generate(ctx context.Context, prompt string) (llm.Result, error) {
	c.calls++
	return llm.Result{
		Text:      "# Test Guide\n\n## Overview\n\nAbout the video.\n\n## Summary\n\nDone.",
		ModelUsed: "fake-model",
	}, nil
}

func fakeYouTube(t *testing.T, withCaptions bool) *youtube.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if !withCaptions {
			fmt.Fprint(w, `<html><body><script>var ytInitialPlayerResponse = {"videoDetails":{}};</script></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"/api/timedtext?v=x","languageCode":"en"}]}}};</script></body></html>`)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text start="0" dur="1">Narration about the topic.</text></transcript>`)
	})
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title":"How to Test","author_name":"Some Channel","thumbnail_url":"https://i.example/t.jpg"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return youtube.NewClient(srv.URL)
}

func newTestServer(t *testing.T, client pipeline.TextClient, withCaptions bool) *Server {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	orch := pipeline.NewOrchestrator(client, log, 20000, 500)
	cfg := config.Config{Models: []string{"fake-model"}}
	return NewServer(orch, fakeYouTube(t, withCaptions), llm.NewStats(0), log, cfg)
}

func postDocument(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestCreateDocument_HappyPath(t *testing.T) {
	client := &countingClient{}
	s := newTestServer(t, client, true)

	rec := postDocument(t, s, fmt.Sprintf(`{"url":"https://www.youtube.com/watch?v=%s"}`, testVideoID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		VideoID    string   `json:"video_id"`
		Title      string   `json:"title"`
		Source     string   `json:"source"`
		Document   string   `json:"document"`
		ChunkCount int      `json:"chunk_count"`
		ModelsUsed []string `json:"models_used"`
		Outline    []struct {
			Level int    `json:"level"`
			Title string `json:"title"`
		} `json:"outline"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.VideoID != testVideoID {
		t.Errorf("video_id = %q", resp.VideoID)
	}
	if resp.Title != "How to Test" {
		t.Errorf("title = %q", resp.Title)
	}
	if resp.Source != youtube.SourceManual {
		t.Errorf("source = %q", resp.Source)
	}
	if resp.ChunkCount != 1 || client.calls != 1 {
		t.Errorf("chunk_count = %d, generate calls = %d", resp.ChunkCount, client.calls)
	}
	if len(resp.ModelsUsed) != 1 || resp.ModelsUsed[0] != "fake-model" {
		t.Errorf("models_used = %v", resp.ModelsUsed)
	}
	if !strings.Contains(resp.Document, "# Test Guide") {
		t.Errorf("document missing title: %q", resp.Document)
	}
	if len(resp.Outline) == 0 || resp.Outline[0].Title != "Test Guide" {
		t.Errorf("outline = %v", resp.Outline)
	}
}

func TestCreateDocument_BadRequests(t *testing.T) {
	client := &countingClient{}
	s := newTestServer(t, client, true)

	cases := []string{
		`not json`,
		`{}`,
		`{"url":"  "}`,
		`{"url":"https://example.com/watch?v=` + testVideoID + `"}`,
	}
	for _, body := range cases {
		rec := postDocument(t, s, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
	if client.calls != 0 {
		t.Errorf("no generation calls may be issued for bad input, got %d", client.calls)
	}
}

func TestCreateDocument_NoCaptions(t *testing.T) {
	client := &countingClient{}
	s := newTestServer(t, client, false)

	rec := postDocument(t, s, fmt.Sprintf(`{"url":"%s"}`, testVideoID))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
	}
	if client.calls != 0 {
		t.Errorf("no generation calls may be issued without a transcript, got %d", client.calls)
	}
}

// exhaustedClient always reports roster exhaustion.
type exhaustedClient struct{}

func (exhaustedClient) Generate(ctx context.Context, prompt string) (llm.Result, error) {
	return llm.Result{}, fmt.Errorf("%w: model-a over quota", llm.ErrAllModelsExhausted)
}

func TestCreateDocument_AllModelsExhausted(t *testing.T) {
	s := newTestServer(t, exhaustedClient{}, true)

	rec := postDocument(t, s, fmt.Sprintf(`{"url":"%s"}`, testVideoID))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503; body = %s", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &countingClient{}, true)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLLMStatsEndpoint(t *testing.T) {
	s := newTestServer(t, &countingClient{}, true)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fake-model") {
		t.Errorf("stats body missing roster: %s", rec.Body.String())
	}
}
