// Package youtube fetches caption tracks and metadata for a video. This is
// the I/O edge of the system: the pipeline only sees the flattened
// transcript text and its source tag.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const defaultBaseURL = "https://www.youtube.com"

// ErrNoCaptions means the video has no caption track at all. Terminal for
// the whole request: no transcript, no document.
var ErrNoCaptions = errors.New("no captions available")

// Transcript source tags. Manual tracks are creator-provided captions; auto
// tracks come from speech recognition and tend to be noisier.
const (
	SourceManual = "manual"
	SourceAuto   = "auto"
)

// Transcript is a caption track flattened to plain text.
type Transcript struct {
	Text   string
	Source string
}

// Client scrapes the watch page for the caption track list and downloads
// the timedtext document behind it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client. baseURL overrides the YouTube origin for
// tests; pass "" for the real site.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID resolves a raw ID or any common video URL form
// (watch, youtu.be, shorts, embed, live) to the 11-character video ID.
func ParseVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if videoIDRe.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err == nil {
		host := strings.TrimPrefix(u.Hostname(), "www.")
		switch host {
		case "youtu.be":
			if id := strings.Trim(u.Path, "/"); videoIDRe.MatchString(id) {
				return id, nil
			}
		case "youtube.com", "m.youtube.com", "music.youtube.com":
			if id := u.Query().Get("v"); videoIDRe.MatchString(id) {
				return id, nil
			}
			for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
				if strings.HasPrefix(u.Path, prefix) {
					if id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/"); videoIDRe.MatchString(id) {
						return id, nil
					}
				}
			}
		}
	}
	return "", fmt.Errorf("unrecognized video reference %q", raw)
}

// FetchTranscript downloads and flattens the best caption track for a
// video, preferring a manually authored track over speech recognition.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) (*Transcript, error) {
	page, err := c.get(ctx, c.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}

	tracks, err := captionTracks(page)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}
	track, source := pickTrack(tracks)

	trackURL := track.BaseURL
	if strings.HasPrefix(trackURL, "/") {
		trackURL = c.baseURL + trackURL
	}
	body, err := c.get(ctx, trackURL)
	if err != nil {
		return nil, fmt.Errorf("fetch caption track: %w", err)
	}

	text, err := flattenTimedText(body)
	if err != nil {
		return nil, fmt.Errorf("parse caption track: %w", err)
	}
	if text == "" {
		return nil, fmt.Errorf("video %s: empty caption track: %w", videoID, ErrNoCaptions)
	}
	return &Transcript{Text: text, Source: source}, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; vidgest/1.0)")
	req.Header.Set("Accept-Language", "en")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, u)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

// captionTrack is one entry of the watch page's caption track list. Kind is
// "asr" for speech-recognition tracks.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// captionTracks extracts the caption track list from the watch page: find
// the player response script, then the balanced JSON array after the
// captionTracks key.
func captionTracks(page []byte) ([]captionTrack, error) {
	script := playerResponseScript(page)
	if script == "" {
		return nil, ErrNoCaptions
	}
	raw := captionTracksJSON(script)
	if raw == "" {
		return nil, ErrNoCaptions
	}
	var tracks []captionTrack
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	return tracks, nil
}

// playerResponseScript walks the page DOM for the script element carrying
// ytInitialPlayerResponse.
func playerResponseScript(page []byte) string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" {
			if c := n.FirstChild; c != nil && c.Type == html.TextNode &&
				strings.Contains(c.Data, "ytInitialPlayerResponse") {
				found = c.Data
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// captionTracksJSON returns the balanced JSON array following the
// captionTracks key. A bracket scan is used instead of a regexp because
// track names can nest arrays.
func captionTracksJSON(script string) string {
	const key = `"captionTracks":`
	i := strings.Index(script, key)
	if i < 0 {
		return ""
	}
	rest := script[i+len(key):]

	depth := 0
	inString := false
	for j := 0; j < len(rest); j++ {
		c := rest[j]
		if inString {
			switch c {
			case '\\':
				j++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return rest[:j+1]
			}
		}
	}
	return ""
}

// pickTrack prefers the first manually authored track; otherwise the first
// track of any kind.
func pickTrack(tracks []captionTrack) (captionTrack, string) {
	for _, t := range tracks {
		if t.Kind != "asr" {
			return t, SourceManual
		}
	}
	return tracks[0], SourceAuto
}

type timedText struct {
	Texts []struct {
		Content string `xml:",chardata"`
	} `xml:"text"`
}

// flattenTimedText joins the cues of a timedtext document into one line of
// plain text. Caption content is double-escaped on the wire, so entities
// are unescaped once more after XML decoding.
func flattenTimedText(body []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(tt.Texts))
	for _, cue := range tt.Texts {
		s := html.UnescapeString(cue.Content)
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}
