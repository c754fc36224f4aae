package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Metadata is the subset of video metadata surfaced in API responses.
// Field names follow the oEmbed payload.
type Metadata struct {
	Title        string `json:"title"`
	Channel      string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Metadata looks up title, channel and thumbnail via the oEmbed endpoint.
// Cheap and unauthenticated; callers treat failure as non-fatal.
func (c *Client) Metadata(ctx context.Context, videoID string) (*Metadata, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID
	u := fmt.Sprintf("%s/oembed?url=%s&format=json", c.baseURL, url.QueryEscape(watchURL))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &meta, nil
}
