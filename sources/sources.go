// Package sources looks up track metadata and cover art from external
// providers. Each provider is a small HTTP client in the same shape, so
// callers can try them in priority order and fall through on misses.
package sources

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
)

var (
	ErrNotFound       = errors.New("no result found")
	ErrNotImplemented = errors.New("source not implemented")
)

// Query carries the raw cleaned filename plus the artist/title pair when a
// split was possible. Sources that need a pre-split pair return ErrNotFound
// when Artist is empty.
type Query struct {
	Raw    string
	Artist string
	Title  string
}

type Track struct {
	Artist string
	Title  string
	Album  string
}

type Cover struct {
	Image  image.Image
	Format string
}

type TrackSource interface {
	Name() string
	SearchTrack(ctx context.Context, q Query) (*Track, error)
}

type CoverSource interface {
	Name() string
	SearchCover(ctx context.Context, artist, title string) (*Cover, error)
}

func fetchImage(ctx context.Context, client *http.Client, url string) (*Cover, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("req image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("req image: status %d", resp.StatusCode)
	}
	img, format, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return &Cover{Image: img, Format: format}, nil
}
