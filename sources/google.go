package sources

import "context"

// Google is a placeholder cover source. Image search needs either a paid API
// key or scraping markup that changes weekly, so for now it always misses
// and lets the next source in the chain take over.
type Google struct{}

func (g *Google) Name() string { return "Google" }

func (g *Google) SearchCover(ctx context.Context, artist, title string) (*Cover, error) {
	return nil, ErrNotImplemented
}
