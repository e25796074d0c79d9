package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.roriz.xyz/retag/clientutil"
)

const deezerBaseURL = "https://api.deezer.com"

var deezerNonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Deezer searches the public Deezer API. Free text works well enough that no
// pre-split artist/title pair is required.
type Deezer struct {
	BaseURL   string
	RateLimit time.Duration

	initOnce   sync.Once
	HTTPClient *http.Client
}

func (d *Deezer) Name() string { return "Deezer" }

func (d *Deezer) init() {
	d.initOnce.Do(func() {
		if d.BaseURL == "" {
			d.BaseURL = deezerBaseURL
		}
		d.HTTPClient = clientutil.WrapClient(d.HTTPClient, clientutil.Chain(
			clientutil.WithCache(),
			clientutil.WithRateLimit(d.RateLimit),
		))
	})
}

type deezerTrack struct {
	Title  string `json:"title"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		Title       string `json:"title"`
		CoverXL     string `json:"cover_xl"`
		CoverBig    string `json:"cover_big"`
		CoverMedium string `json:"cover_medium"`
		Cover       string `json:"cover"`
		CoverSmall  string `json:"cover_small"`
	} `json:"album"`
}

func (d *Deezer) search(ctx context.Context, query string) ([]deezerTrack, error) {
	d.init()

	u, _ := url.Parse(d.BaseURL)
	u = u.JoinPath("search")
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("req search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("req search: status %d", resp.StatusCode)
	}

	var result struct {
		Data []deezerTrack `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result.Data, nil
}

func (d *Deezer) SearchTrack(ctx context.Context, query Query) (*Track, error) {
	// punctuation confuses the free text search more than it helps
	q := deezerNonWord.ReplaceAllString(query.Raw, " ")
	q = strings.Join(strings.Fields(q), " ")
	if q == "" {
		return nil, ErrNotFound
	}

	tracks, err := d.search(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrNotFound
	}
	t := tracks[0]
	if t.Artist.Name == "" || t.Title == "" {
		return nil, ErrNotFound
	}
	return &Track{Artist: t.Artist.Name, Title: t.Title, Album: t.Album.Title}, nil
}

func (d *Deezer) SearchCover(ctx context.Context, artist, title string) (*Cover, error) {
	tracks, err := d.search(ctx, fmt.Sprintf("artist:%q track:%q", artist, title))
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrNotFound
	}

	album := tracks[0].Album
	for _, u := range []string{album.CoverXL, album.CoverBig, album.CoverMedium, album.Cover, album.CoverSmall} {
		if u == "" {
			continue
		}
		cover, err := fetchImage(ctx, d.HTTPClient, u)
		if err != nil {
			continue
		}
		return cover, nil
	}
	return nil, ErrNotFound
}
