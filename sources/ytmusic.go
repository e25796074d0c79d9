package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	"go.roriz.xyz/retag/clientutil"
)

const ytMusicBaseURL = "https://music.youtube.com"

// songs-only search filter
const ytMusicSongParams = "EgWKAQIIAWoKEAkQBRAKEAMQBA%3D%3D"

var ytMusicKeyExpr = regexp.MustCompile(`"INNERTUBE_API_KEY"\s*:\s*"([^"]+)"`)

// Backoff returns the wait before init attempt n. Linear, the web client
// config endpoint tends to recover within a few seconds.
func Backoff(attempt int) time.Duration {
	return time.Duration(attempt) * 2 * time.Second
}

// YTMusic drives the unofficial YouTube Music web API. The API key comes
// from scraping the web app config, which flakes, so the handle is set up
// lazily with retries and thrown away after a failed search.
type YTMusic struct {
	BaseURL   string
	RateLimit time.Duration

	// Sleep is swappable for tests. Defaults to time.Sleep.
	Sleep func(time.Duration)

	initOnce   sync.Once
	HTTPClient *http.Client

	mu     sync.Mutex
	apiKey string
}

func (y *YTMusic) Name() string { return "YTMusic" }

func (y *YTMusic) init() {
	y.initOnce.Do(func() {
		if y.BaseURL == "" {
			y.BaseURL = ytMusicBaseURL
		}
		if y.Sleep == nil {
			y.Sleep = time.Sleep
		}
		y.HTTPClient = clientutil.WrapClient(y.HTTPClient, clientutil.Chain(
			clientutil.WithRateLimit(y.RateLimit),
		))
	})
}

func (y *YTMusic) key(ctx context.Context) (string, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.apiKey != "" {
		return y.apiKey, nil
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		key, err := y.scrapeKey(ctx)
		if err == nil {
			y.apiKey = key
			return key, nil
		}
		lastErr = err
		if attempt < 3 {
			y.Sleep(Backoff(attempt))
		}
	}
	return "", fmt.Errorf("init client: %w", lastErr)
}

func (y *YTMusic) reset() {
	y.mu.Lock()
	y.apiKey = ""
	y.mu.Unlock()
}

func (y *YTMusic) scrapeKey(ctx context.Context) (string, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, y.BaseURL, nil)
	resp, err := y.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("req app page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("req app page: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read app page: %w", err)
	}
	m := ytMusicKeyExpr.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("no api key in app page")
	}
	return string(m[1]), nil
}

func (y *YTMusic) search(ctx context.Context, query string) (map[string]any, error) {
	y.init()

	key, err := y.key(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"context": map[string]any{
			"client": map[string]any{
				"clientName":    "WEB_REMIX",
				"clientVersion": "1.20240101.00.00",
			},
		},
		"query":  query,
		"params": ytMusicSongParams,
	}
	body, _ := json.Marshal(payload)

	url := fmt.Sprintf("%s/youtubei/v1/search?key=%s&prettyPrint=false", y.BaseURL, key)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("req search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("req search: status %d", resp.StatusCode)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

func (y *YTMusic) firstItem(ctx context.Context, query string) (map[string]any, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		result, err := y.search(ctx, query)
		if err != nil {
			lastErr = err
			y.reset()
			continue
		}
		item := findKey(result, "musicResponsiveListItemRenderer")
		if item == nil {
			return nil, ErrNotFound
		}
		return item, nil
	}
	return nil, lastErr
}

func (y *YTMusic) SearchTrack(ctx context.Context, query Query) (*Track, error) {
	item, err := y.firstItem(ctx, query.Raw)
	if err != nil {
		return nil, err
	}

	cols := columnRuns(item)
	if len(cols) == 0 || len(cols[0]) == 0 {
		return nil, ErrNotFound
	}
	track := &Track{Title: cols[0][0]}
	// the second column interleaves artist, album and duration with "•" runs
	if len(cols) > 1 && len(cols[1]) > 0 {
		track.Artist = cols[1][0]
		if len(cols[1]) > 2 {
			track.Album = cols[1][2]
		}
	}
	if track.Artist == "" || track.Title == "" {
		return nil, ErrNotFound
	}
	return track, nil
}

func (y *YTMusic) SearchCover(ctx context.Context, artist, title string) (*Cover, error) {
	item, err := y.firstItem(ctx, artist+" "+title)
	if err != nil {
		return nil, err
	}

	thumbs, _ := findKey(item, "musicThumbnailRenderer")["thumbnail"].(map[string]any)
	urls, _ := thumbs["thumbnails"].([]any)
	if len(urls) == 0 {
		return nil, ErrNotFound
	}
	// thumbnails are ordered smallest first
	last, _ := urls[len(urls)-1].(map[string]any)
	u, _ := last["url"].(string)
	if u == "" {
		return nil, ErrNotFound
	}
	return fetchImage(ctx, y.HTTPClient, u)
}

// findKey walks arbitrary decoded JSON depth-first for the first object
// stored under key.
func findKey(v any, key string) map[string]any {
	switch v := v.(type) {
	case map[string]any:
		if m, ok := v[key].(map[string]any); ok {
			return m
		}
		for _, child := range v {
			if m := findKey(child, key); m != nil {
				return m
			}
		}
	case []any:
		for _, child := range v {
			if m := findKey(child, key); m != nil {
				return m
			}
		}
	}
	return nil
}

func columnRuns(item map[string]any) [][]string {
	cols, _ := item["flexColumns"].([]any)
	var out [][]string
	for _, c := range cols {
		renderer := findKey(c, "musicResponsiveListItemFlexColumnRenderer")
		text, _ := renderer["text"].(map[string]any)
		runs, _ := text["runs"].([]any)
		var col []string
		for _, r := range runs {
			rm, _ := r.(map[string]any)
			if s, ok := rm["text"].(string); ok {
				col = append(col, s)
			}
		}
		out = append(out, col)
	}
	return out
}
