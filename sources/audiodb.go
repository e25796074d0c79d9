package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.roriz.xyz/retag/clientutil"
)

const audioDBBaseURL = "https://theaudiodb.com/api/v1/json/2"

// AudioDB searches TheAudioDB. Its track search takes separate artist and
// track parameters, so queries without a pre-split pair miss outright.
type AudioDB struct {
	BaseURL   string
	RateLimit time.Duration

	initOnce   sync.Once
	HTTPClient *http.Client
}

func (a *AudioDB) Name() string { return "TheAudioDB" }

func (a *AudioDB) init() {
	a.initOnce.Do(func() {
		if a.BaseURL == "" {
			a.BaseURL = audioDBBaseURL
		}
		a.HTTPClient = clientutil.WrapClient(a.HTTPClient, clientutil.Chain(
			clientutil.WithCache(),
			clientutil.WithRateLimit(a.RateLimit),
		))
	})
}

type audioDBTrack struct {
	Artist  string `json:"strArtist"`
	Track   string `json:"strTrack"`
	Album   string `json:"strAlbum"`
	AlbumID string `json:"idAlbum"`
}

func (a *AudioDB) searchTrack(ctx context.Context, artist, title string) (*audioDBTrack, error) {
	a.init()

	u, _ := url.Parse(a.BaseURL)
	u = u.JoinPath("searchtrack.php")
	q := u.Query()
	q.Set("s", artist)
	q.Set("t", title)
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("req search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("req search: status %d", resp.StatusCode)
	}

	var result struct {
		Track []audioDBTrack `json:"track"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Track) == 0 {
		return nil, ErrNotFound
	}
	return &result.Track[0], nil
}

func (a *AudioDB) SearchTrack(ctx context.Context, query Query) (*Track, error) {
	if query.Artist == "" || query.Title == "" {
		return nil, ErrNotFound
	}
	track, err := a.searchTrack(ctx, query.Artist, query.Title)
	if err != nil {
		return nil, err
	}
	if track.Artist == "" || track.Track == "" {
		return nil, ErrNotFound
	}
	return &Track{Artist: track.Artist, Title: track.Track, Album: track.Album}, nil
}

func (a *AudioDB) SearchCover(ctx context.Context, artist, title string) (*Cover, error) {
	track, err := a.searchTrack(ctx, artist, title)
	if err != nil {
		return nil, err
	}
	if track.AlbumID == "" {
		return nil, ErrNotFound
	}

	u, _ := url.Parse(a.BaseURL)
	u = u.JoinPath("album.php")
	q := u.Query()
	q.Set("m", track.AlbumID)
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("req album: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("req album: status %d", resp.StatusCode)
	}

	var result struct {
		Album []struct {
			Thumb string `json:"strAlbumThumb"`
		} `json:"album"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Album) == 0 || result.Album[0].Thumb == "" {
		return nil, ErrNotFound
	}
	return fetchImage(ctx, a.HTTPClient, result.Album[0].Thumb)
}
