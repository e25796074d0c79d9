// Package retag reconciles MP3 metadata from filenames and online sources,
// then writes it back as clean ID3v2.3 tags.
package retag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"go.roriz.xyz/retag/filename"
	"go.roriz.xyz/retag/searchcache"
	"go.roriz.xyz/retag/sources"
	"go.roriz.xyz/retag/tags"
)

type Config struct {
	// MatchThreshold rejects source hits scoring below it, 0-100. Only
	// applies when the filename itself provided a pair to compare against.
	MatchThreshold int

	Capitalize bool
	ForceCover bool
	ASCII      bool

	Fields tags.Field
}

// Pipeline holds the metadata and cover sources in priority order, plus an
// optional persistent cache for past lookups.
type Pipeline struct {
	TrackSources []sources.TrackSource
	CoverSources []sources.CoverSource
	Cache        *searchcache.Cache
}

// Reconcile fills in a record's artist/title pair. Sources are tried in
// order and the first acceptable hit wins. Source failures are absorbed,
// a provider being down just means falling through to the next one.
func (p *Pipeline) Reconcile(ctx context.Context, rec *Record, cfg Config) error {
	cleaned := filename.Clean(rec.OriginalName)
	artist, title, split := filename.Split(cleaned)

	query := sources.Query{Raw: cleaned, Artist: artist, Title: title}

	for _, src := range p.TrackSources {
		if err := ctx.Err(); err != nil {
			return err
		}

		track, err := p.searchTrack(ctx, src, query)
		if errors.Is(err, sources.ErrNotFound) {
			continue
		}
		if err != nil {
			slog.DebugContext(ctx, "source failed", "source", src.Name(), "err", err)
			continue
		}
		if track.Artist == "" || track.Title == "" {
			continue
		}

		if split && cfg.MatchThreshold > 0 {
			if score := matchScore(artist, title, track); score < cfg.MatchThreshold {
				slog.DebugContext(ctx, "source hit below threshold",
					"source", src.Name(), "score", score, "artist", track.Artist, "title", track.Title)
				continue
			}
		}

		rec.SetPair(track.Artist, track.Title)
		if track.Album != "" {
			rec.Album = track.Album
		}
		rec.Status = Status(src.Name())
		p.finish(rec, cfg)
		return nil
	}

	switch {
	case split:
		rec.SetPair(artist, title)
		rec.Status = StatusFilename
	case cleaned != "":
		rec.SetPair("Unknown Artist", cleaned)
		rec.Status = StatusUnknown
	case rec.OriginalName != "":
		rec.SetPair("Unknown Artist", rec.OriginalName)
		rec.Status = StatusUnknown
	default:
		rec.SetPair("Unknown Artist", "untitled")
		rec.Status = StatusUnknown
	}
	p.finish(rec, cfg)
	return nil
}

func (p *Pipeline) finish(rec *Record, cfg Config) {
	if cfg.Capitalize {
		rec.SetPair(filename.SmartTitle(rec.Artist), filename.SmartTitle(rec.Title))
	}
}

func (p *Pipeline) searchTrack(ctx context.Context, src sources.TrackSource, query sources.Query) (*sources.Track, error) {
	if p.Cache != nil {
		if track, err := p.Cache.Get(ctx, src.Name(), query.Raw); err == nil && track != nil {
			return track, nil
		}
	}
	track, err := src.SearchTrack(ctx, query)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		if err := p.Cache.Put(ctx, src.Name(), query.Raw, track); err != nil {
			slog.DebugContext(ctx, "cache put", "err", err)
		}
	}
	return track, nil
}

// ResolveCover finds cover art for an already reconciled record. The first
// source with a usable image wins.
func (p *Pipeline) ResolveCover(ctx context.Context, rec *Record) error {
	if rec.Artist == "" || rec.Title == "" {
		return nil
	}
	for _, src := range p.CoverSources {
		if err := ctx.Err(); err != nil {
			return err
		}
		cover, err := src.SearchCover(ctx, rec.Artist, rec.Title)
		if err != nil {
			if !errors.Is(err, sources.ErrNotFound) && !errors.Is(err, sources.ErrNotImplemented) {
				slog.DebugContext(ctx, "cover source failed", "source", src.Name(), "err", err)
			}
			continue
		}
		rec.Cover = cover
		return nil
	}
	return nil
}

var jaroWinkler = metrics.NewJaroWinkler()

// matchScore compares a source hit against the filename-derived pair,
// scaled to 0-100.
func matchScore(artist, title string, track *sources.Track) int {
	want := strings.ToLower(fmt.Sprintf("%s - %s", artist, title))
	got := strings.ToLower(fmt.Sprintf("%s - %s", track.Artist, track.Title))
	return int(strutil.Similarity(want, got, jaroWinkler) * 100)
}
