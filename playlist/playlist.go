// Package playlist builds extended M3U playlists from tagged folders.
package playlist

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"go.roriz.xyz/retag/fileutil"
	"go.roriz.xyz/retag/tags"
	"go.senan.xyz/natcmp"
)

// SinglesGroup labels entries with no album tag. It sorts after every real
// album in the playlist.
const SinglesGroup = "Singles"

type Entry struct {
	Path   string
	Artist string
	Title  string
	Album  string
}

type Options struct {
	Recursive bool
	// Sort orders entries naturally within each album, so "Track 2" comes
	// before "Track 10".
	Sort bool
	// RelativePaths writes paths relative to the playlist file instead of
	// absolute ones, which keeps the playlist valid on removable drives.
	RelativePaths bool
}

// Collect gathers the MP3s under dir with whatever tags they carry. Files
// with unreadable tags still make the playlist, labelled by filename only.
func Collect(dir string, opts Options) ([]Entry, error) {
	paths, err := fileutil.WalkAudio(dir, ".mp3", opts.Recursive)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		entry := Entry{Path: path}
		if fields, err := tags.ReadFields(path); err == nil {
			entry.Artist = fields.Artist
			entry.Title = fields.Title
			entry.Album = fields.Album
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (e Entry) label() string {
	if e.Artist != "" && e.Title != "" {
		return fmt.Sprintf("%s - %s", e.Artist, e.Title)
	}
	return strings.TrimSuffix(filepath.Base(e.Path), filepath.Ext(e.Path))
}

func (e Entry) group() string {
	if e.Album == "" {
		return SinglesGroup
	}
	return e.Album
}

// Write renders entries as an extended M3U, grouped by album with loose
// tracks last under the Singles group.
func Write(w io.Writer, playlistPath string, entries []Entry, opts Options) error {
	groups := map[string][]Entry{}
	for _, entry := range entries {
		groups[entry.group()] = append(groups[entry.group()], entry)
	}

	albums := make([]string, 0, len(groups))
	for album := range groups {
		if album != SinglesGroup {
			albums = append(albums, album)
		}
	}
	sort.Slice(albums, func(i, j int) bool { return natcmp.Compare(albums[i], albums[j]) < 0 })
	if _, ok := groups[SinglesGroup]; ok {
		albums = append(albums, SinglesGroup)
	}

	if _, err := fmt.Fprintln(w, "#EXTM3U"); err != nil {
		return err
	}
	for _, album := range albums {
		group := groups[album]
		if opts.Sort {
			sort.Slice(group, func(i, j int) bool {
				return natcmp.Compare(filepath.Base(group[i].Path), filepath.Base(group[j].Path)) < 0
			})
		}
		for _, entry := range group {
			path, err := entryPath(playlistPath, entry, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "#EXTALB:%s\n", album)
			fmt.Fprintf(w, "#EXTINF:-1,%s\n", entry.label())
			fmt.Fprintln(w, path)
		}
	}
	return nil
}

func entryPath(playlistPath string, entry Entry, opts Options) (string, error) {
	if !opts.RelativePaths {
		return filepath.Abs(entry.Path)
	}
	rel, err := filepath.Rel(filepath.Dir(playlistPath), entry.Path)
	if err != nil {
		return "", fmt.Errorf("relativize %q: %w", entry.Path, err)
	}
	return filepath.ToSlash(rel), nil
}
