package retag

import (
	"regexp"
	"strings"
)

var (
	albumStripExpr     = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	albumSpaceExpr     = regexp.MustCompile(`\s+`)
	albumQualifierExpr = regexp.MustCompile(`(?i)[\s-]+(\d{4}|deluxe|extended|remaster(?:ed)?|special)(\s+(edition|version))?$`)
)

// NormalizeAlbum reduces an album title to a comparison key so that
// "Album (Deluxe)" and "album deluxe edition 2011" group together.
func NormalizeAlbum(album string) string {
	album = albumStripExpr.ReplaceAllString(album, " ")
	album = albumSpaceExpr.ReplaceAllString(album, " ")
	album = strings.TrimSpace(album)
	for {
		stripped := albumQualifierExpr.ReplaceAllString(album, "")
		if stripped == album {
			break
		}
		album = stripped
	}
	return strings.ToLower(strings.TrimSpace(album))
}

// AlbumGroup collects records whose album titles normalize to the same key
// but differ in their original spelling.
type AlbumGroup struct {
	Key       string
	Originals []string
	Suggested string
	Indices   []int
}

// DetectAlbumGroups flags album titles that look like the same release
// spelled differently. Only groups with at least two distinct originals are
// returned, a consistently spelled album needs no correction. The longest
// original is suggested as canonical since it usually carries the most
// information.
func DetectAlbumGroups(records []*Record) []AlbumGroup {
	byKey := map[string]*AlbumGroup{}
	var order []string

	for _, rec := range records {
		if rec.Album == "" {
			continue
		}
		key := NormalizeAlbum(rec.Album)
		if key == "" {
			continue
		}
		group, ok := byKey[key]
		if !ok {
			group = &AlbumGroup{Key: key}
			byKey[key] = group
			order = append(order, key)
		}
		group.Indices = append(group.Indices, rec.Index)

		var seen bool
		for _, orig := range group.Originals {
			if orig == rec.Album {
				seen = true
				break
			}
		}
		if !seen {
			group.Originals = append(group.Originals, rec.Album)
		}
	}

	var groups []AlbumGroup
	for _, key := range order {
		group := byKey[key]
		if len(group.Originals) < 2 {
			continue
		}
		for _, orig := range group.Originals {
			if len(orig) > len(group.Suggested) {
				group.Suggested = orig
			}
		}
		groups = append(groups, *group)
	}
	return groups
}

// ApplyAlbumCorrection rewrites the album title on every record in the
// group.
func ApplyAlbumCorrection(records []*Record, group AlbumGroup, corrected string) {
	byIndex := map[int]struct{}{}
	for _, i := range group.Indices {
		byIndex[i] = struct{}{}
	}
	for _, rec := range records {
		if _, ok := byIndex[rec.Index]; ok {
			rec.Album = corrected
		}
	}
}
