// Package tags reads and writes ID3v2.3 frames. Tags are written with
// UTF-16 text encoding, which is what the hardware decks and car stereos
// this tool feeds actually render correctly.
package tags

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/nfnt/resize"
	"github.com/rainycape/unidecode"
)

type Field uint8

const (
	Artist Field = 1 << iota
	Title
	Album
	AlbumArtist
	Year
	Track
)

const AllFields = Artist | Title | Album | AlbumArtist | Year | Track

type Fields struct {
	Artist      string
	Title       string
	Album       string
	AlbumArtist string
	Year        string
	Track       string
}

var fieldFrames = []struct {
	field Field
	id    string
}{
	{Artist, "TPE1"},
	{Title, "TIT2"},
	{Album, "TALB"},
	{Year, "TYER"},
	{Track, "TRCK"},
}

// legacyFrames are stripped unconditionally. They come from ripping tools
// and store junk that confuses players with small screens.
var legacyFrames = []string{
	"TPE3", "TPE4", "TCOM", "TCON", "TPOS", "TPUB",
	"TCOP", "TENC", "TSSE", "TLAN", "TIPL", "TMCL",
}

func (f Fields) value(field Field) string {
	switch field {
	case Artist:
		return f.Artist
	case Title:
		return f.Title
	case Album:
		return f.Album
	case AlbumArtist:
		return f.AlbumArtist
	case Year:
		return f.Year
	case Track:
		return f.Track
	}
	return ""
}

// WriteFields writes the enabled fields and deletes the frames of disabled
// ones, so that toggling a field off scrubs stale values left by previous
// taggers. An enabled field with no value leaves whatever is already there.
// Text goes through Transliterate on the way in. Legacy frames are always
// removed, and checked again after the save since some do come back when
// the tag is rewritten.
func WriteFields(path string, fields Fields, enabled Field) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tag: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(3)
	tag.SetDefaultEncoding(id3v2.EncodingUTF16)

	for _, ff := range fieldFrames {
		value := fields.value(ff.field)
		switch {
		case enabled&ff.field == 0:
			tag.DeleteFrames(ff.id)
		case value != "":
			tag.AddTextFrame(ff.id, id3v2.EncodingUTF16, Transliterate(value))
		}
	}

	// album artist only makes sense alongside an album
	switch {
	case enabled&Album == 0 || enabled&AlbumArtist == 0:
		tag.DeleteFrames("TPE2")
	case fields.Album != "" && fields.AlbumArtist != "":
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF16, Transliterate(fields.AlbumArtist))
	}

	for _, id := range legacyFrames {
		tag.DeleteFrames(id)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tag: %w", err)
	}
	if err := tag.Close(); err != nil {
		return fmt.Errorf("close tag: %w", err)
	}
	return restripLegacy(path)
}

func restripLegacy(path string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("reopen tag: %w", err)
	}
	defer tag.Close()

	var dirty bool
	for _, id := range legacyFrames {
		if len(tag.GetFrames(id)) > 0 {
			tag.DeleteFrames(id)
			dirty = true
		}
	}
	if !dirty {
		return nil
	}
	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tag: %w", err)
	}
	return nil
}

// ReadFields reads the frames WriteFields cares about. The year frame takes
// whatever date shape the previous tagger left and is reduced to a year.
func ReadFields(path string) (Fields, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Fields{}, fmt.Errorf("open tag: %w", err)
	}
	defer tag.Close()

	f := Fields{
		Artist:      tag.GetTextFrame("TPE1").Text,
		Title:       tag.GetTextFrame("TIT2").Text,
		Album:       tag.GetTextFrame("TALB").Text,
		AlbumArtist: tag.GetTextFrame("TPE2").Text,
		Year:        tag.GetTextFrame("TYER").Text,
		Track:       tag.GetTextFrame("TRCK").Text,
	}
	if f.Year != "" {
		if t, err := dateparse.ParseAny(f.Year); err == nil {
			f.Year = strconv.Itoa(t.Year())
		}
	}
	return f, nil
}

var (
	// CompilationKeywords mark an album title as a compilation, which gets
	// "Various Artists" regardless of the track artist.
	CompilationKeywords = []string{"mix", "compilation", "various", "collection", "hits", "best of"}

	// GenericKeywords mark throwaway album names from folder dumps.
	GenericKeywords = []string{"musicas", "songs", "music", "tracks"}
)

// DetermineAlbumArtist picks a TPE2 value. The bias is towards "Various
// Artists" because most albums passing through here are mixed folders, not
// single-artist releases.
func DetermineAlbumArtist(artist, album string) string {
	const various = "Various Artists"

	album = strings.TrimSpace(album)
	if album == "" {
		return various
	}
	albumLower := strings.ToLower(album)
	for _, kw := range CompilationKeywords {
		if strings.Contains(albumLower, kw) {
			return various
		}
	}
	if artist != "" && strings.Contains(albumLower, strings.ToLower(artist)) {
		return artist
	}
	for _, kw := range GenericKeywords {
		if strings.Contains(albumLower, kw) {
			return various
		}
	}
	return various
}

// Transliterate folds text to ASCII for players that can't render beyond
// latin-1. Text that is already ASCII passes through untouched.
func Transliterate(s string) string {
	for _, r := range s {
		if r > 127 {
			return strings.TrimSpace(unidecode.Unidecode(s))
		}
	}
	return s
}

const coverMaxSize = 1000

// EmbedCover replaces any attached pictures with a single front cover.
// Oversized art is thumbnailed first. PNG sources and images with
// transparency stay PNG, everything else becomes JPEG.
func EmbedCover(path string, img image.Image, format string) error {
	img = resize.Thumbnail(coverMaxSize, coverMaxSize, img, resize.Lanczos3)

	usePNG := format == "png"
	if im, ok := img.(interface{ Opaque() bool }); ok && !im.Opaque() {
		usePNG = true
	}

	var buf bytes.Buffer
	var mime string
	if usePNG {
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		mime = "image/png"
	} else {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
			return fmt.Errorf("encode jpeg: %w", err)
		}
		mime = "image/jpeg"
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tag: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(3)
	tag.DeleteFrames("APIC")
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingISO,
		MimeType:    mime,
		PictureType: id3v2.PTFrontCover,
		Picture:     buf.Bytes(),
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tag: %w", err)
	}
	if err := tag.Close(); err != nil {
		return fmt.Errorf("close tag: %w", err)
	}

	verify, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("reopen tag: %w", err)
	}
	defer verify.Close()
	if n := len(verify.GetFrames("APIC")); n != 1 {
		slog.Warn("cover did not verify after save", "path", path, "frames", n)
	}
	return nil
}

// HasCover reports whether the file already carries an attached picture.
func HasCover(path string) (bool, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return false, fmt.Errorf("open tag: %w", err)
	}
	defer tag.Close()
	return len(tag.GetFrames("APIC")) > 0, nil
}

// Dump lists all frames in a file for inspection, one "ID\tvalue" line per
// frame, sorted by frame ID.
func Dump(path string) ([]string, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("open tag: %w", err)
	}
	defer tag.Close()

	var lines []string
	for id, frames := range tag.AllFrames() {
		for _, frame := range frames {
			switch f := frame.(type) {
			case id3v2.TextFrame:
				lines = append(lines, fmt.Sprintf("%s\t%s", id, f.Text))
			case id3v2.PictureFrame:
				lines = append(lines, fmt.Sprintf("%s\t%s %d bytes", id, f.MimeType, len(f.Picture)))
			default:
				lines = append(lines, fmt.Sprintf("%s\t%v", id, frame))
			}
		}
	}
	sort.Strings(lines)
	return lines, nil
}
