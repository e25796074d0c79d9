package tags_test

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.roriz.xyz/retag/tags"
)

func tmpMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.mp3")
	require.NoError(t, os.WriteFile(path, []byte("\xff\xfbnot really mpeg data"), 0o644))
	return path
}

func TestWriteReadFields(t *testing.T) {
	t.Parallel()

	path := tmpMP3(t)
	fields := tags.Fields{
		Artist: "Caetano Veloso",
		Title:  "Alegria, Alegria",
		Album:  "Caetano Veloso",
		Year:   "1968",
		Track:  "2",
	}
	fields.AlbumArtist = "Caetano Veloso"
	require.NoError(t, tags.WriteFields(path, fields, tags.AllFields))

	got, err := tags.ReadFields(path)
	require.NoError(t, err)
	assert.Equal(t, fields, got)
}

func TestWriteFieldsTransliterates(t *testing.T) {
	t.Parallel()

	path := tmpMP3(t)
	fields := tags.Fields{Artist: "Construção", Title: "Águas de Março", Album: "Elis & Tom"}
	require.NoError(t, tags.WriteFields(path, fields, tags.Artist|tags.Title|tags.Album))

	got, err := tags.ReadFields(path)
	require.NoError(t, err)
	assert.Equal(t, "Construcao", got.Artist)
	assert.Equal(t, "Aguas de Marco", got.Title)
	assert.Equal(t, "Elis & Tom", got.Album)
}

func TestEnabledEmptyFieldKeepsExisting(t *testing.T) {
	t.Parallel()

	path := tmpMP3(t)
	require.NoError(t, tags.WriteFields(path, tags.Fields{Artist: "A", Title: "T", Year: "2001"}, tags.AllFields))

	// year still enabled but empty this time, the old value survives
	require.NoError(t, tags.WriteFields(path, tags.Fields{Artist: "A", Title: "T"}, tags.AllFields))

	got, err := tags.ReadFields(path)
	require.NoError(t, err)
	assert.Equal(t, "2001", got.Year)
}

func TestScrubOnDisabledField(t *testing.T) {
	t.Parallel()

	path := tmpMP3(t)
	require.NoError(t, tags.WriteFields(path, tags.Fields{Artist: "A", Title: "T", Year: "2001"}, tags.AllFields))

	// year disabled now, the old TYER should go away
	require.NoError(t, tags.WriteFields(path, tags.Fields{Artist: "A", Title: "T"}, tags.Artist|tags.Title))

	got, err := tags.ReadFields(path)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Artist)
	assert.Empty(t, got.Year)
}

func TestLegacyFramesStripped(t *testing.T) {
	t.Parallel()

	path := tmpMP3(t)
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	tag.SetVersion(3)
	tag.AddTextFrame("TCON", id3v2.EncodingISO, "Rock")
	tag.AddTextFrame("TENC", id3v2.EncodingISO, "LAME 3.100")
	require.NoError(t, tag.Save())
	require.NoError(t, tag.Close())

	require.NoError(t, tags.WriteFields(path, tags.Fields{Artist: "A", Title: "T"}, tags.AllFields))

	tag, err = id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()
	assert.Empty(t, tag.GetFrames("TCON"))
	assert.Empty(t, tag.GetFrames("TENC"))
}

func TestAlbumArtistNeedsAlbum(t *testing.T) {
	t.Parallel()

	path := tmpMP3(t)
	fields := tags.Fields{Artist: "A", Title: "T", AlbumArtist: "Various Artists"}
	require.NoError(t, tags.WriteFields(path, fields, tags.AllFields))

	got, err := tags.ReadFields(path)
	require.NoError(t, err)
	assert.Empty(t, got.AlbumArtist)
}

func TestDetermineAlbumArtist(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Various Artists", tags.DetermineAlbumArtist("A", ""))
	assert.Equal(t, "Various Artists", tags.DetermineAlbumArtist("A", "Summer Mix 2020"))
	assert.Equal(t, "Various Artists", tags.DetermineAlbumArtist("A", "Greatest Hits Collection"))
	assert.Equal(t, "Tim Maia", tags.DetermineAlbumArtist("Tim Maia", "Tim Maia Racional"))
	assert.Equal(t, "Various Artists", tags.DetermineAlbumArtist("A", "Minhas Musicas"))
	assert.Equal(t, "Various Artists", tags.DetermineAlbumArtist("A", "Some Album"))
}

func TestTransliterate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Construcao", tags.Transliterate("Construção"))
	assert.Equal(t, "Aguas de Marco", tags.Transliterate("Águas de Março"))
	assert.Equal(t, "plain ascii", tags.Transliterate("plain ascii"))
	assert.Equal(t, "", tags.Transliterate(""))
}

func TestEmbedCover(t *testing.T) {
	t.Parallel()

	path := tmpMP3(t)
	img := image.NewGray(image.Rect(0, 0, 1400, 900))
	require.NoError(t, tags.EmbedCover(path, img, "jpeg"))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	frames := tag.GetFrames("APIC")
	require.Len(t, frames, 1)
	pic := frames[0].(id3v2.PictureFrame)
	assert.Equal(t, "image/jpeg", pic.MimeType)
	assert.EqualValues(t, id3v2.PTFrontCover, pic.PictureType)
	assert.NotEmpty(t, pic.Picture)
}

func TestEmbedCoverKeepsAlphaAsPNG(t *testing.T) {
	t.Parallel()

	path := tmpMP3(t)
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(0, 0, color.RGBA{R: 255, A: 128})
	require.NoError(t, tags.EmbedCover(path, img, "jpeg"))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	frames := tag.GetFrames("APIC")
	require.Len(t, frames, 1)
	assert.Equal(t, "image/png", frames[0].(id3v2.PictureFrame).MimeType)
}

func TestEmbedCoverReplacesExisting(t *testing.T) {
	t.Parallel()

	path := tmpMP3(t)
	require.NoError(t, tags.EmbedCover(path, image.NewGray(image.Rect(0, 0, 5, 5)), "jpeg"))
	require.NoError(t, tags.EmbedCover(path, image.NewGray(image.Rect(0, 0, 8, 8)), "jpeg"))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()
	assert.Len(t, tag.GetFrames("APIC"), 1)
}
