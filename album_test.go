package retag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.roriz.xyz/retag"
)

func TestNormalizeAlbum(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "greatest hits", retag.NormalizeAlbum("Greatest Hits"))
	assert.Equal(t, "greatest hits", retag.NormalizeAlbum("Greatest Hits (Deluxe)"))
	assert.Equal(t, "greatest hits", retag.NormalizeAlbum("greatest hits deluxe edition"))
	assert.Equal(t, "greatest hits", retag.NormalizeAlbum("Greatest Hits - 2011"))
	assert.Equal(t, "greatest hits", retag.NormalizeAlbum("Greatest Hits [Remastered]"))
	assert.Equal(t, "album", retag.NormalizeAlbum("Album Special Edition"))
	assert.Equal(t, "", retag.NormalizeAlbum(""))
	assert.Equal(t, "", retag.NormalizeAlbum("!!!"))
}

func albumRecords(albums ...string) []*retag.Record {
	records := make([]*retag.Record, len(albums))
	for i, album := range albums {
		records[i] = &retag.Record{Index: i, Album: album}
	}
	return records
}

func TestDetectAlbumGroups(t *testing.T) {
	t.Parallel()

	records := albumRecords(
		"Greatest Hits",
		"greatest hits (2011)",
		"Other Album",
		"Greatest Hits",
		"",
	)

	groups := retag.DetectAlbumGroups(records)
	require.Len(t, groups, 1)
	assert.Equal(t, "greatest hits", groups[0].Key)
	assert.Equal(t, []string{"Greatest Hits", "greatest hits (2011)"}, groups[0].Originals)
	assert.Equal(t, "greatest hits (2011)", groups[0].Suggested)
	assert.Equal(t, []int{0, 1, 3}, groups[0].Indices)
}

func TestDetectAlbumGroupsWhitespaceDistinct(t *testing.T) {
	t.Parallel()

	// trailing whitespace makes originals distinct even though the key matches
	groups := retag.DetectAlbumGroups(albumRecords("Album", "Album "))
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Originals, 2)
	assert.Equal(t, "Album ", groups[0].Suggested)
}

func TestDetectAlbumGroupsConsistentSpelling(t *testing.T) {
	t.Parallel()

	groups := retag.DetectAlbumGroups(albumRecords("Album", "Album", "Album"))
	assert.Empty(t, groups)
}

func TestApplyAlbumCorrection(t *testing.T) {
	t.Parallel()

	records := albumRecords("Greatest Hits", "greatest hits (2011)", "Other Album")
	groups := retag.DetectAlbumGroups(records)
	require.Len(t, groups, 1)

	retag.ApplyAlbumCorrection(records, groups[0], "Greatest Hits (2011)")
	assert.Equal(t, "Greatest Hits (2011)", records[0].Album)
	assert.Equal(t, "Greatest Hits (2011)", records[1].Album)
	assert.Equal(t, "Other Album", records[2].Album)
}
