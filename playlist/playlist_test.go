package playlist_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.roriz.xyz/retag/playlist"
	"go.roriz.xyz/retag/tags"
)

func writeTrack(t *testing.T, dir, name string, fields tags.Fields) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("\xff\xfbnot really mpeg data"), 0o644))
	require.NoError(t, tags.WriteFields(path, fields, tags.AllFields))
	return path
}

func TestCollect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTrack(t, dir, "a.mp3", tags.Fields{Artist: "A", Title: "One", Album: "First"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeTrack(t, sub, "b.mp3", tags.Fields{Artist: "B", Title: "Two"})

	entries, err := playlist.Collect(dir, playlist.Options{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].Artist)

	entries, err = playlist.Collect(dir, playlist.Options{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriteGroupsAndLabels(t *testing.T) {
	t.Parallel()

	entries := []playlist.Entry{
		{Path: "/music/untagged file.mp3"},
		{Path: "/music/b.mp3", Artist: "B", Title: "Two", Album: "Album 10"},
		{Path: "/music/a.mp3", Artist: "A", Title: "One", Album: "Album 2"},
	}

	var out strings.Builder
	require.NoError(t, playlist.Write(&out, "/music/list.m3u", entries, playlist.Options{}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "#EXTM3U", lines[0])

	// natural album order, then Singles last
	assert.Equal(t, []string{
		"#EXTALB:Album 2",
		"#EXTINF:-1,A - One",
		"/music/a.mp3",
		"#EXTALB:Album 10",
		"#EXTINF:-1,B - Two",
		"/music/b.mp3",
		"#EXTALB:Singles",
		"#EXTINF:-1,untagged file",
		"/music/untagged file.mp3",
	}, lines[1:])
}

func TestWriteRelativePaths(t *testing.T) {
	t.Parallel()

	entries := []playlist.Entry{
		{Path: "/music/albums/a.mp3", Artist: "A", Title: "One"},
	}

	var out strings.Builder
	require.NoError(t, playlist.Write(&out, "/music/list.m3u", entries, playlist.Options{RelativePaths: true}))
	assert.Contains(t, out.String(), "\nalbums/a.mp3\n")
}

func TestWriteSortsNaturally(t *testing.T) {
	t.Parallel()

	entries := []playlist.Entry{
		{Path: "/m/10 ten.mp3", Artist: "A", Title: "Ten", Album: "X"},
		{Path: "/m/2 two.mp3", Artist: "A", Title: "Two", Album: "X"},
	}

	var out strings.Builder
	require.NoError(t, playlist.Write(&out, "/m/list.m3u", entries, playlist.Options{Sort: true}))
	assert.Less(t,
		strings.Index(out.String(), "2 two.mp3"),
		strings.Index(out.String(), "10 ten.mp3"))
}
