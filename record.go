package retag

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.roriz.xyz/retag/sources"
	"go.roriz.xyz/retag/tags"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusFilename Status = "Filename"
	StatusUnknown  Status = "Unknown"
	StatusManual   Status = "Manual"
	StatusError    Status = "Error"
)

// Record tracks one file through the pipeline. Status starts at Pending and
// ends at the name of the source that resolved it, or one of the fallback
// statuses above.
type Record struct {
	Index        int // position in the batch, starting at 1
	Path         string
	OriginalName string

	Artist string
	Title  string
	Album  string
	Year   string
	Track  string

	ProposedName string
	Status       Status
	Message      string

	Cover *sources.Cover
}

// SetPair sets the artist/title pair and recomputes the proposed filename
// from it.
func (r *Record) SetPair(artist, title string) {
	r.Artist = strings.TrimSpace(artist)
	r.Title = strings.TrimSpace(title)
	r.ProposedName = fmt.Sprintf("%s - %s", r.Artist, r.Title)
}

// LoadRecords builds records for the given paths, prefilled from whatever
// tags are already present. Unreadable tags are not fatal, the pipeline can
// still work from the filename alone.
func LoadRecords(paths []string) []*Record {
	records := make([]*Record, 0, len(paths))
	for i, path := range paths {
		rec := &Record{
			Index:        i + 1,
			Path:         path,
			OriginalName: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Status:       StatusPending,
		}
		if fields, err := tags.ReadFields(path); err == nil {
			rec.Album = fields.Album
			rec.Year = fields.Year
			rec.Track = fields.Track
		}
		records = append(records, rec)
	}
	return records
}
