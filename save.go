package retag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"go.roriz.xyz/retag/filename"
	"go.roriz.xyz/retag/fileutil"
	"go.roriz.xyz/retag/tags"
)

type SaveOptions struct {
	// DestDir moves files somewhere else on save. Empty means rename in
	// place.
	DestDir string
	DryRun  bool
	Config  Config
}

// Save renames each settled record to its proposed filename and writes its
// tags. One bad file doesn't sink the batch, its error is reported at the
// end and the rest carry on.
func Save(ctx context.Context, records []*Record, opts SaveOptions) error {
	var errs []error
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if rec.Status == StatusPending || rec.Status == StatusError {
			continue
		}
		if err := saveRecord(rec, opts); err != nil {
			rec.Status = StatusError
			rec.Message = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", rec.Path, err))
		}
	}
	return errors.Join(errs...)
}

func saveRecord(rec *Record, opts SaveOptions) error {
	fields := tags.Fields{
		Artist: rec.Artist,
		Title:  rec.Title,
		Album:  rec.Album,
		Year:   rec.Year,
		Track:  rec.Track,
	}
	if fields.Track == "" && rec.Index > 0 {
		fields.Track = strconv.Itoa(rec.Index)
	}
	if opts.Config.Fields&tags.AlbumArtist != 0 {
		fields.AlbumArtist = tags.DetermineAlbumArtist(fields.Artist, fields.Album)
	}

	// tag text is always transliterated on write, the flag covers the
	// filename only
	proposed := rec.ProposedName
	if opts.Config.ASCII {
		proposed = tags.Transliterate(proposed)
	}

	dest := filepath.Join(destDir(rec, opts), filename.Sanitize(proposed)+".mp3")

	if opts.DryRun {
		slog.Info("dry run", "from", rec.Path, "to", dest, "status", rec.Status)
		return nil
	}

	if dest != rec.Path {
		if _, err := os.Stat(dest); err == nil {
			slog.Warn("rename target exists, keeping original name", "from", rec.Path, "to", dest)
		} else {
			if err := moveFile(rec.Path, dest); err != nil {
				return fmt.Errorf("rename: %w", err)
			}
			rec.Path = dest
		}
	}

	if err := tags.WriteFields(rec.Path, fields, opts.Config.Fields); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}

	if rec.Cover != nil {
		hasCover, err := tags.HasCover(rec.Path)
		if err != nil {
			return fmt.Errorf("check cover: %w", err)
		}
		if !hasCover || opts.Config.ForceCover {
			if err := tags.EmbedCover(rec.Path, rec.Cover.Image, rec.Cover.Format); err != nil {
				return fmt.Errorf("embed cover: %w", err)
			}
		}
	}
	return nil
}

func destDir(rec *Record, opts SaveOptions) string {
	if opts.DestDir != "" {
		return opts.DestDir
	}
	return filepath.Dir(rec.Path)
}

func moveFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	// rename fails across filesystems, fall back to copy and delete
	if err := fileutil.CopyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}
