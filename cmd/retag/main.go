package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.senan.xyz/table/table"

	"go.roriz.xyz/retag"
	"go.roriz.xyz/retag/cmd/internal/retagflag"
	"go.roriz.xyz/retag/fileutil"
	"go.roriz.xyz/retag/notifications"
	"go.roriz.xyz/retag/playlist"
	"go.roriz.xyz/retag/searchcache"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  $ %s [<options>] <dir>\n\n", flag.CommandLine.Name())
		fmt.Fprintf(flag.CommandLine.Output(), "options:\n")
		flag.PrintDefaults()
	}
}

var dmp = diffmatchpatch.New()

var cfg = retagflag.Config()
var srcs = retagflag.SourceFlags()
var notifs = retagflag.Notifications()

func main() {
	defer retagflag.ExitError()
	retagflag.DefaultClient()

	var (
		dryRun        = flag.Bool("dry-run", false, "Print changes without touching any files")
		dest          = flag.String("dest", "", "Move saved files into this directory instead of renaming in place")
		recursive     = flag.Bool("recursive", false, "Also process subdirectories")
		cachePath     = flag.String("cache-path", "", "Path to a SQLite cache of past lookups (empty to disable)")
		playlistPath  = flag.String("playlist", "", "Write an M3U playlist here after saving")
		sortPlaylist  = flag.Bool("sort-playlist", true, "Order playlist entries naturally within each album")
		relativePaths = flag.Bool("relative-paths", false, "Write playlist paths relative to the playlist file")
	)

	retagflag.Parse()

	dir := flag.Arg(0)
	if dir == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	paths, err := fileutil.WalkAudio(dir, ".mp3", *recursive)
	if err != nil {
		slog.Error("list files", "err", err)
		return
	}
	if len(paths) == 0 {
		slog.Error("no mp3 files found", "dir", dir)
		return
	}

	pipeline := &retag.Pipeline{
		TrackSources: srcs.TrackSources(),
		CoverSources: srcs.CoverSources(),
	}
	if *cachePath != "" {
		cache, err := searchcache.Open(*cachePath)
		if err != nil {
			slog.Error("open cache", "err", err)
			return
		}
		defer cache.Close()
		pipeline.Cache = cache
	}

	records := retag.LoadRecords(paths)

	proc := &retag.Processor{Pipeline: pipeline}
	if err := proc.Run(ctx, records, *cfg); err != nil {
		notifs.Sendf(ctx, notifications.Error, "processing %s failed: %v", dir, err)
		slog.Error("process", "err", err)
		return
	}

	for _, group := range retag.DetectAlbumGroups(records) {
		slog.Info("unifying album spellings",
			"albums", strings.Join(group.Originals, " / "), "using", group.Suggested)
		retag.ApplyAlbumCorrection(records, group, group.Suggested)
	}

	t := table.NewStringWriter()
	for _, rec := range records {
		fmt.Fprintf(t, "%s\t%s\t%s\n", rec.Status, fmtDiff(rec.OriginalName, rec.ProposedName), rec.Message)
	}
	for _, row := range strings.Split(strings.TrimRight(t.String(), "\n"), "\n") {
		fmt.Println(row)
	}

	if err := retag.Save(ctx, records, retag.SaveOptions{DestDir: *dest, DryRun: *dryRun, Config: *cfg}); err != nil {
		notifs.Sendf(ctx, notifications.Error, "saving %s finished with errors: %v", dir, err)
		slog.Error("save", "err", err)
	} else if !*dryRun {
		notifs.Sendf(ctx, notifications.SaveComplete, "saved %d files in %s", len(records), dir)
	}

	if *playlistPath != "" && !*dryRun {
		if err := writePlaylist(dir, *playlistPath, playlist.Options{
			Recursive:     *recursive,
			Sort:          *sortPlaylist,
			RelativePaths: *relativePaths,
		}); err != nil {
			slog.Error("write playlist", "err", err)
		}
	}

	notifs.Sendf(ctx, notifications.Complete, "processed %d files in %s", len(records), dir)
}

func writePlaylist(dir, path string, opts playlist.Options) error {
	entries, err := playlist.Collect(dir, opts)
	if err != nil {
		return fmt.Errorf("collect entries: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create playlist: %w", err)
	}
	defer f.Close()
	if err := playlist.Write(f, path, entries, opts); err != nil {
		return fmt.Errorf("render playlist: %w", err)
	}
	return f.Close()
}

func fmtDiff(before, after string) string {
	if d := dmp.DiffPrettyText(dmp.DiffMain(before, after, false)); d != "" {
		return d
	}
	return "[empty]"
}
