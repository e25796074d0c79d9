// Package retagflag carries the flag definitions shared by the binaries in
// cmd. Flags can also come from the environment or a config file.
package retagflag

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.senan.xyz/flagconf"

	"go.roriz.xyz/retag"
	"go.roriz.xyz/retag/notifications"
	"go.roriz.xyz/retag/sources"
	"go.roriz.xyz/retag/tags"
)

func Parse() {
	userConfig, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}

	defaultConfigPath := filepath.Join(userConfig, retag.Name, "config")
	configPath := flag.String("config-path", defaultConfigPath, "Path to config file")

	printVersion := flag.Bool("version", false, "Print the version and exit")
	printConfig := flag.Bool("config", false, "Print the parsed config and exit")

	flag.TextVar(&logLevel, "log-level", &logLevel, "Set the logging level")

	flag.Parse()
	flagconf.ReadEnvPrefix = func(_ *flag.FlagSet) string { return retag.Name }
	flagconf.ParseEnv()
	flagconf.ParseConfig(*configPath)

	if *printVersion {
		fmt.Printf("%s %s\n", flag.CommandLine.Name(), retag.Version)
		os.Exit(0)
	}
	if *printConfig {
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("%-16s %s\n", f.Name, f.Value)
		})
		os.Exit(0)
	}
}

func Config() *retag.Config {
	var cfg retag.Config

	flag.IntVar(&cfg.MatchThreshold, "match-threshold", 80, "Reject source hits scoring below this against the filename, 0-100 (0 to accept all)")
	flag.BoolVar(&cfg.Capitalize, "capitalize", true, "Apply smart title case to artist and title")
	flag.BoolVar(&cfg.ForceCover, "force-cover", false, "Replace covers even when one is already embedded")
	flag.BoolVar(&cfg.ASCII, "ascii", false, "Transliterate tags and filenames to ASCII")

	cfg.Fields = tags.Artist | tags.Title | tags.Album | tags.AlbumArtist
	flag.Var(&fieldsParser{&cfg.Fields}, "fields", "Comma separated tag fields to write, disabled fields are scrubbed (artist,title,album,album-artist,year,track)")

	return &cfg
}

// Sources bundles the provider clients with their enable flags. Build order
// is fixed, flags only switch providers off.
type Sources struct {
	deezer  sources.Deezer
	audioDB sources.AudioDB
	ytMusic sources.YTMusic
	google  sources.Google

	useDeezer  bool
	useAudioDB bool
	useYTMusic bool

	coverDeezer  bool
	coverAudioDB bool
	coverYTMusic bool
	coverGoogle  bool
}

func SourceFlags() *Sources {
	var s Sources

	s.deezer.HTTPClient = http.DefaultClient
	flag.StringVar(&s.deezer.BaseURL, "deezer-base-url", "", "Deezer API base URL (empty for the default)")
	flag.DurationVar(&s.deezer.RateLimit, "deezer-rate-limit", 500*time.Millisecond, "Deezer rate limit duration")
	flag.BoolVar(&s.useDeezer, "source-deezer", true, "Search Deezer for track metadata")
	flag.BoolVar(&s.coverDeezer, "cover-deezer", true, "Search Deezer for cover art")

	s.audioDB.HTTPClient = http.DefaultClient
	flag.StringVar(&s.audioDB.BaseURL, "audiodb-base-url", "", "TheAudioDB API base URL (empty for the default)")
	flag.DurationVar(&s.audioDB.RateLimit, "audiodb-rate-limit", 500*time.Millisecond, "TheAudioDB rate limit duration")
	flag.BoolVar(&s.useAudioDB, "source-audiodb", true, "Search TheAudioDB for track metadata")
	flag.BoolVar(&s.coverAudioDB, "cover-audiodb", true, "Search TheAudioDB for cover art")

	s.ytMusic.HTTPClient = http.DefaultClient
	flag.StringVar(&s.ytMusic.BaseURL, "ytmusic-base-url", "", "YouTube Music base URL (empty for the default)")
	flag.DurationVar(&s.ytMusic.RateLimit, "ytmusic-rate-limit", time.Second, "YouTube Music rate limit duration")
	flag.BoolVar(&s.useYTMusic, "source-ytmusic", true, "Search YouTube Music for track metadata")
	flag.BoolVar(&s.coverYTMusic, "cover-ytmusic", true, "Search YouTube Music for cover art")

	flag.BoolVar(&s.coverGoogle, "cover-google", true, "Search Google for cover art")

	return &s
}

func (s *Sources) TrackSources() []sources.TrackSource {
	var srcs []sources.TrackSource
	if s.useDeezer {
		srcs = append(srcs, &s.deezer)
	}
	if s.useAudioDB {
		srcs = append(srcs, &s.audioDB)
	}
	if s.useYTMusic {
		srcs = append(srcs, &s.ytMusic)
	}
	return srcs
}

func (s *Sources) CoverSources() []sources.CoverSource {
	var srcs []sources.CoverSource
	if s.coverDeezer {
		srcs = append(srcs, &s.deezer)
	}
	if s.coverAudioDB {
		srcs = append(srcs, &s.audioDB)
	}
	if s.coverYTMusic {
		srcs = append(srcs, &s.ytMusic)
	}
	if s.coverGoogle {
		srcs = append(srcs, &s.google)
	}
	return srcs
}

func Notifications() *notifications.Notifications {
	var n notifications.Notifications
	flag.Var(&notificationsParser{&n}, "notification-uri", "Add a shoutrrr notification URI for an event (stackable)")
	return &n
}
