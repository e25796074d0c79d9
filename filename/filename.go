// Package filename derives a best-guess artist/title pair from the messy
// names that downloaded audio files tend to have.
package filename

import (
	"regexp"
	"strings"
)

// Noise tokens stripped from filenames. Membership is a product decision,
// kept as a var so callers can extend or replace the set.
var Noise = []string{
	"video", "oficial", "official", "clipe", "clip", "videoclip",
	"lyric", "lyrics", "letra", "music", "audio", "mv", "hd", "fullhd",
	"4k", "1080p", "720p", "480p", "live", "aovivo", "cover", "remix",
	"version", "versao", "versão", "explicit", "clean", "acoustic",
	"acustico", "acústico", "instrumental", "karaoke", "radioedit",
	"extended", "remastered", "remasterizado", "deluxe", "bonus",
	"bonustrack", "faixabonus", "dvd",
}

// SmallWords stay lowercase in SmartTitle unless they lead. Mixed EN/PT,
// matching the audience of the playback devices this tool targets.
var SmallWords = map[string]struct{}{
	"de": {}, "do": {}, "da": {}, "dos": {}, "das": {}, "e": {}, "ou": {},
	"com": {}, "sem": {}, "para": {}, "por": {}, "em": {}, "no": {},
	"na": {}, "um": {}, "uma": {}, "o": {}, "a": {}, "os": {}, "as": {},
}

var (
	trackNumExpr  = regexp.MustCompile(`^\d+\.?\s*`)
	bracketsExpr  = regexp.MustCompile(`\s*\([^)]*\)|\s*\[[^\]]*\]|\s*\{[^}]*\}`)
	trailerExpr   = regexp.MustCompile(`\s*\|.*$|\s*#.*$`)
	underscoreRun = regexp.MustCompile(`_+`)
	hyphenRun     = regexp.MustCompile(`-+`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

var noiseExprs []*regexp.Regexp

func init() {
	for _, w := range Noise {
		noiseExprs = append(noiseExprs,
			regexp.MustCompile(`(?i)([ _-]|^)`+regexp.QuoteMeta(w)+`([ _-]|$)`))
	}
}

// Clean strips release/quality noise from a raw filename (without
// extension). Cleaning runs until the name stops changing, so a second pass
// over an already clean name is a no-op.
func Clean(name string) string {
	for {
		cleaned := cleanOnce(name)
		if cleaned == name {
			return cleaned
		}
		name = cleaned
	}
}

func cleanOnce(name string) string {
	name = trackNumExpr.ReplaceAllString(name, "")
	name = bracketsExpr.ReplaceAllString(name, "")
	name = trailerExpr.ReplaceAllString(name, "")

	for _, expr := range noiseExprs {
		for {
			replaced := expr.ReplaceAllString(name, "$1")
			if replaced == name {
				break
			}
			name = replaced
		}
	}

	name = underscoreRun.ReplaceAllString(name, "_")
	name = hyphenRun.ReplaceAllString(name, "-")
	name = spaceRun.ReplaceAllString(name, " ")
	name = strings.Trim(name, "_-. ")
	return strings.TrimSpace(name)
}

var separators = []string{" - ", " – ", " — ", " _ ", " by ", " BY "}

// Split guesses an artist/title pair from a cleaned name. The midpoint
// heuristic only kicks in for names of 4+ words, where splitting in half is
// better than giving up.
func Split(name string) (artist, title string, ok bool) {
	for _, sep := range separators {
		if before, after, found := strings.Cut(name, sep); found {
			before, after = strings.TrimSpace(before), strings.TrimSpace(after)
			if len([]rune(before)) >= 2 && len([]rune(after)) >= 2 {
				return before, after, true
			}
		}
	}

	words := strings.Fields(name)
	if len(words) >= 4 {
		mid := len(words) / 2
		return strings.Join(words[:mid], " "), strings.Join(words[mid:], " "), true
	}
	return "", "", false
}

// SmartTitle capitalises each word, preserving acronyms and keeping small
// words lowercase except in first position.
func SmartTitle(text string) string {
	if text == "" {
		return text
	}
	words := strings.Split(text, " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		if _, small := SmallWords[strings.ToLower(word)]; small && i > 0 {
			words[i] = strings.ToLower(word)
			continue
		}
		if word == strings.ToUpper(word) && strings.ToLower(word) != word {
			continue // acronym
		}
		r := []rune(word)
		words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}

var sanitizeReplacer = strings.NewReplacer(
	"<", "(",
	">", ")",
	":", " -",
	`"`, "'",
	"|", "-",
	"?", "",
	"*", "",
	`\`, "-",
	"/", "-",
)

// Sanitize maps filesystem-illegal characters to safe equivalents rather
// than rejecting the name outright.
func Sanitize(name string) string {
	name = sanitizeReplacer.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	name = strings.TrimRight(name, ". ")
	if name == "" {
		return "untitled"
	}
	return name
}
