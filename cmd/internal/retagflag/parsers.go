package retagflag

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strings"

	"go.roriz.xyz/retag/notifications"
	"go.roriz.xyz/retag/tags"
)

var _ flag.Value = (*fieldsParser)(nil)
var _ flag.Value = (*notificationsParser)(nil)

var fieldNames = []struct {
	name  string
	field tags.Field
}{
	{"artist", tags.Artist},
	{"title", tags.Title},
	{"album", tags.Album},
	{"album-artist", tags.AlbumArtist},
	{"year", tags.Year},
	{"track", tags.Track},
}

type fieldsParser struct{ fields *tags.Field }

func (fp *fieldsParser) Set(value string) error {
	var parsed tags.Field
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var found bool
		for _, fn := range fieldNames {
			if fn.name == name {
				parsed |= fn.field
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown field %q", name)
		}
	}
	*fp.fields = parsed
	return nil
}

func (fp fieldsParser) String() string {
	if fp.fields == nil {
		return ""
	}
	var names []string
	for _, fn := range fieldNames {
		if *fp.fields&fn.field != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, ",")
}

type notificationsParser struct{ *notifications.Notifications }

func (n *notificationsParser) Set(value string) error {
	eventsRaw, uri, ok := strings.Cut(value, " ")
	if !ok {
		return fmt.Errorf("invalid notification uri format. expected eg \"ev1,ev2 uri\"")
	}
	var lineErrs []error
	for _, ev := range strings.Split(eventsRaw, ",") {
		ev, uri = strings.TrimSpace(ev), strings.TrimSpace(uri)
		err := n.AddURI(notifications.Event(ev), uri)
		lineErrs = append(lineErrs, err)
	}
	return errors.Join(lineErrs...)
}

func (n notificationsParser) String() string {
	if n.Notifications == nil {
		return ""
	}
	var parts []string
	n.Notifications.IterMappings(func(e notifications.Event, uri string) {
		url, _ := url.Parse(uri)
		parts = append(parts, fmt.Sprintf("%s: %s://%s/...", e, url.Scheme, url.Host))
	})
	return strings.Join(parts, ", ")
}
