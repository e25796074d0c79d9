// Package searchcache persists source lookups in a local SQLite database,
// so re-running the tool over the same folder doesn't hammer the providers
// again.
package searchcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"go.roriz.xyz/retag/sources"
)

const schema = `
create table if not exists lookups (
	source text not null,
	query  text not null,
	artist text not null,
	title  text not null,
	album  text not null,
	primary key (source, query)
);`

type Cache struct {
	db *sql.DB
}

func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the cached hit for a source and query, or nil when the pair
// was never seen.
func (c *Cache) Get(ctx context.Context, source, query string) (*sources.Track, error) {
	var track sources.Track
	err := c.db.QueryRowContext(ctx,
		`select artist, title, album from lookups where source = ? and query = ?`,
		source, query).Scan(&track.Artist, &track.Title, &track.Album)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query lookup: %w", err)
	}
	return &track, nil
}

func (c *Cache) Put(ctx context.Context, source, query string, track *sources.Track) error {
	_, err := c.db.ExecContext(ctx, `
		insert into lookups (source, query, artist, title, album)
		values (?, ?, ?, ?, ?)
		on conflict (source, query) do update
		set artist = excluded.artist, title = excluded.title, album = excluded.album`,
		source, query, track.Artist, track.Title, track.Album)
	if err != nil {
		return fmt.Errorf("upsert lookup: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
