// Package history keeps a journal of completed downloads in SQLite. It is
// informational only: deduplication never looks at it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	_ "modernc.org/sqlite"
)

type Record struct {
	ID           int64
	FeedURL      string
	FeedTitle    string
	EntryTitle   string
	GUID         string
	EnclosureURL string
	Path         string
	Size         int64
	DownloadedAt time.Time
}

type Store struct {
	db *sql.DB
}

var columns = []string{"id", "feed_url", "feed_title", "entry_title", "guid", "enclosure_url", "path", "size", "downloaded_at"}

// Open opens (or creates) the database at path and migrates it.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// One writer, one process.
	db.SetMaxOpenConns(1)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("History database ready", "path", path, "version", version, "dirty", dirty)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Add(ctx context.Context, r Record) error {
	if r.DownloadedAt.IsZero() {
		r.DownloadedAt = time.Now().UTC()
	}

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("downloads").
		Cols("feed_url", "feed_title", "entry_title", "guid", "enclosure_url", "path", "size", "downloaded_at").
		Values(r.FeedURL, r.FeedTitle, r.EntryTitle, r.GUID, r.EnclosureURL, r.Path, r.Size, r.DownloadedAt.UnixNano())

	query, args := ib.Build()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to add history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(columns...).
		From("downloads").
		OrderBy("downloaded_at DESC", "id DESC").
		Limit(limit)

	query, args := sb.Build()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var downloadedAt int64
		if err := rows.Scan(&r.ID, &r.FeedURL, &r.FeedTitle, &r.EntryTitle, &r.GUID, &r.EnclosureURL, &r.Path, &r.Size, &downloadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		r.DownloadedAt = time.Unix(0, downloadedAt).UTC()
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return records, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)").From("downloads")

	query, args := sb.Build()
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}
