package index

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

// Sync walks the content tree and brings the index up to date:
//   - new/changed documents are parsed and upserted
//   - documents removed from disk are deleted from the index
//
// A document that fails to parse is logged and skipped; it never stops the
// rest of the sync.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("", ".md")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			level := slog.LevelWarn
			if errors.Is(err, parser.ErrMalformedFrontMatter) {
				// Author error, not an engine failure.
				level = slog.LevelInfo
			}
			logger.Log(context.Background(), level, "sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses data and upserts it into the DB.
func indexFile(db *DB, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	row := DocumentRow{
		Path:       path,
		Title:      res.Title,
		Date:       res.Date,
		Categories: res.Categories,
		Tags:       res.Tags,
		Checksum:   checksum.Sum(data),
		UpdatedAt:  time.Now(),
	}
	return db.UpsertDocument(row, res.Body)
}
