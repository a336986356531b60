package index

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path       string
	Title      string
	Date       time.Time
	Categories []string
	Tags       []string
	Checksum   string
	UpdatedAt  time.Time
}

// SearchResult represents one full-text search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// NameCount is an aggregated tag or category with its document count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// sortColumns whitelists the user-facing sort keys.
var sortColumns = map[string]string{
	"":           "date DESC, path",
	"date":       "date DESC, path",
	"title":      "title COLLATE NOCASE, path",
	"path":       "path",
	"updated_at": "updated_at DESC, path",
}

// UpsertDocument inserts or replaces a document and its FTS entry within a
// transaction.
func (db *DB) UpsertDocument(d DocumentRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(d.Tags)
	catsJSON, _ := json.Marshal(d.Categories)

	// Upsert documents table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO documents (path, title, date, categories, tags, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			date       = excluded.date,
			categories = excluded.categories,
			tags       = excluded.tags,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, d.Path, d.Title, nullableTime(d.Date), string(catsJSON), string(tagsJSON), d.Checksum, body, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, d.Path, d.Title, body, append(d.Tags, d.Categories...)); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteDocument removes a document and its FTS entry.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string if
// not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetDocument returns a single indexed row, or nil if absent.
func (db *DB) GetDocument(path string) (*DocumentRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, title, date, categories, tags, checksum, updated_at
		FROM documents WHERE path = ?
	`, path)
	d, err := scanDocument(row)
	if err != nil {
		return nil, nil //nolint:nilerr // absent row, not an index failure
	}
	return d, nil
}

// ListDocuments returns a page of documents with optional tag and category
// filters. It also returns the total count matching the filters.
func (db *DB) ListDocuments(limit, offset int, tag, category, sortKey string) ([]DocumentRow, int, error) {
	order, ok := sortColumns[sortKey]
	if !ok {
		return nil, 0, fmt.Errorf("index: unknown sort %q", sortKey)
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := "1=1"
	var args []any
	if tag != "" {
		where += ` AND tags LIKE ?`
		args = append(args, jsonMemberPattern(tag))
	}
	if category != "" {
		where += ` AND categories LIKE ?`
		args = append(args, jsonMemberPattern(category))
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	query := `
		SELECT path, title, date, categories, tags, checksum, updated_at
		FROM documents WHERE ` + where + `
		ORDER BY ` + order + `
		LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

// AllPaths returns every indexed document path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns path -> checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// TagCounts aggregates tags across all documents, most used first.
func (db *DB) TagCounts() ([]NameCount, error) {
	return db.jsonColumnCounts("tags")
}

// CategoryCounts aggregates categories across all documents, most used first.
func (db *DB) CategoryCounts() ([]NameCount, error) {
	return db.jsonColumnCounts("categories")
}

func (db *DB) jsonColumnCounts(column string) ([]NameCount, error) {
	rows, err := db.conn.Query(`SELECT ` + column + ` FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: aggregate %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var names []string
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			continue
		}
		for _, n := range names {
			counts[n]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (*DocumentRow, error) {
	var (
		d        DocumentRow
		date     *time.Time
		catsJSON string
		tagsJSON string
	)
	if err := r.Scan(&d.Path, &d.Title, &date, &catsJSON, &tagsJSON, &d.Checksum, &d.UpdatedAt); err != nil {
		return nil, fmt.Errorf("index: scan document: %w", err)
	}
	if date != nil {
		d.Date = *date
	}
	_ = json.Unmarshal([]byte(catsJSON), &d.Categories)
	_ = json.Unmarshal([]byte(tagsJSON), &d.Tags)
	return &d, nil
}

// jsonMemberPattern builds a LIKE pattern that matches a string element in a
// JSON array column. Quotes in the needle are stripped; they cannot appear in
// a JSON-encoded member boundary anyway.
func jsonMemberPattern(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	return `%"` + name + `"%`
}

// nullableTime maps the zero time to NULL so undated documents sort last.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
