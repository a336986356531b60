package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func row(path, title string, date time.Time, tags, cats []string) DocumentRow {
	return DocumentRow{
		Path:       path,
		Title:      title,
		Date:       date,
		Categories: cats,
		Tags:       tags,
		Checksum:   "cs-" + path,
		UpdatedAt:  time.Now(),
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)
	date := time.Date(2014, 4, 8, 0, 0, 0, 0, time.UTC)
	r := row("posts/io.md", "IO and errors", date, []string{"scala", "io"}, []string{"fp"})
	if err := db.UpsertDocument(r, "body text"); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	got, err := db.GetDocument("posts/io.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got == nil {
		t.Fatal("GetDocument returned nil")
	}
	if got.Title != "IO and errors" {
		t.Errorf("title = %q", got.Title)
	}
	if !got.Date.Equal(date) {
		t.Errorf("date = %v, want %v", got.Date, date)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "scala" {
		t.Errorf("tags = %v", got.Tags)
	}

	cs, err := db.GetChecksum("posts/io.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "cs-posts/io.md" {
		t.Errorf("checksum = %q", cs)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("up.md", "Old", time.Time{}, nil, nil), "old body")
	r := row("up.md", "New", time.Time{}, []string{"new"}, nil)
	r.Checksum = "cs-2"
	_ = db.UpsertDocument(r, "new body")

	got, _ := db.GetDocument("up.md")
	if got.Title != "New" || got.Checksum != "cs-2" {
		t.Errorf("row = %+v", got)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("del.md", "Del", time.Time{}, nil, nil), "body")

	if err := db.DeleteDocument("del.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted document still has checksum %q", cs)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListDocuments_DateSortAndFilters(t *testing.T) {
	db := testDB(t)
	d := func(day int) time.Time { return time.Date(2014, 4, day, 0, 0, 0, 0, time.UTC) }
	_ = db.UpsertDocument(row("a.md", "A", d(1), []string{"io"}, []string{"scala"}), "a")
	_ = db.UpsertDocument(row("b.md", "B", d(3), []string{"errors"}, []string{"scala"}), "b")
	_ = db.UpsertDocument(row("c.md", "C", d(2), []string{"io"}, []string{"training"}), "c")

	rows, total, err := db.ListDocuments(10, 0, "", "", "")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("total = %d, rows = %d", total, len(rows))
	}
	// Default sort is newest first.
	if rows[0].Path != "b.md" || rows[2].Path != "a.md" {
		t.Errorf("order = %s, %s, %s", rows[0].Path, rows[1].Path, rows[2].Path)
	}

	rows, total, err = db.ListDocuments(10, 0, "io", "", "")
	if err != nil {
		t.Fatalf("tag filter: %v", err)
	}
	if total != 2 {
		t.Errorf("tag filter total = %d, want 2", total)
	}

	rows, total, err = db.ListDocuments(10, 0, "io", "scala", "")
	if err != nil {
		t.Fatalf("tag+category filter: %v", err)
	}
	if total != 1 || rows[0].Path != "a.md" {
		t.Errorf("combined filter rows = %+v", rows)
	}
}

func TestListDocuments_UnknownSortRejected(t *testing.T) {
	db := testDB(t)
	if _, _, err := db.ListDocuments(10, 0, "", "", "checksum; DROP TABLE documents"); err == nil {
		t.Error("expected error for unknown sort key")
	}
}

func TestTagAndCategoryCounts(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("a.md", "A", time.Time{}, []string{"io", "errors"}, []string{"scala"}), "a")
	_ = db.UpsertDocument(row("b.md", "B", time.Time{}, []string{"io"}, []string{"scala"}), "b")

	tags, err := db.TagCounts()
	if err != nil {
		t.Fatalf("TagCounts: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "io" || tags[0].Count != 2 {
		t.Errorf("tags = %+v", tags)
	}

	cats, err := db.CategoryCounts()
	if err != nil {
		t.Fatalf("CategoryCounts: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "scala" || cats[0].Count != 2 {
		t.Errorf("categories = %+v", cats)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("s.md", "Search Me", time.Time{}, nil, nil), "uniqueword appears here")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}
