// Package testutil provides shared test helpers for setting up content
// trees and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContentTree creates a temporary content directory with a provider.
func TestContentTree(t *testing.T) (string, storage.Provider) {
	t.Helper()
	return tempTree(t)
}

// TestOutputTree creates a temporary output directory with a provider.
func TestOutputTree(t *testing.T) (string, storage.Provider) {
	t.Helper()
	return tempTree(t)
}

func tempTree(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
