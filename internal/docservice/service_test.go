package docservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/testutil"
)

func testService(t *testing.T) (*Service, storage.Provider) {
	t.Helper()
	_, store := testutil.TestContentTree(t)
	db := testutil.TestDB(t)
	return NewService(store, db, render.New(render.Options{})), store
}

func TestGetDocument(t *testing.T) {
	svc, store := testService(t)
	_ = store.Write("post.md", []byte("---\ntitle: Hello\ntags:\n- io\n---\nBody **bold**\n"))

	doc, err := svc.GetDocument(context.Background(), "post.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Title != "Hello" {
		t.Errorf("title = %q", doc.Title)
	}
	if !strings.Contains(doc.HTML, "<strong>bold</strong>") {
		t.Errorf("html = %q", doc.HTML)
	}
	if doc.Checksum == "" {
		t.Error("checksum empty")
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.GetDocument(context.Background(), "missing.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetDocument_MalformedCarriesPath(t *testing.T) {
	svc, store := testService(t)
	_ = store.Write("broken.md", []byte("---\ntitle: open\n"))

	_, err := svc.GetDocument(context.Background(), "broken.md")
	if !errors.Is(err, parser.ErrMalformedFrontMatter) {
		t.Fatalf("err = %v, want ErrMalformedFrontMatter", err)
	}
	if !strings.Contains(err.Error(), "broken.md") {
		t.Errorf("error does not name the document: %v", err)
	}
}

func TestGetDocument_WarningsDoNotFail(t *testing.T) {
	svc, store := testService(t)
	_ = store.Write("fence.md", []byte("```\nopen fence\n"))

	doc, err := svc.GetDocument(context.Background(), "fence.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if len(doc.Warnings) != 1 || doc.Warnings[0].Kind != render.WarnUnterminatedCodeFence {
		t.Errorf("warnings = %+v", doc.Warnings)
	}
}
