// Package docservice is the read-side service over the content tree and the
// index: it parses and renders documents on demand and answers list, search,
// and taxonomy queries. It never writes source files; articles are authored
// out of band.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/storage"
)

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date,omitempty"`
	Categories []string  `json:"categories"`
	Tags       []string  `json:"tags"`
	Checksum   string    `json:"checksum"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Service coordinates storage, rendering, and index queries.
type Service struct {
	store    storage.Provider
	db       *index.DB
	renderer *render.Renderer
}

// NewService creates a new document service.
func NewService(store storage.Provider, db *index.DB, renderer *render.Renderer) *Service {
	return &Service{store: store, db: db, renderer: renderer}
}

// GetDocument reads a document from storage, parses its front matter, and
// renders the body. Front-matter failures surface with the document path;
// render warnings ride along on the document instead of failing it.
func (s *Service) GetDocument(_ context.Context, path string) (*models.Document, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	html, warnings, err := s.renderer.Render(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &models.Document{
		Path:        path,
		Title:       res.Title,
		Date:        res.Date,
		Categories:  nonNilSlice(res.Categories),
		Tags:        nonNilSlice(res.Tags),
		FrontMatter: res.FrontMatter,
		Body:        res.Body,
		HTML:        html,
		Warnings:    warnings,
		Checksum:    checksum.Sum(data),
		UpdatedAt:   time.Now(),
	}, nil
}

// ListDocuments returns paginated documents with optional tag and category
// filters.
func (s *Service) ListDocuments(_ context.Context, limit, offset int, tag, category, sortKey string) ([]DocumentListItem, int, error) {
	rows, total, err := s.db.ListDocuments(limit, offset, tag, category, sortKey)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{
			Path:       r.Path,
			Title:      r.Title,
			Date:       r.Date,
			Categories: nonNilSlice(r.Categories),
			Tags:       nonNilSlice(r.Tags),
			Checksum:   r.Checksum,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Tags returns tag usage counts across all documents.
func (s *Service) Tags(_ context.Context) ([]index.NameCount, error) {
	return s.db.TagCounts()
}

// Categories returns category usage counts across all documents.
func (s *Service) Categories(_ context.Context) ([]index.NameCount, error) {
	return s.db.CategoryCounts()
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
