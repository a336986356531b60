// Package site builds the content tree into rendered HTML output.
package site

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/storage"
)

// DocumentError records a single document that failed to build. The rest of
// the build is never affected by it.
type DocumentError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// DocumentWarnings records render degradations for a document that still
// produced output.
type DocumentWarnings struct {
	Path     string           `json:"path"`
	Warnings []render.Warning `json:"warnings"`
}

// Report summarises one build pass.
type Report struct {
	Built    int                `json:"built"`
	Pruned   int                `json:"pruned"`
	Failed   []DocumentError    `json:"failed,omitempty"`
	Warnings []DocumentWarnings `json:"warnings,omitempty"`
	Duration time.Duration      `json:"duration_ns"`
}

// Builder renders every Markdown document in the content tree to an HTML
// file in the output tree, keeping the index in step.
type Builder struct {
	store    storage.Provider
	out      storage.Provider
	renderer *render.Renderer
	db       *index.DB
	logger   *slog.Logger
	workers  int
}

// NewBuilder creates a Builder. workers bounds build concurrency; values
// below 1 mean one worker per CPU.
func NewBuilder(store, out storage.Provider, renderer *render.Renderer, db *index.DB, logger *slog.Logger, workers int) *Builder {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Builder{
		store:    store,
		out:      out,
		renderer: renderer,
		db:       db,
		logger:   logger,
		workers:  workers,
	}
}

// Build renders the whole content tree. Documents are independent, so they
// are processed concurrently; a malformed document is reported in the
// Report and never blocks the others. Build returns an error only for
// infrastructure failures (listing the tree, cancellation).
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()

	metas, err := b.store.List("", ".md")
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		report Report
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for _, m := range metas {
		path := m.Path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			warnings, buildErr := b.buildOne(path)
			mu.Lock()
			defer mu.Unlock()
			if buildErr != nil {
				report.Failed = append(report.Failed, DocumentError{Path: path, Error: buildErr.Error()})
				return nil
			}
			report.Built++
			if len(warnings) > 0 {
				report.Warnings = append(report.Warnings, DocumentWarnings{Path: path, Warnings: warnings})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	pruned, err := b.prune(metas)
	if err != nil {
		b.logger.Warn("build: prune failed", slog.String("error", err.Error()))
	}
	report.Pruned = pruned
	report.Duration = time.Since(start)

	b.logger.Info("build: completed",
		slog.Int("built", report.Built),
		slog.Int("failed", len(report.Failed)),
		slog.Int("pruned", report.Pruned),
		slog.Duration("duration", report.Duration))

	return &report, nil
}

// BuildPath rebuilds a single document; used by the watcher for incremental
// rebuilds.
func (b *Builder) BuildPath(path string) ([]render.Warning, error) {
	return b.buildOne(path)
}

// RemovePath deletes the rendered output for a removed source document.
func (b *Builder) RemovePath(path string) error {
	return b.out.Delete(OutputPath(path))
}

// buildOne reads, parses, renders, writes, and indexes one document.
// Render warnings degrade the document; parse errors fail it.
func (b *Builder) buildOne(path string) ([]render.Warning, error) {
	data, err := b.store.Read(path)
	if err != nil {
		return nil, err
	}

	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	html, warnings, err := b.renderer.Render(res.Body)
	if err != nil {
		return warnings, err
	}
	for _, w := range warnings {
		b.logger.Warn("build: degraded render",
			slog.String("path", path),
			slog.String("kind", w.Kind),
			slog.Int("line", w.Line))
	}

	if err := b.out.Write(OutputPath(path), []byte(html)); err != nil {
		return warnings, err
	}

	row := index.DocumentRow{
		Path:       path,
		Title:      res.Title,
		Date:       res.Date,
		Categories: res.Categories,
		Tags:       res.Tags,
		Checksum:   checksum.Sum(data),
		UpdatedAt:  time.Now(),
	}
	if err := b.db.UpsertDocument(row, res.Body); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// prune removes output files whose source document no longer exists.
func (b *Builder) prune(metas []models.DocumentMeta) (int, error) {
	sources := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		sources[OutputPath(m.Path)] = struct{}{}
	}

	outputs, err := b.out.List("", ".html")
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, o := range outputs {
		if _, ok := sources[o.Path]; ok {
			continue
		}
		if err := b.out.Delete(o.Path); err != nil {
			b.logger.Warn("build: prune delete failed", slog.String("path", o.Path), slog.String("error", err.Error()))
			continue
		}
		pruned++
	}
	return pruned, nil
}

// OutputPath maps a source document path to its rendered output path.
func OutputPath(src string) string {
	return strings.TrimSuffix(src, ".md") + ".html"
}
