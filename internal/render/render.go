// Package render turns Markdown article bodies into HTML, passing fenced
// code blocks and {% raw %} regions through without reinterpretation.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options configures the Markdown engine.
type Options struct {
	// Extensions names the goldmark extensions to enable. Empty means the
	// default set (gfm, linkify, footnote).
	Extensions []string
	// Safe suppresses raw inline HTML in markdown segments. Raw regions are
	// unaffected: their passthrough is the point.
	Safe bool
	// HardWraps renders single newlines as <br>.
	HardWraps bool
}

// Renderer converts article bodies to HTML. It is stateless after
// construction and safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a Renderer from the given options. Unknown extension names are
// ignored.
func New(opts Options) *Renderer {
	return &Renderer{md: newEngine(opts)}
}

// Render converts body to HTML. Raw segments are emitted verbatim between
// the rendered markdown segments. Warnings report degraded regions
// (unterminated fences or raw blocks); they never fail the document.
func (r *Renderer) Render(body string) (string, []Warning, error) {
	segs, warnings := Split(body)

	var out bytes.Buffer
	for _, seg := range segs {
		switch seg.Kind {
		case SegmentRaw:
			out.WriteString(seg.Text)
		default:
			if err := r.md.Convert([]byte(seg.Text), &out); err != nil {
				return "", warnings, fmt.Errorf("render: %w", err)
			}
		}
	}
	return out.String(), warnings, nil
}

func newEngine(opts Options) goldmark.Markdown {
	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.Safe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.Footnote,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}
