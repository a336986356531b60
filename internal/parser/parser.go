// Package parser extracts YAML front matter and typed metadata from
// Markdown article sources.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMalformedFrontMatter is returned when a document opens a front-matter
// block but the block cannot be completed: the closing delimiter is missing
// or the enclosed YAML does not parse. Callers wrap it with the document
// identifier before surfacing it.
var ErrMalformedFrontMatter = errors.New("malformed front matter")

var delim = []byte("---")

// Result holds the output of parsing a Markdown article.
//
// FrontMatter is the open key-value mapping exactly as authored; the typed
// fields (Title, Date, Categories, Tags) are projections of well-known keys
// and never remove anything from the map.
type Result struct {
	FrontMatter map[string]any
	Body        string
	Title       string
	Date        time.Time
	Categories  []string
	Tags        []string
}

// Parse extracts front matter and body from raw article bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		FrontMatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
		Date:        parseDate(fm["date"]),
		Categories:  stringList(fm["categories"], true),
		Tags:        stringList(fm["tags"], false),
	}, nil
}

// splitFrontMatter separates the leading --- delimited YAML block from the
// body. A document without an opening delimiter is all body. An opening
// delimiter without a closing one, or a block of invalid YAML, is
// ErrMalformedFrontMatter: silently dropping an intended metadata block
// would leave the document misfiled everywhere downstream.
func splitFrontMatter(data []byte) (map[string]any, string, error) {
	rest, opened := cutOpeningDelim(data)
	if !opened {
		return nil, string(data), nil
	}

	block, body, closed := cutClosingDelim(rest)
	if !closed {
		return nil, "", fmt.Errorf("%w: missing closing delimiter", ErrMalformedFrontMatter)
	}

	fm := map[string]any{}
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedFrontMatter, err)
	}
	return fm, string(body), nil
}

// cutOpeningDelim reports whether data starts with a front-matter delimiter
// line and returns the remainder after it. The delimiter must be the very
// first line of the document.
func cutOpeningDelim(data []byte) ([]byte, bool) {
	line, rest, found := bytes.Cut(data, []byte("\n"))
	if !bytes.Equal(bytes.TrimRight(line, "\r"), delim) {
		return nil, false
	}
	if !found {
		// Document is a bare "---" with no newline: the block is open
		// but can never close.
		return nil, true
	}
	return rest, true
}

// cutClosingDelim scans rest line by line for the closing delimiter and
// returns the YAML block before it and the body after it.
func cutClosingDelim(rest []byte) (block, body []byte, ok bool) {
	offset := 0
	for {
		nl := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		if nl < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+nl]
		}
		if bytes.Equal(bytes.TrimRight(line, "\r"), delim) {
			block = rest[:offset]
			if nl >= 0 {
				body = rest[offset+nl+1:]
			}
			return block, body, true
		}
		if nl < 0 {
			return nil, nil, false
		}
		offset += nl + 1
	}
}

// Compose reassembles a document from metadata and body. Composing then
// parsing yields equivalent metadata and an identical body.
func Compose(fm map[string]any, body string) ([]byte, error) {
	if len(fm) == 0 {
		return []byte(body), nil
	}
	block, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("parser: compose front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(block)
	buf.WriteString("---\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// deriveTitle returns the front-matter "title" if present, otherwise the
// first H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if t, ok := fm["title"].(string); ok && t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// dateLayouts are the author-supplied date formats accepted in front matter,
// most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseDate converts a front-matter date value to a time.Time. yaml.v3
// already resolves unquoted timestamps; quoted values arrive as strings and
// are tried against the known layouts. Unparseable dates yield a zero time.
func parseDate(v any) time.Time {
	switch d := v.(type) {
	case time.Time:
		return d
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// stringList normalises a front-matter value that may be a YAML list or a
// bare scalar into a deduplicated string slice, preserving author order.
// When splitScalar is set, a scalar is split on whitespace (the shorthand
// "categories: jekyll update" form); otherwise a scalar is a single entry.
func stringList(v any, splitScalar bool) []string {
	var raw []string
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		if splitScalar {
			raw = strings.Fields(val)
		} else {
			raw = []string{val}
		}
	default:
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
