// Package models defines the domain types for Ansuz.
package models

import (
	"time"

	"github.com/starford/ansuz/internal/render"
)

// Document represents a parsed Markdown article in the content tree.
// Articles are authored out of band; the engine only ever reads them.
type Document struct {
	Path        string           `json:"path"`
	Title       string           `json:"title,omitempty"`
	Date        time.Time        `json:"date,omitempty"`
	Categories  []string         `json:"categories,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	FrontMatter map[string]any   `json:"front_matter,omitempty"`
	Body        string           `json:"body"`
	HTML        string           `json:"html,omitempty"`
	Warnings    []render.Warning `json:"warnings,omitempty"`
	Checksum    string           `json:"checksum"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// DocumentMeta is a lightweight representation returned by list operations.
type DocumentMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
