// Package storage defines the file-tree abstraction shared by the content
// and output directories.
package storage

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for file operations under a fixed root.
// All paths are relative to that root.
type Provider interface {
	// List walks dir and returns metadata for every file with the given
	// suffix (e.g. ".md" for the content tree, ".html" for outputs).
	List(dir, suffix string) ([]models.DocumentMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
