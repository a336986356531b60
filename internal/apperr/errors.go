// Package apperr defines service-level sentinel errors shared across the
// API and MCP surfaces.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
