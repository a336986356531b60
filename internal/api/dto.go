package api

import (
	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/site"
)

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = models.Document

// DocumentListItem is a lightweight item in a list response (aliased from the domain layer).
type DocumentListItem = docservice.DocumentListItem

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents"`
	Total     int                `json:"total"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// TaxonomyResponse wraps tag or category counts.
type TaxonomyResponse struct {
	Items []index.NameCount `json:"items"`
}

// BuildResponse is returned by POST /build (aliased from the site layer).
type BuildResponse = site.Report

// AssetUploadResponse is returned after a successful asset upload.
type AssetUploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}
