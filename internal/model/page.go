package model

import "math"

const (
	// DefaultPageSize is used when a listing request does not specify a size.
	DefaultPageSize = 10
	// MaxPageSize bounds the number of rows a single listing can return.
	MaxPageSize = 100
)

// PageRequest identifies one page of a listing. Page is zero-based.
type PageRequest struct {
	Page int
	Size int
}

// Validate rejects negative pages, sizes outside 1..MaxPageSize and pages
// whose offset would not fit in an int.
func (p PageRequest) Validate() error {
	if p.Page < 0 || p.Size < 1 || p.Size > MaxPageSize {
		return ErrInvalidPage
	}
	if p.Page > math.MaxInt/p.Size {
		return ErrInvalidPage
	}
	return nil
}

// Offset returns the number of rows to skip for this page. Only meaningful
// for a request that passed Validate.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one page of an ordered listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage builds a page from its content and the total number of matching rows.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// MapPage converts the content of a page while keeping its paging metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	content := make([]U, len(p.Content))
	for i, item := range p.Content {
		content[i] = fn(item)
	}

	return Page[U]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}
