package repository

import "math"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	// MaxPageSize caps decision-trail pages; the admin console never asks
	// for more, and an unbounded page would drag the whole table through
	// one query.
	MaxPageSize = 100
)

// PageRequest selects one page of the access-decision trail.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalized clamps out-of-range values instead of rejecting them: the
// trail is an operator tool and a sloppy query should still answer.
func (p PageRequest) Normalized() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset assumes the request has already been normalized.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

func NewPageResult[T any](items []T, page PageRequest, total int64) PageResult[T] {
	totalPages := 0
	if total > 0 && page.PageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(page.PageSize)))
	}
	return PageResult[T]{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
