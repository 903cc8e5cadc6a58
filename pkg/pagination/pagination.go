package pagination

import (
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns the default pagination window.
func DefaultParams() Params {
	return Params{
		Page:  defaultPage,
		Limit: defaultLimit,
	}
}

// FromRequest extracts "page" and "limit" query parameters from an HTTP request,
// clamping limit to maxLimit and falling back to defaults on bad input.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 && v <= maxLimit {
			p.Limit = v
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// Meta describes the pagination envelope returned alongside list data.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewMeta computes the pagination envelope for the given total row count.
func NewMeta(total int, params Params) Meta {
	totalPages := total / params.Limit
	if total%params.Limit > 0 {
		totalPages++
	}

	return Meta{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}
}
