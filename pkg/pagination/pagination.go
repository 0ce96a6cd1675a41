package pagination

import (
	"net/http"
	"strconv"
)

// Params holds limit/skip paging parameters extracted from query strings.
// The catalog upstream pages with limit and skip rather than page numbers,
// so the API surface mirrors that.
type Params struct {
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

// DefaultParams returns the default page window.
func DefaultParams() Params {
	return Params{
		Limit: 20,
		Skip:  0,
	}
}

// FromRequest extracts limit/skip from an HTTP request. Invalid or
// out-of-range values fall back to defaults; limit is capped at 100.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 && v <= 100 {
			p.Limit = v
		}
	}

	if skip := r.URL.Query().Get("skip"); skip != "" {
		if v, err := strconv.Atoi(skip); err == nil && v >= 0 {
			p.Skip = v
		}
	}

	return p
}

// Result wraps one page of items together with the paging window that
// produced it.
type Result[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Skip    int  `json:"skip"`
	HasMore bool `json:"has_more"`
}

// NewResult builds a paged result from one page of items and the total count.
func NewResult[T any](items []T, total int, params Params) Result[T] {
	return Result[T]{
		Items:   items,
		Total:   total,
		Limit:   params.Limit,
		Skip:    params.Skip,
		HasMore: params.Skip+len(items) < total,
	}
}
