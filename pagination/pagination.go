// Package pagination parses `page`, `size` and `sort` query parameters and shapes
// paged listing responses.
//
// Pages are zero-based. `sort` takes the form `field` or `field,asc|desc` and is checked
// against a per-resource whitelist that maps API field names to SQL columns, so the
// resulting ORDER BY clause never contains client text.
package pagination

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/user/todoapi-go/apperror"
)

const (
	DefaultSize = 20
	MaxSize     = 100
	// MaxPage keeps Page*Size within an int for every allowed size.
	MaxPage = math.MaxInt / MaxSize
)

// Sortable maps API sort field names to SQL column expressions.
type Sortable map[string]string

// PageRequest is a validated listing request.
type PageRequest struct {
	Page   int
	Size   int
	Column string // SQL column to order by
	Desc   bool
}

// Offset is the number of rows to skip.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// OrderBy renders the ORDER BY clause body, e.g. `content DESC`.
func (p PageRequest) OrderBy() string {
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s", p.Column, dir)
}

// FromRequest reads the paging parameters of r. defaultColumn is used when no sort
// is given. Malformed values produce an INVALID_FIELDS error naming the parameter.
func FromRequest(r *http.Request, sortable Sortable, defaultColumn string) (PageRequest, error) {
	q := r.URL.Query()
	fields := map[string]string{}
	req := PageRequest{Page: 0, Size: DefaultSize, Column: defaultColumn}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		switch {
		case err != nil || page < 0:
			fields["page"] = "must be a non-negative integer"
		case page > MaxPage:
			fields["page"] = fmt.Sprintf("must be at most %d", MaxPage)
		default:
			req.Page = page
		}
	}

	if raw := q.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			fields["size"] = "must be a positive integer"
		} else {
			req.Size = min(size, MaxSize)
		}
	}

	if raw := q.Get("sort"); raw != "" {
		name, dir, _ := strings.Cut(raw, ",")
		column, ok := sortable[strings.TrimSpace(name)]
		if !ok {
			fields["sort"] = fmt.Sprintf("unknown sort field '%s'", name)
		} else {
			req.Column = column
		}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			req.Desc = true
		default:
			fields["sort"] = "direction must be 'asc' or 'desc'"
		}
	}

	if len(fields) > 0 {
		return PageRequest{}, apperror.NewValidationError(fields, nil)
	}
	return req, nil
}

// Page is one page of a listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage assembles a Page; content is never nil so it encodes as `[]`.
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

// Map converts the content of a page, keeping its paging metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		out = append(out, fn(item))
	}
	return Page[U]{
		Content:       out,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}
