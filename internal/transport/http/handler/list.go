package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/documentor-api/internal/domain"
)

const minSearchChars = 2

// filterKind describes how a query parameter is turned into an exact-match
// filter value.
type filterKind int

const (
	filterString filterKind = iota
	filterBool
)

type filterSpec struct {
	kind filterKind
	// allowed restricts string filters to an enumeration when non-empty.
	allowed []string
}

// parseListQuery reads page, limit, search, sort and the entity filters
// described by specs. Out-of-range values are rejected rather than clamped.
func parseListQuery(r *http.Request, specs map[string]filterSpec) (domain.ListQuery, error) {
	qs := r.URL.Query()
	q := domain.ListQuery{Page: domain.DefaultPage, Limit: domain.DefaultLimit}
	var err error
	if v := qs.Get("page"); v != "" {
		if q.Page, err = strconv.Atoi(v); err != nil || q.Page < 1 {
			return q, fmt.Errorf("page must be an integer >= 1: %w", domain.ErrBadRequest)
		}
	}
	if v := qs.Get("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil || q.Limit < 1 || q.Limit > domain.MaxLimit {
			return q, fmt.Errorf("limit must be between 1 and %d: %w", domain.MaxLimit, domain.ErrBadRequest)
		}
	}
	if v := strings.TrimSpace(qs.Get("search")); v != "" {
		if len([]rune(v)) < minSearchChars {
			return q, fmt.Errorf("search must be at least %d characters: %w", minSearchChars, domain.ErrBadRequest)
		}
		q.Search = v
	}
	q.Sort = strings.TrimSpace(qs.Get("sort"))

	for name, spec := range specs {
		raw := qs.Get(name)
		if raw == "" {
			continue
		}
		if q.Filters == nil {
			q.Filters = map[string]any{}
		}
		switch spec.kind {
		case filterBool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return q, fmt.Errorf("%s must be true or false: %w", name, domain.ErrBadRequest)
			}
			q.Filters[name] = b
		default:
			if len(spec.allowed) > 0 && !contains(spec.allowed, raw) {
				return q, fmt.Errorf("%s must be one of %s: %w", name, strings.Join(spec.allowed, ", "), domain.ErrBadRequest)
			}
			q.Filters[name] = raw
		}
	}
	return q, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// writeList renders a page of items in the list envelope.
func writeList[T any](w http.ResponseWriter, entity string, items []T, p domain.Pagination) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, ListEnvelope{
		Message:    entity + " retrieved successfully",
		Data:       items,
		Pagination: p,
	})
}
