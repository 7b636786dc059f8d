package handlers

import (
	"net/http"
	"strconv"

	"github.com/eventra/eventra/internal/api/dto"
)

// parsePagination reads the page and per_page query parameters and
// normalizes them to sane bounds.
func parsePagination(r *http.Request) dto.PaginationParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	p := dto.PaginationParams{Page: page, PerPage: perPage}
	p.Normalize()
	return p
}

// pageOf windows a fully loaded result set down to the requested page.
// List results here are already scoped per actor, so totals come from
// the slice rather than a separate count query.
func pageOf[T any](items []T, p dto.PaginationParams) dto.PaginatedResponse {
	total := int64(len(items))
	totalPages := int(total) / p.PerPage
	if int(total)%p.PerPage > 0 {
		totalPages++
	}

	start := p.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}

	data := items[start:end]
	if data == nil {
		data = []T{}
	}

	return dto.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
	}
}
