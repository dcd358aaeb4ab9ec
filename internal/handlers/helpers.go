package handlers

import (
	"net/url"
	"strconv"
	"time"

	"ppemonitor/internal/dto"
)

// atoiDefault converts string to int or returns a default when conversion
// fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// parseDate parses a date string in the format "2006-01-02" from the
// request (HTML input format).
func parseDate(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseEventFilters reads the recognized filter parameters from a query.
func parseEventFilters(q url.Values) *dto.EventFilters {
	return &dto.EventFilters{
		Search:    q.Get("search"),
		Status:    q.Get("status"),
		StartDate: parseDate(q.Get("start_date")),
		EndDate:   parseDate(q.Get("end_date")),
	}
}

// totalPages returns ceil(total/perPage) with a floor of one page.
func totalPages(total, perPage int) int {
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
