package handlers

import (
	"net/url"
	"testing"
	"time"
)

// ========================================
// Helper Function Tests
// ========================================

func TestAtoiDefault(t *testing.T) {
	tests := []struct {
		input    string
		def      int
		expected int
	}{
		{"10", 5, 10},
		{"1", 0, 1},
		{"", 5, 5},
		{"abc", 10, 10},
		{"-1", 5, 5},
		{"0", 5, 5},
		{"12.5", 5, 5},
	}

	for _, tt := range tests {
		if got := atoiDefault(tt.input, tt.def); got != tt.expected {
			t.Errorf("atoiDefault(%q, %d) = %d, expected %d", tt.input, tt.def, got, tt.expected)
		}
	}
}

func TestParseDate(t *testing.T) {
	if got := parseDate("2025-03-10"); got.IsZero() {
		t.Error("valid date parsed as zero")
	} else if got.Year() != 2025 || got.Month() != time.March || got.Day() != 10 {
		t.Errorf("parseDate = %v", got)
	}

	for _, invalid := range []string{"", "10-03-2025", "2025-13-01", "garbage"} {
		if got := parseDate(invalid); !got.IsZero() {
			t.Errorf("parseDate(%q) = %v, expected zero time", invalid, got)
		}
	}
}

func TestParseEventFilters(t *testing.T) {
	q := url.Values{}
	q.Set("search", "helmet")
	q.Set("status", "Complete")
	q.Set("start_date", "2025-01-01")
	q.Set("end_date", "2025-01-31")

	filter := parseEventFilters(q)
	if filter.Search != "helmet" || filter.Status != "Complete" {
		t.Errorf("filter = %+v", filter)
	}
	if filter.StartDate.IsZero() || filter.EndDate.IsZero() {
		t.Error("dates not parsed")
	}

	empty := parseEventFilters(url.Values{})
	if empty.Search != "" || empty.Status != "" || !empty.StartDate.IsZero() || !empty.EndDate.IsZero() {
		t.Errorf("empty query produced constraints: %+v", empty)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int
		perPage  int
		expected int
	}{
		{0, 100, 1},
		{1, 100, 1},
		{100, 100, 1},
		{101, 100, 2},
		{250, 100, 3},
		{199, 100, 2},
		{200, 100, 2},
	}

	for _, tt := range tests {
		if got := totalPages(tt.total, tt.perPage); got != tt.expected {
			t.Errorf("totalPages(%d, %d) = %d, expected %d", tt.total, tt.perPage, got, tt.expected)
		}
	}
}
