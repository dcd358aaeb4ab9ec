package sqlite

import (
	"strings"
	"testing"
	"time"

	"ppemonitor/internal/dto"
)

// ========================================
// Filter Clause Builder Tests
// ========================================

func date(t *testing.T, v string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", v)
	if err != nil {
		t.Fatalf("bad test date %q: %v", v, err)
	}
	return parsed
}

func TestBuildFilterClause_Empty(t *testing.T) {
	clause, args := buildFilterClause(&dto.EventFilters{})
	if clause != "" {
		t.Errorf("expected empty clause, got %q", clause)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}

	clause, args = buildFilterClause(nil)
	if clause != "" || len(args) != 0 {
		t.Errorf("nil filter should produce no clause, got %q / %v", clause, args)
	}
}

func TestBuildFilterClause_OneConditionPerParameter(t *testing.T) {
	tests := []struct {
		name       string
		filter     *dto.EventFilters
		conditions int
	}{
		{"search only", &dto.EventFilters{Search: "helmet"}, 1},
		{"status only", &dto.EventFilters{Status: "Complete"}, 1},
		{"start date only", &dto.EventFilters{StartDate: date(t, "2025-01-01")}, 1},
		{"end date only", &dto.EventFilters{EndDate: date(t, "2025-01-31")}, 1},
		{"search and status", &dto.EventFilters{Search: "vest", Status: "Incomplete"}, 2},
		{"date range", &dto.EventFilters{StartDate: date(t, "2025-01-01"), EndDate: date(t, "2025-01-31")}, 2},
		{"all four", &dto.EventFilters{
			Search:    "mask",
			Status:    "Complete",
			StartDate: date(t, "2025-01-01"),
			EndDate:   date(t, "2025-01-31"),
		}, 4},
	}

	for _, tt := range tests {
		clause, args := buildFilterClause(tt.filter)

		if len(args) != tt.conditions {
			t.Errorf("%s: got %d args, expected %d", tt.name, len(args), tt.conditions)
		}
		if got := strings.Count(clause, "?"); got != tt.conditions {
			t.Errorf("%s: clause %q has %d placeholders, expected %d", tt.name, clause, got, tt.conditions)
		}
		if got := strings.Count(clause, " AND "); got != tt.conditions-1 {
			t.Errorf("%s: clause %q has %d ANDs, expected %d", tt.name, clause, got, tt.conditions-1)
		}
		if !strings.HasPrefix(clause, " WHERE ") {
			t.Errorf("%s: clause %q does not start with WHERE", tt.name, clause)
		}
	}
}

func TestBuildFilterClause_NeverInterpolatesValues(t *testing.T) {
	filter := &dto.EventFilters{
		Search:    "'; DROP TABLE deteksi; --",
		Status:    "Complete' OR '1'='1",
		StartDate: date(t, "2025-06-15"),
		EndDate:   date(t, "2025-06-30"),
	}

	clause, args := buildFilterClause(filter)

	for _, value := range []string{"DROP TABLE", "OR '1'='1", "2025-06-15", "2025-06-30"} {
		if strings.Contains(clause, value) {
			t.Errorf("clause %q contains literal value %q", clause, value)
		}
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 bind args, got %d", len(args))
	}
	if args[0] != "%'; DROP TABLE deteksi; --%" {
		t.Errorf("search arg = %v, expected wrapped LIKE pattern", args[0])
	}
	if args[2] != "2025-06-15" || args[3] != "2025-06-30" {
		t.Errorf("date args = %v %v, expected formatted dates", args[2], args[3])
	}
}

func TestConnector(t *testing.T) {
	if got := connector(""); got != " WHERE " {
		t.Errorf("connector(\"\") = %q, expected \" WHERE \"", got)
	}
	if got := connector(" WHERE status = ?"); got != " AND " {
		t.Errorf("connector with existing clause = %q, expected \" AND \"", got)
	}
}
