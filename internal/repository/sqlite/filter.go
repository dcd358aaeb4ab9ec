package sqlite

import (
	"strings"

	"ppemonitor/internal/dto"
)

// buildFilterClause turns the supplied filters into a WHERE clause with one
// "?" condition per set filter, joined by AND, plus the bind values in
// matching order. Filter values are only ever passed as bind arguments.
// Returns "" and no args when no filter is set.
func buildFilterClause(filter *dto.EventFilters) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter == nil {
		return "", nil
	}

	if filter.Search != "" {
		conditions = append(conditions, "detected_objects LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	if !filter.StartDate.IsZero() {
		conditions = append(conditions, "DATE(timestamp) >= ?")
		args = append(args, filter.StartDate.Format("2006-01-02"))
	}

	if !filter.EndDate.IsZero() {
		conditions = append(conditions, "DATE(timestamp) <= ?")
		args = append(args, filter.EndDate.Format("2006-01-02"))
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// connector returns the keyword that attaches one more condition to a query
// already holding the given WHERE clause.
func connector(whereClause string) string {
	if whereClause != "" {
		return " AND "
	}
	return " WHERE "
}
