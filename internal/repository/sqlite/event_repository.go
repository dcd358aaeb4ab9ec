package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"ppemonitor/internal/dto"
	"ppemonitor/internal/model"
)

// timestampLayout is the local-time text format stored in the timestamp
// column. Storing local time keeps SQLite's DATE('now', 'localtime')
// comparisons aligned with what was inserted.
const timestampLayout = "2006-01-02 15:04:05"

// EventRepository implements repository.EventRepository for SQLite.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new SQLite detection event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert adds a new detection event row.
func (r *EventRepository) Insert(ev *model.DetectionEvent) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO deteksi (timestamp, detected_objects, image_path, status)
		VALUES (?, ?, ?, ?)
	`, ev.Timestamp.Format(timestampLayout), ev.DetectedObjects, ev.ImagePath, ev.Status)
	if err != nil {
		return 0, fmt.Errorf("failed to insert detection event: %w", err)
	}

	return result.LastInsertId()
}

// GetByID retrieves a single event, or nil when the id does not exist.
func (r *EventRepository) GetByID(id int64) (*model.DetectionEvent, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var (
		ev model.DetectionEvent
		ts string
	)
	err := r.db.Conn().QueryRow(`
		SELECT id, timestamp, detected_objects, image_path, status
		FROM deteksi WHERE id = ?
	`, id).Scan(&ev.ID, &ts, &ev.DetectedObjects, &ev.ImagePath, &ev.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query detection event: %w", err)
	}

	ev.Timestamp = parseTimestamp(ts)
	return &ev, nil
}

// GetPage retrieves filtered events ordered newest first, with limit/offset.
func (r *EventRepository) GetPage(filter *dto.EventFilters, limit, offset int) ([]model.DetectionEvent, error) {
	whereClause, args := buildFilterClause(filter)

	query := `SELECT id, timestamp, detected_objects, image_path, status FROM deteksi` +
		whereClause + ` ORDER BY timestamp DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return r.queryEvents(query, args)
}

// GetAll retrieves every filtered event ordered newest first.
func (r *EventRepository) GetAll(filter *dto.EventFilters) ([]model.DetectionEvent, error) {
	whereClause, args := buildFilterClause(filter)

	query := `SELECT id, timestamp, detected_objects, image_path, status FROM deteksi` +
		whereClause + ` ORDER BY timestamp DESC`

	return r.queryEvents(query, args)
}

func (r *EventRepository) queryEvents(query string, args []interface{}) ([]model.DetectionEvent, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection events: %w", err)
	}
	defer rows.Close()

	var events []model.DetectionEvent
	for rows.Next() {
		var (
			ev model.DetectionEvent
			ts string
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.DetectedObjects, &ev.ImagePath, &ev.Status); err != nil {
			return nil, fmt.Errorf("failed to scan detection event: %w", err)
		}
		ev.Timestamp = parseTimestamp(ts)
		events = append(events, ev)
	}

	return events, rows.Err()
}

// Count returns the number of events matching the filter.
func (r *EventRepository) Count(filter *dto.EventFilters) (int, error) {
	whereClause, args := buildFilterClause(filter)

	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM deteksi`+whereClause, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count detection events: %w", err)
	}
	return count, nil
}

// Stats returns the four headline counters for the filtered set: total,
// today's events, Complete events and Incomplete events.
func (r *EventRepository) Stats(filter *dto.EventFilters) (*dto.DashboardStats, error) {
	whereClause, args := buildFilterClause(filter)

	r.db.RLock()
	defer r.db.RUnlock()

	stats := &dto.DashboardStats{}
	conn := r.db.Conn()

	err := conn.QueryRow(`SELECT COUNT(*) FROM deteksi`+whereClause, args...).Scan(&stats.TotalRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	todayQuery := `SELECT COUNT(*) FROM deteksi` + whereClause + connector(whereClause) +
		`DATE(timestamp) = DATE('now', 'localtime')`
	if err := conn.QueryRow(todayQuery, args...).Scan(&stats.TodayDetections); err != nil {
		return nil, fmt.Errorf("failed to count today's records: %w", err)
	}

	completeQuery := `SELECT COUNT(*) FROM deteksi` + whereClause + connector(whereClause) + `status = ?`
	completeArgs := append(append([]interface{}{}, args...), model.StatusComplete)
	if err := conn.QueryRow(completeQuery, completeArgs...).Scan(&stats.CompleteDetections); err != nil {
		return nil, fmt.Errorf("failed to count complete records: %w", err)
	}

	incompleteArgs := append(append([]interface{}{}, args...), model.StatusIncomplete)
	if err := conn.QueryRow(completeQuery, incompleteArgs...).Scan(&stats.IncompleteDetections); err != nil {
		return nil, fmt.Errorf("failed to count incomplete records: %w", err)
	}

	return stats, nil
}

// TimeBuckets groups filtered events by time period. Recognized timespans:
// "today" buckets the last 30 days by day, "week" buckets the current month
// by ISO week number, anything else buckets the current year by month.
func (r *EventRepository) TimeBuckets(filter *dto.EventFilters, timespan string) ([]dto.Bucket, error) {
	whereClause, args := buildFilterClause(filter)
	conn := connector(whereClause)

	var query string
	switch timespan {
	case "today":
		query = `SELECT DATE(timestamp) AS label, COUNT(*) AS count FROM deteksi` +
			whereClause + conn +
			`DATE(timestamp) >= DATE('now', 'localtime', '-29 days') GROUP BY label ORDER BY label`
	case "week":
		query = `SELECT 'Week ' || STRFTIME('%W', timestamp) AS label, COUNT(*) AS count FROM deteksi` +
			whereClause + conn +
			`STRFTIME('%Y-%m', timestamp) = STRFTIME('%Y-%m', 'now', 'localtime') GROUP BY label ORDER BY label`
	default:
		query = `SELECT STRFTIME('%Y-%m', timestamp) AS label, COUNT(*) AS count FROM deteksi` +
			whereClause + conn +
			`STRFTIME('%Y', timestamp) = STRFTIME('%Y', 'now', 'localtime') GROUP BY label ORDER BY label`
	}

	return r.queryBuckets(query, args)
}

// StatusBreakdown counts filtered events grouped by status.
func (r *EventRepository) StatusBreakdown(filter *dto.EventFilters) ([]dto.Bucket, error) {
	whereClause, args := buildFilterClause(filter)

	query := `SELECT status, COUNT(*) AS count FROM deteksi` + whereClause + ` GROUP BY status`
	return r.queryBuckets(query, args)
}

// ClassBreakdown re-parses each matching row's detected_objects summary and
// counts, per PPE class, how many events mention it. Buckets come back in
// first-seen order.
func (r *EventRepository) ClassBreakdown(filter *dto.EventFilters) ([]dto.Bucket, error) {
	whereClause, args := buildFilterClause(filter)

	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT detected_objects FROM deteksi`+whereClause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	var order []string
	for rows.Next() {
		var summary string
		if err := rows.Scan(&summary); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		for _, pair := range model.ParseSummary(summary) {
			if _, seen := counts[pair.Class]; !seen {
				order = append(order, pair.Class)
			}
			counts[pair.Class]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	buckets := make([]dto.Bucket, 0, len(order))
	for _, class := range order {
		buckets = append(buckets, dto.Bucket{Label: class, Count: counts[class]})
	}
	return buckets, nil
}

// HourlyToday counts today's filtered events per hour of day, zero-filling
// empty hours.
func (r *EventRepository) HourlyToday(filter *dto.EventFilters) ([24]int, error) {
	var hourly [24]int

	whereClause, args := buildFilterClause(filter)
	query := `SELECT STRFTIME('%H', timestamp) AS hour, COUNT(*) AS count FROM deteksi` +
		whereClause + connector(whereClause) +
		`DATE(timestamp) = DATE('now', 'localtime') GROUP BY hour`

	buckets, err := r.queryBuckets(query, args)
	if err != nil {
		return hourly, err
	}

	for _, bucket := range buckets {
		hour, err := strconv.Atoi(bucket.Label)
		if err != nil || hour < 0 || hour > 23 {
			continue
		}
		hourly[hour] = bucket.Count
	}
	return hourly, nil
}

// Delete removes an event row. Deleting an unknown id is a no-op.
func (r *EventRepository) Delete(id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM deteksi WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete detection event: %w", err)
	}
	return nil
}

func (r *EventRepository) queryBuckets(query string, args []interface{}) ([]dto.Bucket, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer rows.Close()

	var buckets []dto.Bucket
	for rows.Next() {
		var bucket dto.Bucket
		if err := rows.Scan(&bucket.Label, &bucket.Count); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		buckets = append(buckets, bucket)
	}

	return buckets, rows.Err()
}

func parseTimestamp(value string) time.Time {
	if ts, err := time.ParseInLocation(timestampLayout, value, time.Local); err == nil {
		return ts
	}
	// Tolerate driver-normalized RFC3339 text from externally written rows.
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.Local()
	}
	return time.Time{}
}
