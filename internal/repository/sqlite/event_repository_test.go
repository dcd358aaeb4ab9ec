package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ppemonitor/internal/dto"
	"ppemonitor/internal/model"
)

// ========================================
// Event Repository Integration Tests
// ========================================

func newTestRepo(t *testing.T) *EventRepository {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "event_repo_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	db, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewEventRepository(db)
}

func insertEvent(t *testing.T, repo *EventRepository, ts time.Time, objects, status string) int64 {
	t.Helper()

	id, err := repo.Insert(&model.DetectionEvent{
		Timestamp:       ts,
		DetectedObjects: objects,
		ImagePath:       "processed/" + status + "_" + ts.Format("20060102-150405") + ".jpg",
		Status:          status,
	})
	if err != nil {
		t.Fatalf("Failed to insert event: %v", err)
	}
	return id
}

func TestEventRepository_InsertAndGetByID(t *testing.T) {
	repo := newTestRepo(t)

	ts := time.Date(2025, 3, 10, 14, 30, 0, 0, time.Local)
	id := insertEvent(t, repo, ts, "helmet: 1, mask: 1, vest: 1", model.StatusComplete)

	ev, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if ev == nil {
		t.Fatal("expected event, got nil")
	}
	if ev.DetectedObjects != "helmet: 1, mask: 1, vest: 1" {
		t.Errorf("DetectedObjects = %q", ev.DetectedObjects)
	}
	if ev.Status != model.StatusComplete {
		t.Errorf("Status = %q, expected %q", ev.Status, model.StatusComplete)
	}
	if !ev.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, expected %v", ev.Timestamp, ts)
	}
}

func TestEventRepository_GetByID_Missing(t *testing.T) {
	repo := newTestRepo(t)

	ev, err := repo.GetByID(9999)
	if err != nil {
		t.Fatalf("GetByID for missing id errored: %v", err)
	}
	if ev != nil {
		t.Errorf("expected nil for missing id, got %+v", ev)
	}
}

func TestEventRepository_CountWithFilters(t *testing.T) {
	repo := newTestRepo(t)

	insertEvent(t, repo, time.Date(2025, 1, 5, 8, 0, 0, 0, time.Local), "helmet: 1", model.StatusIncomplete)
	insertEvent(t, repo, time.Date(2025, 1, 10, 9, 0, 0, 0, time.Local), "helmet: 1, mask: 1, vest: 1", model.StatusComplete)
	insertEvent(t, repo, time.Date(2025, 2, 1, 10, 0, 0, 0, time.Local), "mask: 2, vest: 1", model.StatusIncomplete)

	tests := []struct {
		name     string
		filter   *dto.EventFilters
		expected int
	}{
		{"no filter", &dto.EventFilters{}, 3},
		{"search helmet", &dto.EventFilters{Search: "helmet"}, 2},
		{"search vest", &dto.EventFilters{Search: "vest"}, 2},
		{"status complete", &dto.EventFilters{Status: model.StatusComplete}, 1},
		{"status incomplete", &dto.EventFilters{Status: model.StatusIncomplete}, 2},
		{"from feb", &dto.EventFilters{StartDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local)}, 1},
		{"through january", &dto.EventFilters{EndDate: time.Date(2025, 1, 31, 0, 0, 0, 0, time.Local)}, 2},
		{"january incomplete", &dto.EventFilters{
			Status:    model.StatusIncomplete,
			StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
			EndDate:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.Local),
		}, 1},
		{"no match", &dto.EventFilters{Search: "gloves"}, 0},
	}

	for _, tt := range tests {
		count, err := repo.Count(tt.filter)
		if err != nil {
			t.Fatalf("%s: Count failed: %v", tt.name, err)
		}
		if count != tt.expected {
			t.Errorf("%s: Count = %d, expected %d", tt.name, count, tt.expected)
		}
	}
}

func TestEventRepository_GetPage_OrderAndPagination(t *testing.T) {
	repo := newTestRepo(t)

	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		insertEvent(t, repo, base.Add(time.Duration(i)*time.Minute), "helmet: 1", model.StatusIncomplete)
	}

	first, err := repo.GetPage(&dto.EventFilters{}, 2, 0)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first page has %d events, expected 2", len(first))
	}
	if !first[0].Timestamp.After(first[1].Timestamp) {
		t.Errorf("events not ordered newest first: %v then %v", first[0].Timestamp, first[1].Timestamp)
	}

	// Newest row overall must lead the first page.
	newest := base.Add(4 * time.Minute)
	if !first[0].Timestamp.Equal(newest) {
		t.Errorf("first event = %v, expected %v", first[0].Timestamp, newest)
	}

	last, err := repo.GetPage(&dto.EventFilters{}, 2, 4)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if len(last) != 1 {
		t.Errorf("last page has %d events, expected 1", len(last))
	}
}

func TestEventRepository_Stats(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now()
	insertEvent(t, repo, now, "helmet: 1, mask: 1, vest: 1", model.StatusComplete)
	insertEvent(t, repo, now.Add(-time.Hour), "helmet: 1", model.StatusIncomplete)
	insertEvent(t, repo, now.AddDate(0, 0, -10), "vest: 1", model.StatusIncomplete)

	stats, err := repo.Stats(&dto.EventFilters{})
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, expected 3", stats.TotalRecords)
	}
	if stats.CompleteDetections != 1 {
		t.Errorf("CompleteDetections = %d, expected 1", stats.CompleteDetections)
	}
	if stats.IncompleteDetections != 2 {
		t.Errorf("IncompleteDetections = %d, expected 2", stats.IncompleteDetections)
	}
	// The -time.Hour event may fall on yesterday shortly after midnight,
	// so only the lower bound is fixed.
	if stats.TodayDetections < 1 || stats.TodayDetections > 2 {
		t.Errorf("TodayDetections = %d, expected 1 or 2", stats.TodayDetections)
	}
}

func TestEventRepository_StatusBreakdown(t *testing.T) {
	repo := newTestRepo(t)

	ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.Local)
	insertEvent(t, repo, ts, "helmet: 1, mask: 1, vest: 1", model.StatusComplete)
	insertEvent(t, repo, ts.Add(time.Minute), "helmet: 1", model.StatusIncomplete)
	insertEvent(t, repo, ts.Add(2*time.Minute), "mask: 1", model.StatusIncomplete)

	buckets, err := repo.StatusBreakdown(&dto.EventFilters{})
	if err != nil {
		t.Fatalf("StatusBreakdown failed: %v", err)
	}

	counts := make(map[string]int)
	for _, bucket := range buckets {
		counts[bucket.Label] = bucket.Count
	}
	if counts[model.StatusComplete] != 1 {
		t.Errorf("Complete count = %d, expected 1", counts[model.StatusComplete])
	}
	if counts[model.StatusIncomplete] != 2 {
		t.Errorf("Incomplete count = %d, expected 2", counts[model.StatusIncomplete])
	}
}

func TestEventRepository_ClassBreakdown_CountsMentions(t *testing.T) {
	repo := newTestRepo(t)

	ts := time.Date(2025, 5, 2, 10, 0, 0, 0, time.Local)
	// Class breakdown counts events mentioning a class, not summed counts.
	insertEvent(t, repo, ts, "helmet: 3, vest: 1", model.StatusIncomplete)
	insertEvent(t, repo, ts.Add(time.Minute), "helmet: 1", model.StatusIncomplete)
	insertEvent(t, repo, ts.Add(2*time.Minute), "mask: 2", model.StatusIncomplete)

	buckets, err := repo.ClassBreakdown(&dto.EventFilters{})
	if err != nil {
		t.Fatalf("ClassBreakdown failed: %v", err)
	}

	counts := make(map[string]int)
	for _, bucket := range buckets {
		counts[bucket.Label] = bucket.Count
	}
	if counts["helmet"] != 2 {
		t.Errorf("helmet mentions = %d, expected 2", counts["helmet"])
	}
	if counts["vest"] != 1 {
		t.Errorf("vest mentions = %d, expected 1", counts["vest"])
	}
	if counts["mask"] != 1 {
		t.Errorf("mask mentions = %d, expected 1", counts["mask"])
	}
}

func TestEventRepository_HourlyToday_SumMatchesTodayCount(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now()
	insertEvent(t, repo, now, "helmet: 1", model.StatusIncomplete)
	insertEvent(t, repo, now, "vest: 1", model.StatusIncomplete)
	insertEvent(t, repo, now.AddDate(0, 0, -3), "mask: 1", model.StatusIncomplete)

	hourly, err := repo.HourlyToday(&dto.EventFilters{})
	if err != nil {
		t.Fatalf("HourlyToday failed: %v", err)
	}

	sum := 0
	for _, count := range hourly {
		sum += count
	}

	stats, err := repo.Stats(&dto.EventFilters{})
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if sum != stats.TodayDetections {
		t.Errorf("hourly sum = %d, expected today's count %d", sum, stats.TodayDetections)
	}
	if hourly[now.Hour()] < 1 {
		t.Errorf("current hour bucket = %d, expected at least 1", hourly[now.Hour()])
	}
}

func TestEventRepository_TimeBuckets(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now()
	insertEvent(t, repo, now, "helmet: 1", model.StatusIncomplete)
	insertEvent(t, repo, now, "vest: 1", model.StatusIncomplete)

	for _, timespan := range []string{"today", "week", "month"} {
		buckets, err := repo.TimeBuckets(&dto.EventFilters{}, timespan)
		if err != nil {
			t.Fatalf("TimeBuckets(%q) failed: %v", timespan, err)
		}

		sum := 0
		for _, bucket := range buckets {
			sum += bucket.Count
		}
		if sum != 2 {
			t.Errorf("TimeBuckets(%q) total = %d, expected 2", timespan, sum)
		}
	}
}

func TestEventRepository_Delete_Idempotent(t *testing.T) {
	repo := newTestRepo(t)

	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	id := insertEvent(t, repo, ts, "helmet: 1", model.StatusIncomplete)

	if err := repo.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	ev, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID after delete failed: %v", err)
	}
	if ev != nil {
		t.Error("event still present after delete")
	}

	// Deleting again, or deleting an id that never existed, is a no-op.
	if err := repo.Delete(id); err != nil {
		t.Errorf("second Delete errored: %v", err)
	}
	if err := repo.Delete(424242); err != nil {
		t.Errorf("Delete of unknown id errored: %v", err)
	}

	count, err := repo.Count(&dto.EventFilters{})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count = %d after deletes, expected 0", count)
	}
}
