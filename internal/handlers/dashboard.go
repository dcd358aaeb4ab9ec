package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ppemonitor/internal/dto"
	"ppemonitor/internal/logger"
	"ppemonitor/internal/repository"
)

// Store failures on the dashboard APIs degrade to empty-shaped payloads so
// the charts render blank instead of erroring.

// DashboardStatsHandler returns the four headline counters as JSON.
func DashboardStatsHandler(repo repository.EventRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := parseEventFilters(r.URL.Query())

		stats, err := repo.Stats(filter)
		if err != nil {
			logger.Error("Error computing dashboard stats: %v", err)
			stats = &dto.DashboardStats{}
		}

		writeJSON(w, logger, stats)
	}
}

// BarChartHandler returns time-bucketed counts for the requested timespan
// ("today", "week" or the default "month").
func BarChartHandler(repo repository.EventRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		timespan := q.Get("timespan")
		if timespan == "" {
			timespan = "month"
		}

		buckets, err := repo.TimeBuckets(parseEventFilters(q), timespan)
		if err != nil {
			logger.Error("Error in bar chart data: %v", err)
			buckets = nil
		}

		writeJSON(w, logger, bucketsToChart(buckets))
	}
}

// StatusPieChartHandler returns event counts grouped by status.
func StatusPieChartHandler(repo repository.EventRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buckets, err := repo.StatusBreakdown(parseEventFilters(r.URL.Query()))
		if err != nil {
			logger.Error("Error in status pie chart data: %v", err)
			buckets = nil
		}

		writeJSON(w, logger, bucketsToChart(buckets))
	}
}

// PPEPieChartHandler returns, per PPE class, the number of events whose
// summary mentions it.
func PPEPieChartHandler(repo repository.EventRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buckets, err := repo.ClassBreakdown(parseEventFilters(r.URL.Query()))
		if err != nil {
			logger.Error("Error in PPE pie chart data: %v", err)
			buckets = nil
		}

		writeJSON(w, logger, bucketsToChart(buckets))
	}
}

// LineChartHandler returns today's events bucketed by hour of day, with all
// 24 hours present.
func LineChartHandler(repo repository.EventRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hourly, err := repo.HourlyToday(parseEventFilters(r.URL.Query()))
		if err != nil {
			logger.Error("Error in line chart data: %v", err)
			hourly = [24]int{}
		}

		chart := dto.ChartData{
			Labels: make([]string, 24),
			Data:   make([]int, 24),
		}
		for hour := 0; hour < 24; hour++ {
			chart.Labels[hour] = fmt.Sprintf("%02d:00", hour)
			chart.Data[hour] = hourly[hour]
		}

		writeJSON(w, logger, chart)
	}
}

func bucketsToChart(buckets []dto.Bucket) dto.ChartData {
	chart := dto.ChartData{
		Labels: make([]string, 0, len(buckets)),
		Data:   make([]int, 0, len(buckets)),
	}
	for _, bucket := range buckets {
		chart.Labels = append(chart.Labels, bucket.Label)
		chart.Data = append(chart.Data, bucket.Count)
	}
	return chart
}

func writeJSON(w http.ResponseWriter, logger *logger.Logger, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
