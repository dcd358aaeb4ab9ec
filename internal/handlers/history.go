package handlers

import (
	"encoding/csv"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ppemonitor/internal/config"
	"ppemonitor/internal/dto"
	"ppemonitor/internal/logger"
	"ppemonitor/internal/model"
	"ppemonitor/internal/repository"
)

// historyPage is the server-rendered detection history listing with the
// stats block and filter form state.
type historyPage struct {
	Events      []model.DetectionEvent
	Stats       *dto.DashboardStats
	Search      string
	Status      string
	StartDate   string
	EndDate     string
	CurrentPage int
	TotalPages  int
}

var historyTemplate = template.Must(template.New("history").Parse(`<!DOCTYPE html>
<html>
<head><title>Detection History</title><link rel="stylesheet" href="/static/style.css"></head>
<body>
<h1>Detection History</h1>
<div class="stats">
  <span>Total: {{.Stats.TotalRecords}}</span>
  <span>Today: {{.Stats.TodayDetections}}</span>
  <span>Complete: {{.Stats.CompleteDetections}}</span>
  <span>Incomplete: {{.Stats.IncompleteDetections}}</span>
</div>
<form method="get" action="/history">
  <input type="text" name="search" placeholder="Search objects" value="{{.Search}}">
  <select name="status">
    <option value="">All</option>
    <option value="Complete" {{if eq .Status "Complete"}}selected{{end}}>Complete</option>
    <option value="Incomplete" {{if eq .Status "Incomplete"}}selected{{end}}>Incomplete</option>
  </select>
  <input type="date" name="start_date" value="{{.StartDate}}">
  <input type="date" name="end_date" value="{{.EndDate}}">
  <button type="submit">Filter</button>
  <a href="/export?search={{.Search}}&status={{.Status}}&start_date={{.StartDate}}&end_date={{.EndDate}}">Export CSV</a>
</form>
<table>
  <tr><th>ID</th><th>Timestamp</th><th>Detected Objects</th><th>Status</th><th>Snapshot</th><th></th></tr>
  {{range .Events}}
  <tr>
    <td>{{.ID}}</td>
    <td>{{.Timestamp.Format "2006-01-02 15:04:05"}}</td>
    <td>{{.DetectedObjects}}</td>
    <td>{{.Status}}</td>
    <td><a href="/static/{{.ImagePath}}">{{.ImagePath}}</a></td>
    <td><form method="post" action="/delete/{{.ID}}"><button type="submit">Delete</button></form></td>
  </tr>
  {{end}}
</table>
<div class="pagination">Page {{.CurrentPage}} of {{.TotalPages}}</div>
</body>
</html>`))

// HistoryHandler renders the paginated, filterable history page.
func HistoryHandler(repo repository.EventRepository, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		filter := parseEventFilters(q)

		total, err := repo.Count(filter)
		if err != nil {
			logger.Error("Error counting detection events: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		events, err := repo.GetPage(filter, cfg.RecordsPage, (page-1)*cfg.RecordsPage)
		if err != nil {
			logger.Error("Error querying detection events: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		stats, err := repo.Stats(filter)
		if err != nil {
			logger.Error("Error computing history stats: %v", err)
			stats = &dto.DashboardStats{TotalRecords: total}
		}

		data := historyPage{
			Events:      events,
			Stats:       stats,
			Search:      filter.Search,
			Status:      filter.Status,
			StartDate:   q.Get("start_date"),
			EndDate:     q.Get("end_date"),
			CurrentPage: page,
			TotalPages:  totalPages(total, cfg.RecordsPage),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := historyTemplate.Execute(w, data); err != nil {
			logger.Error("Error rendering history page: %v", err)
		}
	}
}

// ExportHandler streams all filtered events as a CSV attachment.
func ExportHandler(repo repository.EventRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := parseEventFilters(r.URL.Query())

		events, err := repo.GetAll(filter)
		if err != nil {
			logger.Error("Error querying events for export: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment;filename=detection_history.csv")

		writer := csv.NewWriter(w)
		writer.Write([]string{"ID", "Timestamp", "Detected Objects", "Status", "Image Path"})
		for _, ev := range events {
			writer.Write([]string{
				strconv.FormatInt(ev.ID, 10),
				ev.Timestamp.Format("2006-01-02 15:04:05"),
				ev.DetectedObjects,
				ev.Status,
				ev.ImagePath,
			})
		}
		writer.Flush()

		if err := writer.Error(); err != nil {
			logger.Error("Error writing CSV export: %v", err)
		}
	}
}

// DeleteHandler removes a detection event and its snapshot file, then
// redirects back to the history page. Unknown ids are a no-op.
func DeleteHandler(repo repository.EventRepository, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/delete/"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid id", http.StatusBadRequest)
			return
		}

		ev, err := repo.GetByID(id)
		if err != nil {
			logger.Error("Error looking up detection event %d: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if ev != nil {
			// Best effort; the row deletion below is authoritative.
			filePath := filepath.Join(cfg.StaticDir, filepath.FromSlash(ev.ImagePath))
			if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
				logger.Error("Failed to delete snapshot %s: %v", filePath, err)
			}

			if err := repo.Delete(id); err != nil {
				logger.Error("Failed to delete detection event %d: %v", id, err)
			} else {
				logger.Info("Deleted detection event %d", id)
			}
		}

		http.Redirect(w, r, "/history", http.StatusSeeOther)
	}
}
