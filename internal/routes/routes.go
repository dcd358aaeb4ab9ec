package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"ppemonitor/internal/config"
	"ppemonitor/internal/handlers"
	"ppemonitor/internal/logger"
	"ppemonitor/internal/repository"
	"ppemonitor/internal/services"
)

// dynamicHTMLHandler serves /path as <staticDir>/path.html if the file
// exists; otherwise 404.
func dynamicHTMLHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" {
			path = "/index"
		}

		filePath := filepath.Join(staticDir, path+".html")

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers the HTTP surface: the live stream and counts, the
// history/dashboard pages and APIs, static files, and the shell pages.
func SetupRoutes(manager *services.Manager, repo repository.EventRepository, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files, including saved snapshots under /static/<SnapshotDir>/
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	// Live pipeline endpoints
	mux.HandleFunc("/video", handlers.VideoStreamHandler(manager, logger))
	mux.HandleFunc("/data", handlers.DataHandler(manager.GetLiveState(), logger))
	mux.HandleFunc("/api/live", handlers.LiveWebsocketHandler(manager.GetHub(), logger))

	// History endpoints
	mux.HandleFunc("/history", handlers.HistoryHandler(repo, cfg, logger))
	mux.HandleFunc("/export", handlers.ExportHandler(repo, logger))
	mux.HandleFunc("/delete/", handlers.DeleteHandler(repo, cfg, logger))

	// Dashboard APIs
	mux.HandleFunc("/api/dashboard_stats", handlers.DashboardStatsHandler(repo, logger))
	mux.HandleFunc("/api/bar_chart_data", handlers.BarChartHandler(repo, logger))
	mux.HandleFunc("/api/status_pie_chart_data", handlers.StatusPieChartHandler(repo, logger))
	mux.HandleFunc("/api/ppe_pie_chart_data", handlers.PPEPieChartHandler(repo, logger))
	mux.HandleFunc("/api/line_chart_data", handlers.LineChartHandler(repo, logger))

	// Shell pages: / -> index.html, /dashboard -> dashboard.html
	mux.HandleFunc("/", dynamicHTMLHandler(cfg.StaticDir))

	return mux
}
