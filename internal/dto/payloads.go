package dto

// DashboardStats is the /api/dashboard_stats payload and the stats block on
// the history page.
type DashboardStats struct {
	TotalRecords         int `json:"total_records"`
	TodayDetections      int `json:"today_detections"`
	CompleteDetections   int `json:"complete_detections"`
	IncompleteDetections int `json:"incomplete_detections"`
}

// Bucket is one labeled count in a grouped aggregation.
type Bucket struct {
	Label string
	Count int
}

// ChartData is the payload shape shared by all chart endpoints.
type ChartData struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}
