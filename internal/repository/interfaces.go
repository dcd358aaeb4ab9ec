package repository

import (
	"ppemonitor/internal/dto"
	"ppemonitor/internal/model"
)

// EventRepository defines the interface for detection event data operations.
type EventRepository interface {
	// Create operations
	Insert(ev *model.DetectionEvent) (int64, error)

	// Read operations
	GetByID(id int64) (*model.DetectionEvent, error)
	GetPage(filter *dto.EventFilters, limit, offset int) ([]model.DetectionEvent, error)
	GetAll(filter *dto.EventFilters) ([]model.DetectionEvent, error)
	Count(filter *dto.EventFilters) (int, error)
	Stats(filter *dto.EventFilters) (*dto.DashboardStats, error)
	TimeBuckets(filter *dto.EventFilters, timespan string) ([]dto.Bucket, error)
	StatusBreakdown(filter *dto.EventFilters) ([]dto.Bucket, error)
	ClassBreakdown(filter *dto.EventFilters) ([]dto.Bucket, error)
	HourlyToday(filter *dto.EventFilters) ([24]int, error)

	// Delete operations
	Delete(id int64) error
}
