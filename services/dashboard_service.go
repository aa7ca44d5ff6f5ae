package services

import (
	"context"
	"time"

	"collegeoffice_go/database"
	"collegeoffice_go/models"

	"github.com/patrickmn/go-cache"
)

const dashboardCacheKey = "dashboard:summary"

type RecentStudent struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardSummary struct {
	TotalStudents    int64           `json:"totalStudents"`
	TotalTeachers    int64           `json:"totalTeachers"`
	TotalSubjects    int64           `json:"totalSubjects"`
	RecentActivities []RecentStudent `json:"recentActivities"`
}

// DashboardService caches the office summary counters in process.
type DashboardService struct {
	db    *database.Database
	cache *cache.Cache
}

func NewDashboardService(db *database.Database, ttl time.Duration) *DashboardService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DashboardService{db: db, cache: cache.New(ttl, 2*ttl)}
}

// Summary returns the cached summary, loading it on a miss.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	if v, ok := s.cache.Get(dashboardCacheKey); ok {
		return v.(*DashboardSummary), nil
	}

	summary := &DashboardSummary{RecentActivities: []RecentStudent{}}
	db := s.db.Conn(ctx)
	if err := db.Model(&models.Student{}).Where("status = ?", "Active").Count(&summary.TotalStudents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Teacher{}).Where("status = ?", "Active").Count(&summary.TotalTeachers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Subject{}).Count(&summary.TotalSubjects).Error; err != nil {
		return nil, err
	}
	err := db.Model(&models.Student{}).Select("name", "created_at").
		Order("created_at DESC").Limit(5).Scan(&summary.RecentActivities).Error
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(dashboardCacheKey, summary)
	return summary, nil
}

// Invalidate drops the cached summary after a write that changes the counters.
func (s *DashboardService) Invalidate() {
	s.cache.Delete(dashboardCacheKey)
}
