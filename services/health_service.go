package services

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"collegeoffice_go/config"
	"collegeoffice_go/database"
)

const (
	overallStatusOK       = "ok"
	overallStatusDegraded = "degraded"
	overallStatusCritical = "critical"

	dependencyStatusUp       = "up"
	dependencyStatusDown     = "down"
	dependencyStatusDisabled = "disabled"

	defaultServiceName = "College Office API"
	defaultVersion     = "1.0.0"
	defaultTimeout     = 1500 * time.Millisecond
)

// Pinger is implemented by optional dependencies reported on /health.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthService aggregates application health information for reporting endpoints.
type HealthService struct {
	db          *database.Database
	cfg         *config.Config
	extra       []Pinger
	serviceName string
	version     string
	startTime   time.Time
	timeout     time.Duration
}

// HealthReport represents the JSON response for health endpoints.
type HealthReport struct {
	Status        string             `json:"status"`
	Service       string             `json:"service"`
	Version       string             `json:"version"`
	Environment   string             `json:"environment"`
	Time          time.Time          `json:"time"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	UptimeHuman   string             `json:"uptime_human"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Metrics       HealthMetrics      `json:"metrics"`
	Flags         HealthFlags        `json:"flags"`
	System        HealthSystem       `json:"system"`
}

// DependencyStatus captures the health of a single external dependency.
type DependencyStatus struct {
	Name      string                 `json:"name"`
	Status    string                 `json:"status"`
	LatencyMs int64                  `json:"latency_ms"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

type HealthMetrics struct {
	Goroutines int            `json:"goroutines"`
	HeapBytes  uint64         `json:"heap_alloc_bytes"`
	SysBytes   uint64         `json:"sys_bytes"`
	NumGC      uint32         `json:"num_gc"`
	Database   *DatabaseStats `json:"database,omitempty"`
}

// DatabaseStats captures statistics from the SQL connection pool.
type DatabaseStats struct {
	OpenConnections    int   `json:"open_connections"`
	InUse              int   `json:"in_use"`
	Idle               int   `json:"idle"`
	WaitCount          int64 `json:"wait_count"`
	WaitDurationMs     int64 `json:"wait_duration_ms"`
	MaxOpenConnections int   `json:"max_open_connections"`
}

type HealthFlags struct {
	SkipMigrate         bool   `json:"skip_migrate"`
	RequireAuth         bool   `json:"require_auth"`
	UseRedisActivityLog bool   `json:"use_redis_activity_log"`
	StorageDriver       string `json:"storage_driver"`
}

type HealthSystem struct {
	GoVersion string `json:"go_version"`
	GoOS      string `json:"go_os"`
	GoArch    string `json:"go_arch"`
}

// NewHealthService creates a HealthService; extra dependencies such as the
// upload store are reported as degraded when they fail.
func NewHealthService(db *database.Database, cfg *config.Config, serviceName, version string, extra ...Pinger) *HealthService {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = defaultServiceName
	}
	if strings.TrimSpace(version) == "" {
		version = defaultVersion
	}
	return &HealthService{
		db:          db,
		cfg:         cfg,
		extra:       extra,
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
		timeout:     defaultTimeout,
	}
}

func (s *HealthService) SetStartTime(t time.Time) {
	if !t.IsZero() {
		s.startTime = t
	}
}

// GetHealthReport collects the current health information.
func (s *HealthService) GetHealthReport(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report := HealthReport{
		Status:      overallStatusOK,
		Service:     s.serviceName,
		Version:     s.version,
		Environment: s.environment(),
		Time:        time.Now().UTC(),
	}

	uptime := time.Since(s.startTime)
	if uptime < 0 {
		uptime = 0
	}
	report.UptimeSeconds = uptime.Seconds()
	report.UptimeHuman = humanizeDuration(uptime)

	dbDep, dbMetrics := s.checkDatabase(ctx)
	report.Status = combineStatus(report.Status, dbDep.overall)
	report.Dependencies = append(report.Dependencies, dbDep.DependencyStatus)

	redisDep := s.checkRedis(ctx)
	report.Status = combineStatus(report.Status, redisDep.overall)
	report.Dependencies = append(report.Dependencies, redisDep.DependencyStatus)

	for _, p := range s.extra {
		dep := checkPinger(ctx, p)
		report.Status = combineStatus(report.Status, dep.overall)
		report.Dependencies = append(report.Dependencies, dep.DependencyStatus)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	report.Metrics = HealthMetrics{
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapAlloc,
		SysBytes:   mem.Sys,
		NumGC:      mem.NumGC,
		Database:   dbMetrics,
	}
	if s.cfg != nil {
		report.Flags = HealthFlags{
			SkipMigrate:         s.cfg.SkipMigrate,
			RequireAuth:         s.cfg.RequireAuth,
			UseRedisActivityLog: s.cfg.UseRedisActivityLog,
			StorageDriver:       s.cfg.StorageDriver,
		}
	}
	report.System = HealthSystem{GoVersion: runtime.Version(), GoOS: runtime.GOOS, GoArch: runtime.GOARCH}
	return report
}

// HTTPStatusForOverall maps a health status to an HTTP status code.
func (s *HealthService) HTTPStatusForOverall(status string) int {
	if status == overallStatusCritical {
		return 503
	}
	return 200
}

type probe struct {
	DependencyStatus
	overall string
}

func (s *HealthService) checkDatabase(ctx context.Context) (probe, *DatabaseStats) {
	p := probe{DependencyStatus: DependencyStatus{Name: "postgres"}, overall: overallStatusOK}
	if s.db == nil || s.db.DB == nil {
		p.Status, p.Error, p.overall = dependencyStatusDown, "database connection not initialised", overallStatusCritical
		return p, nil
	}

	sqlDB, err := s.db.DB.DB()
	if err != nil {
		p.Status, p.Error, p.overall = dependencyStatusDown, fmt.Sprintf("sql DB handle error: %v", err), overallStatusCritical
		return p, nil
	}

	start := time.Now()
	err = sqlDB.PingContext(ctx)
	p.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		p.Status, p.Error, p.overall = dependencyStatusDown, err.Error(), overallStatusCritical
		return p, nil
	}

	p.Status = dependencyStatusUp
	stats := sqlDB.Stats()
	return p, &DatabaseStats{
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDurationMs:     stats.WaitDuration.Milliseconds(),
		MaxOpenConnections: stats.MaxOpenConnections,
	}
}

func (s *HealthService) checkRedis(ctx context.Context) probe {
	p := probe{DependencyStatus: DependencyStatus{Name: "redis"}, overall: overallStatusOK}
	wanted := s.cfg != nil && s.cfg.UseRedisActivityLog

	if s.db == nil || s.db.Redis == nil {
		if wanted {
			p.Status, p.Error, p.overall = dependencyStatusDown, "redis client not initialised", overallStatusDegraded
		} else {
			p.Status = dependencyStatusDisabled
		}
		return p
	}

	start := time.Now()
	err := s.db.Redis.Ping(ctx).Err()
	p.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		p.Status, p.Error = dependencyStatusDown, err.Error()
		if wanted {
			p.overall = overallStatusDegraded
		}
		return p
	}

	p.Status = dependencyStatusUp
	mode := "optional"
	if wanted {
		mode = "activity_log"
	}
	p.Details = map[string]interface{}{"address": s.db.Redis.Options().Addr, "mode": mode}
	return p
}

func checkPinger(ctx context.Context, pinger Pinger) probe {
	p := probe{DependencyStatus: DependencyStatus{Name: pinger.Name()}, overall: overallStatusOK}
	start := time.Now()
	err := pinger.Ping(ctx)
	p.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		p.Status, p.Error, p.overall = dependencyStatusDown, err.Error(), overallStatusDegraded
		return p
	}
	p.Status = dependencyStatusUp
	return p
}

func (s *HealthService) environment() string {
	if s.cfg == nil || strings.TrimSpace(s.cfg.AppEnv) == "" {
		return "unknown"
	}
	return s.cfg.AppEnv
}

func combineStatus(current, candidate string) string {
	order := map[string]int{
		overallStatusOK:       0,
		overallStatusDegraded: 1,
		overallStatusCritical: 2,
	}
	if _, ok := order[current]; !ok {
		current = overallStatusOK
	}
	if v, ok := order[candidate]; ok && v > order[current] {
		return candidate
	}
	return current
}

func humanizeDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d %= 24 * time.Hour
	hours := d / time.Hour
	d %= time.Hour
	minutes := d / time.Minute
	seconds := (d % time.Minute) / time.Second

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
