package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"collegeoffice_go/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SessionSourceAttendance = "attendance"
	SessionSourceExplicit   = "explicit"
)

// SessionKey identifies one meeting of a recurring schedule.
type SessionKey struct {
	ScheduleID uint
	Date       string
}

// SessionStatus is the reconciled status of one class meeting.
type SessionStatus struct {
	ScheduleID uint        `json:"scheduleId"`
	Date       models.Date `json:"date"`
	Status     string      `json:"status"`
	Notes      string      `json:"notes,omitempty"`
	Source     string      `json:"source"`
}

// SessionRange selects sessions between From and To inclusive.
type SessionRange struct {
	From       models.Date
	To         models.Date
	ScheduleID uint
}

// SessionSource reads the two signals that decide whether a class was held.
type SessionSource interface {
	// AttendedSessions returns distinct (schedule, date) pairs with attendance rows.
	AttendedSessions(ctx context.Context, r SessionRange) ([]SessionKey, error)
	// SessionOverrides returns administrator-set statuses.
	SessionOverrides(ctx context.Context, r SessionRange) ([]models.ClassSession, error)
}

// ReconcileSessions merges inferred and explicit session statuses. Inferred
// sessions are Completed; an explicit override always replaces them.
func ReconcileSessions(inferred []SessionKey, overrides []models.ClassSession) []SessionStatus {
	merged := make(map[SessionKey]SessionStatus, len(inferred)+len(overrides))
	for _, k := range inferred {
		d, err := models.ParseDate(k.Date)
		if err != nil {
			continue
		}
		merged[SessionKey{ScheduleID: k.ScheduleID, Date: d.String()}] = SessionStatus{ScheduleID: k.ScheduleID, Date: d, Status: models.SessionCompleted, Source: SessionSourceAttendance}
	}
	for _, o := range overrides {
		k := SessionKey{ScheduleID: o.ScheduleID, Date: o.Date.String()}
		merged[k] = SessionStatus{ScheduleID: o.ScheduleID, Date: o.Date, Status: o.Status, Notes: o.Notes, Source: SessionSourceExplicit}
	}

	out := make([]SessionStatus, 0, len(merged))
	for _, s := range merged {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Date.String(), out[j].Date.String()
		if di != dj {
			return di < dj
		}
		return out[i].ScheduleID < out[j].ScheduleID
	})
	return out
}

var ErrInvalidSessionStatus = errors.New("status must be Completed or Cancelled")

// SessionService answers and records class session statuses.
type SessionService struct {
	db     *gorm.DB
	source SessionSource
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db, source: &gormSessionSource{db: db}}
}

// NewSessionServiceWithSource lets tests replace the database reads.
func NewSessionServiceWithSource(db *gorm.DB, source SessionSource) *SessionService {
	return &SessionService{db: db, source: source}
}

// List returns the reconciled statuses for the range.
func (s *SessionService) List(ctx context.Context, r SessionRange) ([]SessionStatus, error) {
	if r.To.Before(r.From.Time) {
		return nil, fmt.Errorf("range end %s precedes start %s", r.To, r.From)
	}
	inferred, err := s.source.AttendedSessions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("load attended sessions: %w", err)
	}
	overrides, err := s.source.SessionOverrides(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("load session overrides: %w", err)
	}
	return ReconcileSessions(inferred, overrides), nil
}

// SetStatus upserts the explicit status for (schedule, date).
func (s *SessionService) SetStatus(ctx context.Context, session *models.ClassSession) error {
	if session.Status != models.SessionCompleted && session.Status != models.SessionCancelled {
		return ErrInvalidSessionStatus
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "schedule_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "notes", "updated_at"}),
	}).Create(session).Error
}

// ClearStatus removes an explicit override so the inferred status applies again.
// It reports whether a row was removed.
func (s *SessionService) ClearStatus(ctx context.Context, scheduleID uint, date models.Date) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("schedule_id = ? AND date = ?", scheduleID, date).
		Delete(&models.ClassSession{})
	return res.RowsAffected > 0, res.Error
}

type gormSessionSource struct {
	db *gorm.DB
}

func (g *gormSessionSource) AttendedSessions(ctx context.Context, r SessionRange) ([]SessionKey, error) {
	query := `SELECT DISTINCT schedule_id, to_char(date, 'YYYY-MM-DD') AS date
		FROM class_attendance WHERE date BETWEEN ? AND ?`
	args := []interface{}{r.From, r.To}
	if r.ScheduleID != 0 {
		query += " AND schedule_id = ?"
		args = append(args, r.ScheduleID)
	}
	var keys []SessionKey
	err := g.db.WithContext(ctx).Raw(query, args...).Scan(&keys).Error
	return keys, err
}

func (g *gormSessionSource) SessionOverrides(ctx context.Context, r SessionRange) ([]models.ClassSession, error) {
	q := g.db.WithContext(ctx).Where("date BETWEEN ? AND ?", r.From, r.To)
	if r.ScheduleID != 0 {
		q = q.Where("schedule_id = ?", r.ScheduleID)
	}
	var rows []models.ClassSession
	err := q.Order("date ASC, schedule_id ASC").Find(&rows).Error
	return rows, err
}
