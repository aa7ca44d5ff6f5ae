package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration is one ordered schema step. Once applied its SQL must not change;
// the stored checksum detects edits.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Checksum is the hex SHA-256 of the migration SQL.
func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(m.SQL))
	return hex.EncodeToString(sum[:])
}

// AppliedMigration is a row of the schema_migrations ledger.
type AppliedMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	Checksum  string
	AppliedAt time.Time
}

func (AppliedMigration) TableName() string { return "schema_migrations" }

// MigrationStatus pairs a known migration with its ledger state.
type MigrationStatus struct {
	Version   int        `json:"version"`
	Name      string     `json:"name"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
	Checksum  string     `json:"checksum"`
}

// ChecksumMismatchError reports an applied migration whose SQL has changed.
type ChecksumMismatchError struct {
	Version  int
	Name     string
	Stored   string
	Expected string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("migration %d (%s) was modified after being applied: ledger checksum %s, current %s",
		e.Version, e.Name, short(e.Stored), short(e.Expected))
}

func short(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

// migrationLockKey serialises concurrent migrators through a PostgreSQL advisory lock.
const migrationLockKey = 72541902

// Pending validates the migration list against the ledger and returns the
// migrations still to apply, in version order.
func Pending(all []Migration, applied []AppliedMigration) ([]Migration, error) {
	sorted := make([]Migration, len(all))
	copy(sorted, all)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Version == sorted[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", sorted[i].Version)
		}
	}

	done := make(map[int]AppliedMigration, len(applied))
	for _, a := range applied {
		done[a.Version] = a
	}

	var pending []Migration
	for _, m := range sorted {
		a, ok := done[m.Version]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if a.Checksum != m.Checksum() {
			return nil, &ChecksumMismatchError{Version: m.Version, Name: m.Name, Stored: a.Checksum, Expected: m.Checksum()}
		}
	}

	// A new migration slotted below the last applied version would run out of order.
	if len(pending) > 0 && len(applied) > 0 {
		maxApplied := 0
		for _, a := range applied {
			if a.Version > maxApplied {
				maxApplied = a.Version
			}
		}
		if pending[0].Version < maxApplied {
			return nil, fmt.Errorf("migration %d (%s) is older than applied version %d", pending[0].Version, pending[0].Name, maxApplied)
		}
	}
	return pending, nil
}

// Migrator applies migrations against the schema_migrations ledger.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB, migrations []Migration) *Migrator {
	if migrations == nil {
		migrations = Migrations
	}
	return &Migrator{db: db, migrations: migrations}
}

func (m *Migrator) ensureLedger(ctx context.Context) error {
	return m.db.WithContext(ctx).Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		checksum CHAR(64) NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error
}

func (m *Migrator) applied(ctx context.Context, tx *gorm.DB) ([]AppliedMigration, error) {
	var rows []AppliedMigration
	err := tx.WithContext(ctx).Order("version ASC").Find(&rows).Error
	return rows, err
}

// Up applies every pending migration. Each migration and its ledger row
// commit in the same transaction.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	if err := m.ensureLedger(ctx); err != nil {
		return nil, fmt.Errorf("create migration ledger: %w", err)
	}

	var done []Migration
	for {
		var next *Migration
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", migrationLockKey).Error; err != nil {
				return fmt.Errorf("acquire migration lock: %w", err)
			}
			applied, err := m.applied(ctx, tx)
			if err != nil {
				return fmt.Errorf("read migration ledger: %w", err)
			}
			pending, err := Pending(m.migrations, applied)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				return nil
			}
			mig := pending[0]
			if err := tx.Exec(mig.SQL).Error; err != nil {
				return fmt.Errorf("apply migration %d (%s): %w", mig.Version, mig.Name, err)
			}
			row := AppliedMigration{Version: mig.Version, Name: mig.Name, Checksum: mig.Checksum(), AppliedAt: time.Now().UTC()}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("record migration %d: %w", mig.Version, err)
			}
			next = &mig
			return nil
		})
		if err != nil {
			return done, err
		}
		if next == nil {
			break
		}
		logrus.WithFields(logrus.Fields{"version": next.Version, "name": next.Name}).Info("Applied migration")
		done = append(done, *next)
	}

	if len(done) == 0 {
		logrus.Info("Database schema is up to date")
	}
	return done, nil
}

// Status lists every known migration with its ledger state.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureLedger(ctx); err != nil {
		return nil, err
	}
	applied, err := m.applied(ctx, m.db)
	if err != nil {
		return nil, err
	}
	byVersion := make(map[int]AppliedMigration, len(applied))
	for _, a := range applied {
		byVersion[a.Version] = a
	}

	sorted := make([]Migration, len(m.migrations))
	copy(sorted, m.migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	out := make([]MigrationStatus, 0, len(sorted))
	for _, mig := range sorted {
		st := MigrationStatus{Version: mig.Version, Name: mig.Name, Checksum: mig.Checksum()}
		if a, ok := byVersion[mig.Version]; ok {
			at := a.AppliedAt
			st.Applied = true
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}
