package database

import (
	"errors"
	"strings"
	"testing"
)

func applied(ms ...Migration) []AppliedMigration {
	out := make([]AppliedMigration, 0, len(ms))
	for _, m := range ms {
		out = append(out, AppliedMigration{Version: m.Version, Name: m.Name, Checksum: m.Checksum()})
	}
	return out
}

func TestPendingOrdersByVersion(t *testing.T) {
	all := []Migration{
		{Version: 3, Name: "c", SQL: "SELECT 3"},
		{Version: 1, Name: "a", SQL: "SELECT 1"},
		{Version: 2, Name: "b", SQL: "SELECT 2"},
	}

	pending, err := Pending(all, applied(all[1]))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 2 || pending[0].Version != 2 || pending[1].Version != 3 {
		t.Fatalf("unexpected pending order: %+v", pending)
	}

	pending, err = Pending(all, applied(all...))
	if err != nil || len(pending) != 0 {
		t.Fatalf("expected nothing pending, got %+v, %v", pending, err)
	}
}

func TestPendingChecksumMismatch(t *testing.T) {
	original := Migration{Version: 1, Name: "a", SQL: "CREATE TABLE a (id INT)"}
	edited := Migration{Version: 1, Name: "a", SQL: "CREATE TABLE a (id BIGINT)"}

	_, err := Pending([]Migration{edited}, applied(original))
	var mismatch *ChecksumMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ChecksumMismatchError, got %v", err)
	}
	if mismatch.Version != 1 || mismatch.Stored != original.Checksum() {
		t.Fatalf("unexpected mismatch details: %+v", mismatch)
	}
}

func TestPendingRejectsBadHistory(t *testing.T) {
	tests := []struct {
		name    string
		all     []Migration
		applied []AppliedMigration
		wantErr string
	}{
		{
			name:    "duplicate version",
			all:     []Migration{{Version: 1, SQL: "a"}, {Version: 1, SQL: "b"}},
			wantErr: "duplicate migration version 1",
		},
		{
			name:    "older than applied",
			all:     []Migration{{Version: 1, Name: "late", SQL: "a"}, {Version: 2, Name: "b", SQL: "b"}},
			applied: applied(Migration{Version: 2, Name: "b", SQL: "b"}),
			wantErr: "older than applied version 2",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Pending(tc.all, tc.applied)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestShippedMigrationsAreOrdered(t *testing.T) {
	pending, err := Pending(Migrations, nil)
	if err != nil {
		t.Fatalf("shipped migrations invalid: %v", err)
	}
	for i, m := range pending {
		if m.Version != i+1 {
			t.Fatalf("expected contiguous versions, got %d at %d", m.Version, i)
		}
		if strings.Contains(m.SQL, "?") {
			t.Fatalf("migration %d contains a bind placeholder", m.Version)
		}
	}
}

func TestChecksumMismatchErrorShortSums(t *testing.T) {
	err := &ChecksumMismatchError{Version: 4, Name: "x", Stored: "abc", Expected: "0123456789abcdef"}
	if !strings.Contains(err.Error(), "ledger checksum abc, current 0123456789ab") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
