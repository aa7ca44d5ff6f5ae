package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound, "Thing not found"},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), http.StatusNotFound, "Thing not found"},
		{"pgx unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict, "Duplicate record"},
		{"pq unique", &pq.Error{Code: "23505"}, http.StatusConflict, "Duplicate record"},
		{"pgx foreign key", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), http.StatusBadRequest, "Referenced record not found"},
		{"bad date", &pgconn.PgError{Code: "22007"}, http.StatusBadRequest, "Invalid value"},
		{"other", errors.New("connection refused"), http.StatusInternalServerError, "Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := mapDBError(tt.err, "Thing not found")
			if status != tt.status || msg != tt.message {
				t.Fatalf("mapDBError = (%d, %q), want (%d, %q)", status, msg, tt.status, tt.message)
			}
		})
	}
}
