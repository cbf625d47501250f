// ABOUTME: Import bookkeeping for external sources such as Google Contacts
// ABOUTME: Tracks per-service status and which source records were already imported
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sync statuses.
const (
	SyncIdle    = "idle"
	SyncRunning = "syncing"
	SyncError   = "error"
)

// SyncState is the import status for one service.
type SyncState struct {
	Service      string
	LastSyncTime *time.Time
	Status       string
	ErrorMessage string
	UpdatedAt    time.Time
}

// ImportLog records import state and imported source ids.
type ImportLog struct {
	db *sql.DB
}

// NewImportLog creates a new import log.
func NewImportLog(db *sql.DB) *ImportLog {
	return &ImportLog{db: db}
}

// State returns the sync state for a service, or nil when it never ran.
func (l *ImportLog) State(ctx context.Context, service string) (*SyncState, error) {
	var state SyncState
	var lastSync sql.NullTime
	var errMsg sql.NullString

	err := l.db.QueryRowContext(ctx, `
		SELECT service, last_sync_time, status, error_message, updated_at
		FROM sync_state WHERE service = ?
	`, service).Scan(&state.Service, &lastSync, &state.Status, &errMsg, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	state.LastSyncTime = timePtr(lastSync)
	state.ErrorMessage = errMsg.String
	return &state, nil
}

// States returns every known service state ordered by name.
func (l *ImportLog) States(ctx context.Context) ([]SyncState, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT service, last_sync_time, status, error_message, updated_at
		FROM sync_state ORDER BY service
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []SyncState
	for rows.Next() {
		var state SyncState
		var lastSync sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(&state.Service, &lastSync, &state.Status, &errMsg, &state.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}
		state.LastSyncTime = timePtr(lastSync)
		state.ErrorMessage = errMsg.String
		states = append(states, state)
	}
	return states, rows.Err()
}

func (l *ImportLog) setStatus(ctx context.Context, service, status string, errMsg string, finished *time.Time) error {
	now := time.Now().UTC()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO sync_state (service, last_sync_time, status, error_message, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			last_sync_time = COALESCE(excluded.last_sync_time, sync_state.last_sync_time),
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at
	`, service, nullTime(finished), status, nullString(errMsg), now)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	return nil
}

// MarkRunning flags a service as mid-import.
func (l *ImportLog) MarkRunning(ctx context.Context, service string) error {
	return l.setStatus(ctx, service, SyncRunning, "", nil)
}

// MarkDone records a successful import finishing at at.
func (l *ImportLog) MarkDone(ctx context.Context, service string, at time.Time) error {
	return l.setStatus(ctx, service, SyncIdle, "", &at)
}

// MarkFailed records the error that stopped an import.
func (l *ImportLog) MarkFailed(ctx context.Context, service string, cause error) error {
	return l.setStatus(ctx, service, SyncError, cause.Error(), nil)
}

// Seen reports whether a source record was already imported.
func (l *ImportLog) Seen(ctx context.Context, service, sourceID string) (bool, error) {
	var count int
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sync_log WHERE source_service = ? AND source_id = ?
	`, service, sourceID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check sync log: %w", err)
	}
	return count > 0, nil
}

// Record remembers that sourceID became entityID.
func (l *ImportLog) Record(ctx context.Context, service, sourceID, entityType, entityID string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO sync_log (id, source_service, source_id, entity_type, entity_id, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_service, source_id) DO NOTHING
	`, uuid.New().String(), service, sourceID, entityType, entityID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create sync log: %w", err)
	}
	return nil
}
