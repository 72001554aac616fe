package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/younsl/ebsconvert/internal/models"
)

type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_audit_records",
		sql: `CREATE TABLE audit_records (
            volume_id          TEXT NOT NULL,
            logged_at          TEXT NOT NULL,
            run_id             TEXT,
            instance_id        TEXT,
            prev_volume_type   TEXT NOT NULL,
            target_volume_type TEXT,
            size_gib           INTEGER NOT NULL,
            availability_zone  TEXT NOT NULL,
            region             TEXT NOT NULL,
            tags_json          TEXT,
            conversion_status  TEXT NOT NULL,
            status_message     TEXT,
            last_checked_at    TEXT,
            PRIMARY KEY (volume_id, logged_at)
        )`,
	},
	{
		version: "002_run_index",
		sql:     `CREATE INDEX idx_audit_records_run ON audit_records (run_id)`,
	},
}

// SQLiteStore keeps audit records in a local SQLite database
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and applies migrations
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) applyMigrations(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version).Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

// Put writes a new record, replacing any record with the same key
func (s *SQLiteStore) Put(ctx context.Context, record models.AuditRecord) error {
	tagsJSON, err := marshalTags(record.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO audit_records (
            volume_id, logged_at, run_id, instance_id, prev_volume_type, target_volume_type,
            size_gib, availability_zone, region, tags_json, conversion_status, status_message, last_checked_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.VolumeID,
		record.LoggedAt,
		nullableString(record.RunID),
		nullableString(record.InstanceID),
		record.PrevVolumeType,
		nullableString(record.TargetVolumeType),
		record.Size,
		record.AvailabilityZone,
		record.Region,
		tagsJSON,
		string(record.ConversionStatus),
		nullableString(record.StatusMessage),
		nullableString(record.LastCheckedAt),
	)
	if err != nil {
		return fmt.Errorf("insert audit record %s: %w", record.VolumeID, err)
	}
	return nil
}

// UpdateStatus moves an existing record to update.Status. It returns
// ErrRecordNotFound when no record has the update's key.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, update models.StatusUpdate) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE audit_records
            SET conversion_status = ?,
                last_checked_at = ?,
                status_message = COALESCE(?, status_message)
          WHERE volume_id = ? AND logged_at = ?`,
		string(update.Status),
		update.CheckedAt,
		nullableString(update.StatusMessage),
		update.VolumeID,
		update.LoggedAt,
	)
	if err != nil {
		return fmt.Errorf("update audit record %s: %w", update.VolumeID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update audit record %s at %s: %w", update.VolumeID, update.LoggedAt, ErrRecordNotFound)
	}
	return nil
}

// History returns every record of a volume, oldest first
func (s *SQLiteStore) History(ctx context.Context, volumeID string) ([]models.AuditRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT volume_id, logged_at, run_id, instance_id, prev_volume_type, target_volume_type,
                size_gib, availability_zone, region, tags_json, conversion_status, status_message, last_checked_at
           FROM audit_records
          WHERE volume_id = ?
          ORDER BY logged_at`,
		volumeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var records []models.AuditRecord
	for rows.Next() {
		var (
			record                                                 models.AuditRecord
			runID, instanceID, targetType, tagsJSON, message, last sql.NullString
			status                                                 string
		)
		if err := rows.Scan(
			&record.VolumeID,
			&record.LoggedAt,
			&runID,
			&instanceID,
			&record.PrevVolumeType,
			&targetType,
			&record.Size,
			&record.AvailabilityZone,
			&record.Region,
			&tagsJSON,
			&status,
			&message,
			&last,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		record.RunID = runID.String
		record.InstanceID = instanceID.String
		record.TargetVolumeType = targetType.String
		record.ConversionStatus = models.ConversionStatus(status)
		record.StatusMessage = message.String
		record.LastCheckedAt = last.String
		if tagsJSON.Valid {
			if err := json.Unmarshal([]byte(tagsJSON.String), &record.Tags); err != nil {
				return nil, fmt.Errorf("decode tags of %s: %w", record.VolumeID, err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit history: %w", err)
	}
	return records, nil
}

func marshalTags(tags map[string]string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
