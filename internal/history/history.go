// Package history archives completed scans in a local SQLite database so
// past runs stay queryable after the state document is replaced. The
// archive is advisory: a failure to record never fails a scan.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/codelens/driftscan/internal/settings"
	"github.com/codelens/driftscan/internal/state"
)

const dbFileName = "history.db"

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id              TEXT PRIMARY KEY,
	started_at      TEXT NOT NULL,
	completed_at    TEXT,
	status          TEXT NOT NULL,
	drift_count     INTEGER NOT NULL DEFAULT 0,
	gap_count       INTEGER NOT NULL DEFAULT 0,
	work_item_count INTEGER NOT NULL DEFAULT 0,
	critical_count  INTEGER NOT NULL DEFAULT 0,
	report_markdown TEXT
);
CREATE INDEX IF NOT EXISTS idx_scans_started_at ON scans(started_at DESC);
`

// ScanRecord is one archived scan row.
type ScanRecord struct {
	ID            string
	StartedAt     time.Time
	CompletedAt   *time.Time
	Status        string
	DriftCount    int
	GapCount      int
	WorkItemCount int
	CriticalCount int
	HasReport     bool
}

// Archive is the scan history database for one project root.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the project's history database.
func Open(root string) (*Archive, error) {
	dir := filepath.Join(root, settings.DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, dbFileName)
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordScan upserts one scan's summary row. Re-recording the same scan ID
// overwrites the previous row.
func (a *Archive) RecordScan(ctx context.Context, st *state.ScanState) error {
	var completedAt any
	if st.CompletedAt != nil {
		completedAt = st.CompletedAt.UTC().Format(time.RFC3339)
	}

	var driftCount, gapCount, workItemCount, criticalCount int
	var markdown any
	if st.Report != nil {
		driftCount = st.Report.Summary.DriftCount
		gapCount = st.Report.Summary.GapCount
		workItemCount = st.Report.Summary.WorkItemCount
		criticalCount = st.Report.Summary.CriticalCount
		markdown = st.Report.Markdown
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO scans (id, started_at, completed_at, status,
			drift_count, gap_count, work_item_count, critical_count, report_markdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			completed_at = excluded.completed_at,
			status = excluded.status,
			drift_count = excluded.drift_count,
			gap_count = excluded.gap_count,
			work_item_count = excluded.work_item_count,
			critical_count = excluded.critical_count,
			report_markdown = excluded.report_markdown`,
		st.ID, st.StartedAt.UTC().Format(time.RFC3339), completedAt, string(st.Status),
		driftCount, gapCount, workItemCount, criticalCount, markdown)
	if err != nil {
		return fmt.Errorf("recording scan %s: %w", st.ID, err)
	}
	return nil
}

// ListScans returns the most recent scans, newest first.
func (a *Archive) ListScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, started_at, completed_at, status,
			drift_count, gap_count, work_item_count, critical_count,
			report_markdown IS NOT NULL
		FROM scans
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var startedAt string
		var completedAt sql.NullString
		if err := rows.Scan(&rec.ID, &startedAt, &completedAt, &rec.Status,
			&rec.DriftCount, &rec.GapCount, &rec.WorkItemCount, &rec.CriticalCount,
			&rec.HasReport); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if completedAt.Valid {
			if ts, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
				rec.CompletedAt = &ts
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ReportFor returns the archived markdown report for one scan ID.
func (a *Archive) ReportFor(ctx context.Context, id string) (string, error) {
	var markdown sql.NullString
	err := a.db.QueryRowContext(ctx,
		`SELECT report_markdown FROM scans WHERE id = ?`, id).Scan(&markdown)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("scan %s not found in history", id)
	}
	if err != nil {
		return "", fmt.Errorf("loading report for %s: %w", id, err)
	}
	return markdown.String, nil
}
