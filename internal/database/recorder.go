package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder is the Postgres core.ImportRecorder.
type Recorder struct {
	pool *pgxpool.Pool
}

var _ core.ImportRecorder = (*Recorder)(nil)

// NewRecorder creates a Recorder on pool.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

const runColumns = `id, user_email, file_name, vehicle_id, attempted, succeeded, failed,
	skipped, used_fallback, error_preview, ip_address, user_agent, created_at`

// RecordImport inserts one import run.
func (r *Recorder) RecordImport(ctx context.Context, run core.ImportRun) error {
	id, err := toPgUUID(run.ID)
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	preview := run.ErrorPreview
	if preview == nil {
		preview = []string{}
	}
	previewJSON, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.pool.Exec(ctx, `INSERT INTO import_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, run.UserEmail, run.FileName, run.VehicleID,
		run.Attempted, run.Succeeded, run.Failed, run.Skipped, run.UsedFallback,
		previewJSON, parseIP(run.IPAddress), toPgText(run.UserAgent), createdAt,
	)
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return nil
}

// ListImports returns the user's newest runs first.
func (r *Recorder) ListImports(ctx context.Context, userEmail string, limit int) ([]core.ImportRun, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+runColumns+` FROM import_runs
		WHERE user_email = $1 ORDER BY created_at DESC LIMIT $2`, userEmail, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]core.ImportRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetImport returns one run owned by userEmail.
func (r *Recorder) GetImport(ctx context.Context, userEmail, id string) (*core.ImportRun, error) {
	pgID, err := toPgUUID(id)
	if err != nil {
		return nil, core.ErrImportNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM import_runs
		WHERE id = $1 AND user_email = $2`, pgID, userEmail)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrImportNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// PurgeImports deletes runs created before olderThan.
func (r *Recorder) PurgeImports(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM import_runs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge imports: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanRun scans one import_runs row selected with runColumns.
func scanRun(row pgx.Row) (*core.ImportRun, error) {
	var (
		id           pgtype.UUID
		run          core.ImportRun
		errorPreview []byte
		ipAddress    *netip.Addr
		userAgent    pgtype.Text
		createdAt    pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &run.UserEmail, &run.FileName, &run.VehicleID,
		&run.Attempted, &run.Succeeded, &run.Failed, &run.Skipped, &run.UsedFallback,
		&errorPreview, &ipAddress, &userAgent, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	run.ID = pgUUIDToString(id)
	run.CreatedAt = createdAt.Time
	if ipAddress != nil {
		run.IPAddress = ipAddress.String()
	}
	if userAgent.Valid {
		run.UserAgent = userAgent.String
	}
	if len(errorPreview) > 0 {
		_ = json.Unmarshal(errorPreview, &run.ErrorPreview)
	}
	return &run, nil
}

func toPgUUID(s string) (pgtype.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: u, Valid: true}, nil
}

func pgUUIDToString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// parseIP returns nil for empty or malformed addresses so they store as NULL.
func parseIP(s string) *netip.Addr {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return nil
	}
	return &addr
}
