package core

import (
	"context"
	"errors"
	"time"
)

// ErrImportNotFound is returned when an import run does not exist or belongs
// to another user.
var ErrImportNotFound = errors.New("import not found")

// ImportRun is the audit record of one import.
type ImportRun struct {
	ID           string    `json:"id"`
	UserEmail    string    `json:"user_email"`
	FileName     string    `json:"file_name"`
	VehicleID    string    `json:"vehicle_id"`
	Attempted    int       `json:"attempted"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	Skipped      int       `json:"skipped"`
	UsedFallback bool      `json:"used_fallback"`
	ErrorPreview []string  `json:"error_preview,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ImportRecorder stores import audit records.
type ImportRecorder interface {
	RecordImport(ctx context.Context, run ImportRun) error
	ListImports(ctx context.Context, userEmail string, limit int) ([]ImportRun, error)
	GetImport(ctx context.Context, userEmail, id string) (*ImportRun, error)
	PurgeImports(ctx context.Context, olderThan time.Time) (int64, error)
}

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordImport(context.Context, ImportRun) error { return nil }

func (NoopRecorder) ListImports(context.Context, string, int) ([]ImportRun, error) {
	return nil, nil
}

func (NoopRecorder) GetImport(context.Context, string, string) (*ImportRun, error) {
	return nil, ErrImportNotFound
}

func (NoopRecorder) PurgeImports(context.Context, time.Time) (int64, error) { return 0, nil }

// newImportRun builds the audit record for a finished import.
func newImportRun(ctx context.Context, owner string, result *ImportResult) ImportRun {
	return ImportRun{
		ID:           result.ImportID,
		UserEmail:    owner,
		FileName:     result.FileName,
		VehicleID:    result.VehicleID,
		Attempted:    result.Attempted,
		Succeeded:    result.Succeeded,
		Failed:       result.Failed,
		Skipped:      result.Skipped,
		UsedFallback: result.UsedFallback,
		ErrorPreview: result.Preview,
		IPAddress:    GetIPAddressFromContext(ctx),
		UserAgent:    GetUserAgentFromContext(ctx),
		CreatedAt:    time.Now().UTC(),
	}
}
