package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/gaslog/internal/logging"
	"github.com/JonMunkholm/gaslog/internal/metrics"
	"github.com/google/uuid"
)

// DefaultImportTimeout is the maximum duration for one import.
const DefaultImportTimeout = 5 * time.Minute

// previewSampleSize is how many converted entries a preview returns.
const previewSampleSize = 10

// ServiceConfig holds the import settings the Service needs.
// Zero values fall back to package defaults.
type ServiceConfig struct {
	MaxConcurrent      int
	MaxWaitTime        time.Duration
	Timeout            time.Duration
	ErrorPreview       int
	NearEmptyThreshold float64
}

// Service runs imports end to end: admission, decoding, parsing, mapping,
// persistence and audit.
type Service struct {
	cfg      ServiceConfig
	limiter  *ImportLimiter
	recorder ImportRecorder
	now      func() time.Time
}

// ImportRequest is one uploaded file to import.
type ImportRequest struct {
	Owner     string // account email; one import per owner at a time
	FileName  string
	Data      []byte
	VehicleID string
	Overrides map[string]FieldKey
}

// NewService creates a new Service instance. A nil recorder disables the
// audit log.
func NewService(cfg ServiceConfig, recorder ImportRecorder) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultImportTimeout
	}
	if cfg.ErrorPreview <= 0 {
		cfg.ErrorPreview = DefaultErrorPreview
	}
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	return &Service{
		cfg:      cfg,
		limiter:  NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		recorder: recorder,
		now:      time.Now,
	}
}

func (s *Service) converter() Converter {
	return Converter{NearEmptyThreshold: s.cfg.NearEmptyThreshold, Now: s.now}
}

// Import decodes, parses and persists req.Data into store.
//
// The result is returned alongside the error when persistence was cut short
// by an AuthError, so callers can report what already landed.
func (s *Service) Import(ctx context.Context, store EntryStore, req ImportRequest) (*ImportResult, error) {
	if req.VehicleID == "" {
		return nil, ErrNoVehicle
	}

	release, err := s.limiter.Acquire(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	importID := uuid.NewString()
	logger := logging.WithFields(ctx, "import_id", importID, "file", req.FileName)
	start := time.Now()

	text, err := DecodeText(req.Data)
	if err != nil {
		metrics.ObserveImport(metrics.ResultError, 0, 0, 0, time.Since(start))
		return nil, fmt.Errorf("import %s: %w", req.FileName, err)
	}
	parsed, err := ParseCSV(text)
	if err != nil {
		metrics.ObserveImport(metrics.ResultError, 0, 0, 0, time.Since(start))
		return nil, fmt.Errorf("import %s: %w", req.FileName, err)
	}
	if parsed.Skipped > 0 {
		logger.Info("dropped short rows", "rows", parsed.Skipped)
	}

	mapping := BuildFieldMapping(parsed.Headers, req.Overrides)
	im := NewImporter(store,
		WithConverter(s.converter()),
		WithLogger(logger),
		WithErrorPreview(s.cfg.ErrorPreview),
	)

	result, importErr := im.Import(ctx, parsed.Rows, mapping, req.VehicleID)
	if result == nil {
		metrics.ObserveImport(metrics.ResultError, 0, 0, 0, time.Since(start))
		return nil, importErr
	}
	result.ImportID = importID
	result.FileName = req.FileName

	metrics.ObserveImport(resultLabel(result, importErr), result.Succeeded, result.Failed, result.Skipped, result.Duration)

	// The audit write must survive a request that was cancelled mid-import.
	auditCtx, auditCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer auditCancel()
	if err := s.recorder.RecordImport(auditCtx, newImportRun(ctx, req.Owner, result)); err != nil {
		logger.Error("failed to record import", "error", err)
	}

	return result, importErr
}

func resultLabel(result *ImportResult, err error) string {
	switch {
	case err != nil:
		return metrics.ResultError
	case result.Failed > 0:
		return metrics.ResultPartial
	default:
		return metrics.ResultSuccess
	}
}

// Preview converts data without persisting anything.
func (s *Service) Preview(data []byte, overrides map[string]FieldKey) (*PreviewResult, error) {
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseCSV(text)
	if err != nil {
		return nil, err
	}
	return PreviewRows(parsed, BuildFieldMapping(parsed.Headers, overrides), s.converter()), nil
}

// PreviewRows converts every row of parsed and reports the outcome.
func PreviewRows(parsed *ParsedCSV, mapping FieldMapping, conv Converter) *PreviewResult {
	res := &PreviewResult{
		Headers:   parsed.Headers,
		Mapping:   mapping.AsMap(),
		Unmapped:  mapping.Unmapped(),
		TotalRows: len(parsed.Rows),
		ShortRows: parsed.Skipped,
		Sample:    []FuelEntry{},
		Errors:    []string{},
	}
	for i, row := range parsed.Rows {
		entry, err := conv.Convert(row, i, mapping)
		if err != nil {
			res.Invalid++
			res.Errors = append(res.Errors, err.Error())
			res.FailedRows = append(res.FailedRows, FailedRow{LineNumber: row.Line, Reason: err.Error(), Data: row.Values})
			continue
		}
		res.Valid++
		if len(res.Sample) < previewSampleSize {
			res.Sample = append(res.Sample, entry)
		}
	}
	return res
}

// ListImports returns the owner's most recent import runs.
func (s *Service) ListImports(ctx context.Context, owner string, limit int) ([]ImportRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := s.recorder.ListImports(ctx, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	if runs == nil {
		runs = []ImportRun{}
	}
	return runs, nil
}

// GetImport returns one of the owner's import runs.
func (s *Service) GetImport(ctx context.Context, owner, id string) (*ImportRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrImportNotFound
	}
	run, err := s.recorder.GetImport(ctx, owner, id)
	if err != nil {
		if errors.Is(err, ErrImportNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get import: %w", err)
	}
	return run, nil
}

// WaitForImports blocks until in-flight imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}
