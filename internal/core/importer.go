package core

// importer.go sequences one batch import: convert every row, persist the
// accepted entries in one bulk call, and fall back to one-by-one creates if
// the bulk call fails.
//
// Row failures never abort the batch. An AuthError aborts the import: before
// any write when the store can check the session up front, or at the point
// it is returned otherwise.
//
// Every entry gets its id before the bulk call. If the bulk call fails, the
// fallback first lists what the store already holds and skips those ids, so a
// bulk write that partially landed is not duplicated.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultErrorPreview is how many error messages are surfaced individually.
const DefaultErrorPreview = 5

// Importer runs batch imports against an EntryStore.
type Importer struct {
	store     EntryStore
	converter Converter
	logger    *slog.Logger
	preview   int
	newID     func() string
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithConverter sets the row converter.
func WithConverter(c Converter) ImporterOption {
	return func(im *Importer) { im.converter = c }
}

// WithLogger sets the logger used for per-row and per-entry failures.
func WithLogger(l *slog.Logger) ImporterOption {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}

// WithErrorPreview sets how many errors are surfaced individually.
func WithErrorPreview(n int) ImporterOption {
	return func(im *Importer) {
		if n > 0 {
			im.preview = n
		}
	}
}

// WithIDFunc overrides entry id generation.
func WithIDFunc(f func() string) ImporterOption {
	return func(im *Importer) {
		if f != nil {
			im.newID = f
		}
	}
}

// NewEntryID returns a fresh fuel entry id.
func NewEntryID() string {
	return "entry_" + uuid.NewString()
}

// NewImporter creates an Importer for store.
func NewImporter(store EntryStore, opts ...ImporterOption) *Importer {
	im := &Importer{
		store:   store,
		logger:  slog.Default(),
		preview: DefaultErrorPreview,
		newID:   NewEntryID,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import converts and persists rows for vehicleID.
//
// The returned result is non-nil whenever conversion ran, even when err is
// an AuthError raised part way through persistence.
func (im *Importer) Import(ctx context.Context, rows []RawRow, mapping FieldMapping, vehicleID string) (*ImportResult, error) {
	start := time.Now()

	if vehicleID == "" {
		return nil, ErrNoVehicle
	}

	if sc, ok := im.store.(SessionChecker); ok {
		if err := sc.CheckSession(ctx); err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
	}

	result := &ImportResult{
		VehicleID: vehicleID,
		Attempted: len(rows),
		Unmapped:  mapping.Unmapped(),
	}

	entries := make([]FuelEntry, 0, len(rows))
	sources := make([]RawRow, 0, len(rows)) // sources[i] produced entries[i]
	for i, row := range rows {
		entry, err := im.converter.Convert(row, i, mapping)
		if err != nil {
			im.fail(result, row.Line, err.Error(), row.Values)
			continue
		}
		entry.ID = im.newID()
		entry.VehicleID = vehicleID
		entries = append(entries, entry)
		sources = append(sources, row)
	}

	var fatal error
	if len(entries) > 0 {
		fatal = im.persist(ctx, result, entries, sources)
		if fatal == nil {
			im.refresh(ctx, result)
		}
	}

	im.summarize(result)
	result.Duration = time.Since(start)

	im.logger.Info("import finished",
		"vehicle_id", vehicleID,
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"fallback", result.UsedFallback,
		"duration_ms", result.Duration.Milliseconds(),
	)

	if fatal != nil {
		return result, fatal
	}
	return result, nil
}

// persist writes entries with one bulk call, falling back to one-by-one.
// sources holds the row each entry came from.
func (im *Importer) persist(ctx context.Context, result *ImportResult, entries []FuelEntry, sources []RawRow) error {
	err := im.store.CreateBatch(ctx, entries)
	if err == nil {
		result.Succeeded += len(entries)
		return nil
	}

	if IsAuthError(err) {
		im.failEntries(result, entries, err)
		return fmt.Errorf("import: %w", err)
	}

	im.logger.Warn("bulk create failed, falling back to one-by-one",
		"entries", len(entries),
		"error", err,
	)
	result.UsedFallback = true

	existing := make(map[string]bool)
	listed, err := im.store.ListAll(ctx)
	switch {
	case err == nil:
		for _, e := range listed {
			existing[e.ID] = true
		}
	case IsAuthError(err):
		im.failEntries(result, entries, err)
		return fmt.Errorf("import: %w", err)
	default:
		im.logger.Warn("could not list entries before fallback, duplicates are possible", "error", err)
	}

	for i, entry := range entries {
		if existing[entry.ID] {
			result.Succeeded++
			result.Skipped++
			continue
		}
		if err := im.store.CreateOne(ctx, entry); err != nil {
			if IsAuthError(err) {
				im.failEntries(result, entries[i:], err)
				return fmt.Errorf("import: %w", err)
			}
			im.fail(result, sources[i].Line, "Failed to save entry - "+errorText(err), sources[i].Values)
			continue
		}
		result.Succeeded++
	}
	return nil
}

// refresh reloads the store's entries once after persistence.
func (im *Importer) refresh(ctx context.Context, result *ImportResult) {
	listed, err := im.store.ListAll(ctx)
	if err != nil {
		im.logger.Warn("refresh after import failed", "error", err)
		return
	}
	result.Entries = listed
}

func (im *Importer) fail(result *ImportResult, line int, reason string, data map[string]string) {
	result.Failed++
	result.Errors = append(result.Errors, reason)
	result.FailedRows = append(result.FailedRows, FailedRow{LineNumber: line, Reason: reason, Data: data})
	im.logger.Warn("import row failed", "line", line, "reason", reason)
}

func (im *Importer) failEntries(result *ImportResult, entries []FuelEntry, err error) {
	result.Failed += len(entries)
	msg := fmt.Sprintf("Failed to save %d entries - %s", len(entries), errorText(err))
	result.Errors = append(result.Errors, msg)
	im.logger.Error("import aborted", "entries", len(entries), "error", err)
}

// summarize fills Preview and Summary from Errors.
func (im *Importer) summarize(result *ImportResult) {
	if len(result.Errors) <= im.preview {
		result.Preview = append([]string(nil), result.Errors...)
		return
	}
	result.Preview = append([]string(nil), result.Errors[:im.preview]...)
	result.Summary = fmt.Sprintf("and %d more errors", len(result.Errors)-im.preview)
}

// errorText prefers the user-facing text of typed errors.
func errorText(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) && ae.Msg != "" {
		return ae.Msg
	}
	return err.Error()
}
