// Package core provides the business logic for fuel log imports and analytics.
//
// This package contains all domain logic independent of any UI, transport or
// storage layer. Web handlers, the CLI and tests drive it through the
// [EntryStore] and [VehicleStore] interfaces; the sheets package supplies the
// production stores.
//
// # Import Pipeline
//
// An import runs in four stages:
//
//  1. [DecodeText] strips a byte order mark and falls back to Windows-1252
//     for files that are not valid UTF-8.
//  2. [ParseCSV] splits the text on commas, or tabs when the header line
//     holds one, and drops rows shorter than the header.
//  3. [BuildFieldMapping] resolves each header to a canonical [FieldKey],
//     first through caller overrides, then through [NormalizeField].
//  4. [Importer] converts every row with a [Converter], writes the accepted
//     entries with one CreateBatch call and falls back to CreateOne per
//     entry when the batch fails.
//
// [Service] wraps the pipeline with per-account admission ([ImportLimiter]),
// a timeout, metrics and the import audit log ([ImportRecorder]).
//
// # Error Handling
//
// Row problems never abort a batch; they are collected on [ImportResult].
// An [AuthError] aborts the import. Technical errors are mapped to
// user-friendly messages using [MapError]. Each category has a code prefix:
//
//   - FILE: file errors (size, encoding, format)
//   - VAL: validation errors (station, mileage, vehicle, mapping)
//   - AUTH: session errors
//   - IMP: import admission and cancellation
//   - SHEET: spreadsheet API errors
//   - RATE: rate limiting
package core
