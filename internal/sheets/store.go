package sheets

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/gaslog/internal/core"
)

// Store is the spreadsheet-backed EntryStore and VehicleStore for one user.
type Store struct {
	client        *Client
	spreadsheetID string
}

var (
	_ core.EntryStore     = (*Store)(nil)
	_ core.SessionChecker = (*Store)(nil)
	_ core.VehicleStore   = (*Store)(nil)
)

// NewStore binds client to a spreadsheet.
func NewStore(client *Client, spreadsheetID string) *Store {
	return &Store{client: client, spreadsheetID: spreadsheetID}
}

// SpreadsheetID returns the backing spreadsheet id.
func (s *Store) SpreadsheetID() string { return s.spreadsheetID }

// CheckSession rejects a missing or expired token before any write.
func (s *Store) CheckSession(context.Context) error {
	return s.client.CheckToken()
}

// CreateOne appends a single entry row.
func (s *Store) CreateOne(ctx context.Context, entry core.FuelEntry) error {
	return s.client.AppendRows(ctx, s.spreadsheetID, EntriesSheet, [][]any{EntryRow(entry)})
}

// CreateBatch appends all entries in one request.
func (s *Store) CreateBatch(ctx context.Context, entries []core.FuelEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = EntryRow(e)
	}
	return s.client.AppendRows(ctx, s.spreadsheetID, EntriesSheet, rows)
}

// ListAll reads every entry row. Blank rows are ignored.
func (s *Store) ListAll(ctx context.Context) ([]core.FuelEntry, error) {
	rows, err := s.client.ReadRange(ctx, s.spreadsheetID, entriesRange)
	if err != nil {
		return nil, err
	}
	entries := make([]core.FuelEntry, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		entries = append(entries, ParseEntryRow(row))
	}
	return entries, nil
}

// ListVehicles reads every vehicle row.
func (s *Store) ListVehicles(ctx context.Context) ([]core.Vehicle, error) {
	rows, err := s.client.ReadRange(ctx, s.spreadsheetID, vehiclesRange)
	if err != nil {
		return nil, err
	}
	vehicles := make([]core.Vehicle, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		vehicles = append(vehicles, ParseVehicleRow(row))
	}
	return vehicles, nil
}

// AppendVehicle adds one vehicle row.
func (s *Store) AppendVehicle(ctx context.Context, v core.Vehicle) error {
	return s.client.AppendRows(ctx, s.spreadsheetID, VehiclesSheet, [][]any{VehicleRow(v)})
}

// ReplaceVehicles rewrites the vehicle rows from row 2. Vehicles are never
// removed, so the new range always covers the old one.
func (s *Store) ReplaceVehicles(ctx context.Context, vehicles []core.Vehicle) error {
	if len(vehicles) == 0 {
		return nil
	}
	rows := make([][]any, len(vehicles))
	for i, v := range vehicles {
		rows[i] = VehicleRow(v)
	}
	rng := fmt.Sprintf("%s!A2:G%d", VehiclesSheet, len(vehicles)+1)
	return s.client.UpdateRange(ctx, s.spreadsheetID, rng, rows)
}
