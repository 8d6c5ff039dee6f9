package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EntryInput is a manually entered fill-up. Nil pointers mean the form left
// the field blank, which matters for the near-empty default.
type EntryInput struct {
	VehicleID      string   `json:"vehicle_id"`
	GasStation     string   `json:"gas_station"`
	GasStationCity string   `json:"gas_station_city"`
	FuelType       string   `json:"fuel_type"`
	MPGBefore      float64  `json:"mpg_before"`
	Mileage        float64  `json:"mileage"`
	DTEBefore      *float64 `json:"dte_before"`
	PricePerGallon float64  `json:"price_per_gallon"`
	Gallons        float64  `json:"gallons"`
	TotalCost      float64  `json:"total_cost"`
	DTEAfter       float64  `json:"dte_after"`
	DateGasAdded   string   `json:"date_gas_added"`
	AddedFromEmpty *bool    `json:"added_from_empty"`
}

// BuildEntry validates in and applies the same defaults an import would:
// fuel grade, city, total backfill and the near-empty flag.
func BuildEntry(in EntryInput, threshold float64, now time.Time) (FuelEntry, error) {
	if threshold <= 0 {
		threshold = NearEmptyThreshold
	}

	e := FuelEntry{
		ID:             NewEntryID(),
		VehicleID:      in.VehicleID,
		GasStation:     strings.TrimSpace(in.GasStation),
		GasStationCity: strings.TrimSpace(in.GasStationCity),
		FuelType:       ParseFuelType(in.FuelType),
		MPGBefore:      in.MPGBefore,
		Mileage:        in.Mileage,
		PricePerGallon: in.PricePerGallon,
		Gallons:        in.Gallons,
		TotalCost:      in.TotalCost,
		DTEAfter:       in.DTEAfter,
		DateGasAdded:   now,
	}
	if FuelType(in.FuelType).Valid() {
		e.FuelType = FuelType(in.FuelType)
	}

	switch {
	case e.VehicleID == "":
		return FuelEntry{}, ErrNoVehicle
	case e.GasStation == "":
		return FuelEntry{}, &InputError{Field: "gas_station", Msg: "is required"}
	case e.Mileage <= 0:
		return FuelEntry{}, &InputError{Field: "mileage", Msg: "must be a positive number"}
	case e.PricePerGallon < 0 || e.Gallons < 0 || e.TotalCost < 0:
		return FuelEntry{}, &InputError{Field: "price", Msg: "must not be negative"}
	}

	if e.GasStationCity == "" {
		e.GasStationCity = DefaultCity
	}
	if in.DateGasAdded != "" {
		t, ok := ParseTimestamp(in.DateGasAdded)
		if !ok {
			return FuelEntry{}, &InputError{Field: "date_gas_added", Msg: "is not a recognised date"}
		}
		e.DateGasAdded = t
	}
	if in.DTEBefore != nil {
		e.DTEBefore = *in.DTEBefore
	}

	switch {
	case in.AddedFromEmpty != nil:
		e.AddedFromEmpty = *in.AddedFromEmpty
	case in.DTEBefore != nil:
		e.AddedFromEmpty = e.DTEBefore < threshold
	}

	e.BackfillTotal()
	return e, nil
}

// AddEntry stores one manual entry. A blank vehicle id resolves to the
// account's default vehicle.
func AddEntry(ctx context.Context, entries EntryStore, vehicles VehicleStore, in EntryInput, threshold float64) (FuelEntry, error) {
	list, err := vehicles.ListVehicles(ctx)
	if err != nil {
		return FuelEntry{}, fmt.Errorf("add entry: %w", err)
	}

	if in.VehicleID == "" {
		if v, ok := DefaultVehicle(list); ok {
			in.VehicleID = v.ID
		}
	} else if _, ok := FindVehicle(list, in.VehicleID); !ok {
		return FuelEntry{}, ErrVehicleNotFound
	}

	entry, err := BuildEntry(in, threshold, time.Now())
	if err != nil {
		return FuelEntry{}, err
	}
	if err := entries.CreateOne(ctx, entry); err != nil {
		return FuelEntry{}, fmt.Errorf("add entry: %w", err)
	}
	return entry, nil
}
