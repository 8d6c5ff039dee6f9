package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrVehicleNotFound is returned when a vehicle id does not exist.
var ErrVehicleNotFound = errors.New("vehicle not found")

// NewVehicleID returns a fresh vehicle id.
func NewVehicleID() string {
	return "vehicle_" + uuid.NewString()
}

// CreateVehicle appends v with a new id. The first vehicle an account
// creates is always its default.
func CreateVehicle(ctx context.Context, store VehicleStore, v Vehicle) (Vehicle, error) {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return Vehicle{}, &InputError{Field: "name", Msg: "is required"}
	}

	existing, err := store.ListVehicles(ctx)
	if err != nil {
		return Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}

	v.ID = NewVehicleID()
	v.IsDefault = v.IsDefault || len(existing) == 0

	if v.IsDefault && len(existing) > 0 {
		// Clearing the old default means rewriting the whole range.
		for i := range existing {
			existing[i].IsDefault = false
		}
		if err := store.ReplaceVehicles(ctx, append(existing, v)); err != nil {
			return Vehicle{}, fmt.Errorf("create vehicle: %w", err)
		}
		return v, nil
	}

	if err := store.AppendVehicle(ctx, v); err != nil {
		return Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}
	return v, nil
}

// UpdateVehicle replaces the stored vehicle with v.ID. The default flag can
// only move to another vehicle, through v.IsDefault or SetDefaultVehicle;
// updating the current default keeps it.
func UpdateVehicle(ctx context.Context, store VehicleStore, v Vehicle) (Vehicle, error) {
	vehicles, err := store.ListVehicles(ctx)
	if err != nil {
		return Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}

	idx := indexVehicle(vehicles, v.ID)
	if idx < 0 {
		return Vehicle{}, ErrVehicleNotFound
	}

	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		v.Name = vehicles[idx].Name
	}
	switch {
	case v.IsDefault:
		for i := range vehicles {
			vehicles[i].IsDefault = false
		}
	case vehicles[idx].IsDefault:
		v.IsDefault = true
	}
	vehicles[idx] = v

	if err := store.ReplaceVehicles(ctx, vehicles); err != nil {
		return Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}
	return v, nil
}

// SetDefaultVehicle flags id as the default and clears every other flag.
func SetDefaultVehicle(ctx context.Context, store VehicleStore, id string) error {
	vehicles, err := store.ListVehicles(ctx)
	if err != nil {
		return fmt.Errorf("set default vehicle: %w", err)
	}
	if indexVehicle(vehicles, id) < 0 {
		return ErrVehicleNotFound
	}
	for i := range vehicles {
		vehicles[i].IsDefault = vehicles[i].ID == id
	}
	if err := store.ReplaceVehicles(ctx, vehicles); err != nil {
		return fmt.Errorf("set default vehicle: %w", err)
	}
	return nil
}

// DefaultVehicle returns the flagged vehicle, else the first one.
func DefaultVehicle(vehicles []Vehicle) (Vehicle, bool) {
	for _, v := range vehicles {
		if v.IsDefault {
			return v, true
		}
	}
	if len(vehicles) > 0 {
		return vehicles[0], true
	}
	return Vehicle{}, false
}

// FindVehicle returns the vehicle with id.
func FindVehicle(vehicles []Vehicle, id string) (Vehicle, bool) {
	if i := indexVehicle(vehicles, id); i >= 0 {
		return vehicles[i], true
	}
	return Vehicle{}, false
}

func indexVehicle(vehicles []Vehicle, id string) int {
	for i, v := range vehicles {
		if v.ID == id {
			return i
		}
	}
	return -1
}
