package core

import (
	"fmt"
	"strings"
)

// FieldKey is the canonical name of a FuelEntry attribute.
type FieldKey string

const (
	FieldGasStation     FieldKey = "gas_station"
	FieldGasStationCity FieldKey = "gas_station_city"
	FieldFuelType       FieldKey = "fuel_type"
	FieldMPGBefore      FieldKey = "mpg_before"
	FieldMileage        FieldKey = "mileage"
	FieldDTEBefore      FieldKey = "dte_before"
	FieldPricePerGallon FieldKey = "price_per_gallon"
	FieldGallons        FieldKey = "gallons"
	FieldTotalCost      FieldKey = "total_cost"
	FieldDTEAfter       FieldKey = "dte_after"
	FieldDateGasAdded   FieldKey = "date_gas_added"
	FieldAddedFromEmpty FieldKey = "added_from_empty"
)

// fieldAlias pairs a canonical key with the header phrases that map to it.
type fieldAlias struct {
	key     FieldKey
	aliases []string
}

// fieldAliases is walked in order; the first key whose aliases match wins.
// Short aliases such as "dte" or "cost" match loosely, so entries earlier in
// the table take priority over later, more specific ones.
var fieldAliases = []fieldAlias{
	{FieldGasStation, []string{"gas station", "station", "gas_station", "gasstation", "location", "where"}},
	{FieldGasStationCity, []string{"city", "gas_station_city", "station city", "location city", "town"}},
	{FieldFuelType, []string{"fuel type", "fuel_type", "fuel", "gas type", "octane"}},
	{FieldMPGBefore, []string{"mpg before", "mpg_before", "mpg", "miles per gallon", "fuel economy"}},
	{FieldMileage, []string{"mileage", "odometer", "miles", "total miles", "odometer reading"}},
	{FieldDTEBefore, []string{"dte before", "dte_before", "dte", "distance to empty", "miles to empty"}},
	{FieldPricePerGallon, []string{"price per gallon", "price_per_gallon", "price", "cost per gallon", "ppg", "price/gallon"}},
	{FieldGallons, []string{"gallons", "amount", "quantity", "fuel amount", "liters"}},
	{FieldTotalCost, []string{"total cost", "total_cost", "total", "cost", "price paid", "amount paid"}},
	{FieldDTEAfter, []string{"dte after", "dte_after", "dte after fill", "distance after"}},
	{FieldDateGasAdded, []string{"date", "date_gas_added", "date added", "fill date", "transaction date", "timestamp"}},
	{FieldAddedFromEmpty, []string{"added from empty", "added_from_empty", "from empty", "empty tank", "low fuel"}},
}

// FieldKeys returns the canonical keys in table order.
func FieldKeys() []FieldKey {
	keys := make([]FieldKey, len(fieldAliases))
	for i, fa := range fieldAliases {
		keys[i] = fa.key
	}
	return keys
}

// ParseFieldKey validates a canonical key supplied by a caller.
func ParseFieldKey(s string) (FieldKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, fa := range fieldAliases {
		if string(fa.key) == s {
			return fa.key, nil
		}
	}
	return "", fmt.Errorf("invalid field key %q", s)
}

// NormalizeField maps a free-text column header to a canonical key.
//
// An exact match on a canonical key name wins outright. Otherwise the alias
// table is walked in order and the first key with an alias that equals the
// header, is contained in it, or contains it is returned.
func NormalizeField(header string) (FieldKey, bool) {
	normalized := strings.ToLower(strings.TrimSpace(header))
	if normalized == "" {
		return "", false
	}

	for _, fa := range fieldAliases {
		if string(fa.key) == normalized {
			return fa.key, true
		}
	}

	for _, fa := range fieldAliases {
		for _, alias := range fa.aliases {
			if normalized == alias ||
				strings.Contains(normalized, alias) ||
				strings.Contains(alias, normalized) {
				return fa.key, true
			}
		}
	}

	return "", false
}

// FieldMapping maps original CSV headers to canonical keys for one import.
type FieldMapping struct {
	headers []string
	keys    map[string]FieldKey
}

// BuildFieldMapping resolves every header, applying explicit overrides
// (header -> key) before the normalizer.
func BuildFieldMapping(headers []string, overrides map[string]FieldKey) FieldMapping {
	m := FieldMapping{
		headers: append([]string(nil), headers...),
		keys:    make(map[string]FieldKey, len(headers)),
	}
	for _, h := range headers {
		if key, ok := lookupOverride(overrides, h); ok {
			m.keys[h] = key
			continue
		}
		if key, ok := NormalizeField(h); ok {
			m.keys[h] = key
		}
	}
	return m
}

// lookupOverride matches override headers case-insensitively.
func lookupOverride(overrides map[string]FieldKey, header string) (FieldKey, bool) {
	if len(overrides) == 0 {
		return "", false
	}
	if key, ok := overrides[header]; ok {
		return key, true
	}
	want := strings.ToLower(strings.TrimSpace(header))
	for h, key := range overrides {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return key, true
		}
	}
	return "", false
}

// Key returns the canonical key for header.
func (m FieldMapping) Key(header string) (FieldKey, bool) {
	k, ok := m.keys[header]
	return k, ok
}

// HeaderFor returns the first header (in file order) mapped to key.
func (m FieldMapping) HeaderFor(key FieldKey) (string, bool) {
	for _, h := range m.headers {
		if m.keys[h] == key {
			return h, true
		}
	}
	return "", false
}

// Unmapped returns headers with no canonical key, in file order.
func (m FieldMapping) Unmapped() []string {
	var out []string
	for _, h := range m.headers {
		if _, ok := m.keys[h]; !ok {
			out = append(out, h)
		}
	}
	return out
}

// AsMap returns a copy of the header -> key assignments.
func (m FieldMapping) AsMap() map[string]FieldKey {
	out := make(map[string]FieldKey, len(m.keys))
	for h, k := range m.keys {
		out[h] = k
	}
	return out
}
