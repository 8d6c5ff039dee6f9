package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/gaslog/internal/core"
	"gopkg.in/yaml.v3"
)

// mappingFile is the --mapping override file:
//
//	columns:
//	  Odometer: mileage
//	  Where: gas_station
type mappingFile struct {
	Columns map[string]string `yaml:"columns"`
}

// loadMapping reads header overrides from path. An empty path means none.
func loadMapping(path string) (map[string]core.FieldKey, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	return parseMapping(data)
}

func parseMapping(data []byte) (map[string]core.FieldKey, error) {
	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse mapping file: %w", err)
	}
	if len(mf.Columns) == 0 {
		return nil, fmt.Errorf("mapping file has no columns")
	}

	out := make(map[string]core.FieldKey, len(mf.Columns))
	for header, key := range mf.Columns {
		k, err := core.ParseFieldKey(key)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", header, err)
		}
		out[header] = k
	}
	return out, nil
}
