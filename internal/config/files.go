package config

import (
	"fmt"
	"os"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/store"
)

// LoadMatrix reads and validates the Policy Matrix file named by
// -auth. An empty path yields an empty matrix (public everywhere, per
// spec.md §7.2). A parse or validation failure is a startup-aborting
// config error (spec.md §6 exit code 1).
func LoadMatrix(path string) (auth.Matrix, error) {
	if path == "" {
		return auth.Matrix{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read auth file %s: %w", path, err)
	}
	m, err := auth.LoadMatrix(data)
	if err != nil {
		return nil, fmt.Errorf("auth file %s: %w", path, err)
	}
	return m, nil
}

// LoadSchema reads the property JSON Schema file named by -schema. An
// empty path means no schema is configured (validation skipped).
func LoadSchema(path string) (*store.SchemaValidator, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file %s: %w", path, err)
	}
	v, err := store.LoadSchema(data)
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", path, err)
	}
	return v, nil
}
