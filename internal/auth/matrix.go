// Package auth implements the Authorization Engine: a policy matrix
// of per-endpoint scopes resolved against principals derived from
// several authentication forms (spec.md §4.3).
package auth

import (
	"encoding/json"
	"fmt"
)

// Value is one of the Policy Matrix's closed set of scope values
// (spec.md §3's "Policy Matrix" entity).
type Value string

const (
	ScopePublic   Value = "public"
	ScopeDisabled Value = "disabled"
	ScopeSelf     Value = "self"
	ScopeUser     Value = "user"
	ScopeAdmin    Value = "admin"
)

func validValue(v Value) bool {
	switch v {
	case ScopePublic, ScopeDisabled, ScopeSelf, ScopeUser, ScopeAdmin:
		return true
	default:
		return false
	}
}

// Matrix is a flat `"group.name" -> scope value` map plus a
// distinguished "default" key, exactly the shape spec.md §4.3's
// worked example (`{default: "disabled", auth.get: "public"}`) uses.
// This replaces the REDESIGN FLAGS' derive-macro config parsing
// (original_source/hecate_derive/src/lib.rs) with a plain decoded
// map — no code generation, matching how the teacher decodes its own
// flags into plain structs.
type Matrix map[string]Value

// LoadMatrix parses and validates a Policy Matrix document. Any value
// outside the closed set aborts: spec.md §4.3 treats this as a
// startup configuration error (exit code 1, spec.md §6).
func LoadMatrix(data []byte) (Matrix, error) {
	raw := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid policy matrix: %w", err)
		}
	}

	m := make(Matrix, len(raw))
	for key, val := range raw {
		v := Value(val)
		if !validValue(v) {
			return nil, fmt.Errorf("policy matrix key %q: invalid scope value %q", key, val)
		}
		m[key] = v
	}
	return m, nil
}

// Lookup resolves a "group.name" endpoint key to its configured
// scope, falling back to the matrix's "default" key and finally to
// public when neither is set (spec.md §4.3, §7.2 "Policy defaulting").
func (m Matrix) Lookup(key string) Value {
	if v, ok := m[key]; ok {
		return v
	}
	if v, ok := m["default"]; ok {
		return v
	}
	return ScopePublic
}
