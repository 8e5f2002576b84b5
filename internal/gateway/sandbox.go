package gateway

import (
	"regexp"
	"strings"

	"github.com/hecate-project/hecate/internal/herr"
)

// forbiddenSandbox matches statement shapes the sandbox pool must
// refuse: DDL, DML other than SELECT, and mutating CTEs. This is a
// pre-flight guard in front of the sandbox's own SELECT-only grant —
// defense in depth, not a substitute for database-level permissions.
var forbiddenSandbox = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|truncate|grant|revoke|create|vacuum|call)\b`)

// multiStatement rejects anything that looks like more than one SQL
// statement (a bare semicolon not at the very end).
var multiStatement = regexp.MustCompile(`;\s*\S`)

// CheckSandboxQuery validates that a query submitted to the sandbox
// pool (spec.md §4.7, the public /api/data/query endpoint) is a pure
// SELECT: no multi-statement batches, no DDL, no mutating WITH/
// RETURNING clauses.
func CheckSandboxQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)

	if !strings.HasPrefix(lower, "select") && !strings.HasPrefix(lower, "with") {
		return herr.New(herr.Validation, "sandbox queries must start with SELECT or WITH")
	}

	if strings.Contains(lower, "returning") {
		return herr.New(herr.Validation, "sandbox queries may not use RETURNING")
	}

	if forbiddenSandbox.MatchString(trimmed) {
		return herr.New(herr.Validation, "sandbox queries may not contain DDL or mutating statements")
	}

	if multiStatement.MatchString(trimmed) {
		return herr.New(herr.Validation, "sandbox queries must be a single statement")
	}

	return nil
}
