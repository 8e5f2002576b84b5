// Package config parses Hecate's CLI flags and the two configuration
// files they name: the Policy Matrix and the property JSON Schema
// (spec.md §6). CLI parsing itself is a thin wrapper around the
// standard library, the same way the teacher's own cmd/ binaries
// parse flags (spec.md §1 names flag parsing an out-of-scope external
// collaborator).
package config

import (
	"flag"
	"fmt"
)

// repeatableFlag collects every occurrence of a flag that may be
// passed more than once, e.g. -database_replica host1 -database_replica host2.
type repeatableFlag []string

func (r *repeatableFlag) String() string {
	return fmt.Sprint([]string(*r))
}

func (r *repeatableFlag) Set(value string) error {
	*r = append(*r, value)
	return nil
}

// Config holds every CLI-supplied setting, per spec.md §6's flag list.
type Config struct {
	Database         string
	DatabaseReplicas []string
	DatabaseSandbox  []string
	SchemaPath       string
	AuthPath         string
	Port             int
	Workers          int
}

// Parse parses args (normally os.Args[1:]) into a Config. A malformed
// numeric flag is the one parse-time failure spec.md §6 calls out as
// exit code 1.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("hecated", flag.ContinueOnError)

	database := fs.String("database", "", "primary PostgreSQL connection string")
	schema := fs.String("schema", "", "path to the property JSON Schema document")
	auth := fs.String("auth", "", "path to the Policy Matrix JSON document")
	port := fs.Int("port", 8080, "HTTP listen port")
	workers := fs.Int("workers", 1, "worker count (parsed only; the worker queue always runs a single consumer)")

	var replicas repeatableFlag
	fs.Var(&replicas, "database_replica", "read-only replica connection string (repeatable)")
	var sandbox repeatableFlag
	fs.Var(&sandbox, "database_sandbox", "sandbox connection string (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	return &Config{
		Database:         *database,
		DatabaseReplicas: []string(replicas),
		DatabaseSandbox:  []string(sandbox),
		SchemaPath:       *schema,
		AuthPath:         *auth,
		Port:             *port,
		Workers:          *workers,
	}, nil
}
