// Package gateway implements the Storage Gateway: connection pooling
// over primary / replica / sandbox roles, and startup health checks
// (spec.md §4.7).
package gateway

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/lib/pq"
)

// Role selects which pool a caller wants.
type Role int

const (
	Primary Role = iota
	Replica
	Sandbox
)

// MinVersions gates startup: the process refuses to start unless the
// primary reports at least these versions.
type MinVersions struct {
	Postgres int // e.g. 130000 for PostgreSQL 13
	PostGIS  string
}

// Gateway owns the three connection pools described in spec.md §4.7.
// Each pool is eagerly health-checked at construction time; Gateway
// aborts (returns an error, which main.go turns into os.Exit(1)) if
// the checks fail, mirroring the teacher's NewPostgresRepository
// (sql.Open + Ping + createTables) generalized to three roles and a
// version/schema probe.
type Gateway struct {
	primary  *sql.DB
	replicas []*sql.DB
	sandbox  []*sql.DB

	replicaIdx atomic.Uint64
	sandboxIdx atomic.Uint64
}

// Open connects to primary, each replica, and each sandbox connection
// string, pings every one, and probes the primary for the minimum
// PostgreSQL/PostGIS versions and the expected schema.
func Open(primaryConn string, replicaConns, sandboxConns []string, min MinVersions) (*Gateway, error) {
	primary, err := sql.Open("postgres", primaryConn)
	if err != nil {
		return nil, fmt.Errorf("open primary: %w", err)
	}
	if err := primary.Ping(); err != nil {
		return nil, fmt.Errorf("ping primary: %w", err)
	}

	g := &Gateway{primary: primary}

	for _, conn := range replicaConns {
		db, err := sql.Open("postgres", conn)
		if err != nil {
			return nil, fmt.Errorf("open replica: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("ping replica: %w", err)
		}
		g.replicas = append(g.replicas, db)
	}

	for _, conn := range sandboxConns {
		db, err := sql.Open("postgres", conn)
		if err != nil {
			return nil, fmt.Errorf("open sandbox: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("ping sandbox: %w", err)
		}
		g.sandbox = append(g.sandbox, db)
	}

	if err := g.probe(min); err != nil {
		return nil, err
	}

	return g, nil
}

// probe checks the primary's PostgreSQL/PostGIS versions and the
// expected schema, per spec.md §4.7 ("the process aborts unless...").
func (g *Gateway) probe(min MinVersions) error {
	var serverVersion int
	if err := g.primary.QueryRow("SHOW server_version_num").Scan(&serverVersion); err != nil {
		return fmt.Errorf("probe postgres version: %w", err)
	}
	if min.Postgres > 0 && serverVersion < min.Postgres {
		return fmt.Errorf("postgres version %d below required minimum %d", serverVersion, min.Postgres)
	}

	if min.PostGIS != "" {
		var postgisVersion string
		if err := g.primary.QueryRow("SELECT PostGIS_Lib_Version()").Scan(&postgisVersion); err != nil {
			return fmt.Errorf("probe postgis version: %w", err)
		}
		if postgisVersion < min.PostGIS {
			return fmt.Errorf("postgis version %s below required minimum %s", postgisVersion, min.PostGIS)
		}
	}

	var probeID sql.NullInt64
	row := g.primary.QueryRow("SELECT id FROM geo LIMIT 1")
	if err := row.Scan(&probeID); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("schema probe (SELECT id FROM geo LIMIT 1) failed: %w", err)
	}

	return nil
}

// DB returns a connection pool for the given role. Replica and Sandbox
// roles load-balance round-robin across their configured pools, per
// spec.md §4.7; when no replica/sandbox pools are configured, DB falls
// back to the primary.
func (g *Gateway) DB(role Role) *sql.DB {
	switch role {
	case Replica:
		if len(g.replicas) == 0 {
			return g.primary
		}
		i := g.replicaIdx.Add(1) - 1
		return g.replicas[int(i)%len(g.replicas)]
	case Sandbox:
		if len(g.sandbox) == 0 {
			return g.primary
		}
		i := g.sandboxIdx.Add(1) - 1
		return g.sandbox[int(i)%len(g.sandbox)]
	default:
		return g.primary
	}
}

// Close closes every pool.
func (g *Gateway) Close() error {
	var firstErr error
	closeAll := func(dbs ...*sql.DB) {
		for _, db := range dbs {
			if err := db.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	closeAll(g.primary)
	closeAll(g.replicas...)
	closeAll(g.sandbox...)
	return firstErr
}
