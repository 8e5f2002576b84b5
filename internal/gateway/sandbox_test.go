package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSandboxQuery(t *testing.T) {
	t.Run("allows a plain select", func(t *testing.T) {
		err := CheckSandboxQuery("SELECT id, properties FROM geo WHERE id = 1")
		assert.NoError(t, err)
	})

	t.Run("allows a read-only CTE", func(t *testing.T) {
		err := CheckSandboxQuery("WITH recent AS (SELECT id FROM geo) SELECT * FROM recent")
		assert.NoError(t, err)
	})

	t.Run("rejects insert", func(t *testing.T) {
		err := CheckSandboxQuery("INSERT INTO geo (id) VALUES (1)")
		assert.Error(t, err)
	})

	t.Run("rejects update", func(t *testing.T) {
		err := CheckSandboxQuery("UPDATE geo SET version = 2 WHERE id = 1")
		assert.Error(t, err)
	})

	t.Run("rejects delete", func(t *testing.T) {
		err := CheckSandboxQuery("DELETE FROM geo WHERE id = 1")
		assert.Error(t, err)
	})

	t.Run("rejects ddl", func(t *testing.T) {
		err := CheckSandboxQuery("DROP TABLE geo")
		assert.Error(t, err)
	})

	t.Run("rejects returning clause", func(t *testing.T) {
		err := CheckSandboxQuery("WITH x AS (DELETE FROM geo RETURNING id) SELECT * FROM x")
		assert.Error(t, err)
	})

	t.Run("rejects multi-statement batches", func(t *testing.T) {
		err := CheckSandboxQuery("SELECT 1; DROP TABLE geo;")
		assert.Error(t, err)
	})

	t.Run("rejects statements not starting with select or with", func(t *testing.T) {
		err := CheckSandboxQuery("EXPLAIN SELECT 1")
		assert.Error(t, err)
	})
}
