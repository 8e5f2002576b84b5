package stream

import (
	"context"
	"database/sql"
	"io"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeIDRow(rows *sql.Rows) ([]byte, error) {
	var id int64
	if err := rows.Scan(&id); err != nil {
		return nil, err
	}
	return []byte{byte(id), '\n'}, nil
}

func TestReaderDrainsAllBatchesAndCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DECLARE test_cursor CURSOR FOR SELECT id FROM geo").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FETCH FORWARD 2 FROM test_cursor").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectQuery("FETCH FORWARD 2 FROM test_cursor").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	r, err := Open(context.Background(), db, "test_cursor", "SELECT id FROM geo", nil, encodeIDRow)
	require.NoError(t, err)
	r.batchSize = 2

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, '\n', 2, '\n', 3, '\n'}, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReaderAbortRollsBackOnMidStreamError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DECLARE test_cursor CURSOR FOR SELECT id FROM geo").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FETCH FORWARD 2 FROM test_cursor").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	r, err := Open(context.Background(), db, "test_cursor", "SELECT id FROM geo", nil, encodeIDRow)
	require.NoError(t, err)
	r.batchSize = 2

	_, err = io.ReadAll(r)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
