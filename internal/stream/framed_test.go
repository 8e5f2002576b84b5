package stream

import (
	"context"
	"io"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramedWrapsPreambleAndEpilogue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DECLARE wfs_cursor CURSOR FOR SELECT id FROM geo").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FETCH FORWARD 1000 FROM wfs_cursor").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	inner, err := Open(context.Background(), db, "wfs_cursor", "SELECT id FROM geo", nil, encodeIDRow)
	require.NoError(t, err)

	f := NewFramed("<start>", "</end>", inner)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "<start>"+string(rune(9))+"\n</end>", string(data))
	assert.NoError(t, mock.ExpectationsWereMet())
}
