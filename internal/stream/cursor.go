// Package stream implements the Stream Engine: a cursor-backed lazy
// byte sequence over a parameterized SELECT, suitable for streaming
// straight into an HTTP response body without materializing the full
// result set (spec.md §4.5).
package stream

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/hecate-project/hecate/internal/herr"
)

// RowEncoder renders one fetched row to its wire bytes. Implementations
// live in the callers that know the row shape (internal/wfs for WFS
// feature members).
type RowEncoder func(rows *sql.Rows) ([]byte, error)

// Reader is a lazy, backpressure-honoring byte sequence over a
// server-side cursor. It implements io.Reader and io.WriterTo: reads
// only pull as many rows as the batch needs to satisfy the caller,
// matching spec.md §4.5's "the cursor only advances when the
// downstream consumes."
type Reader struct {
	ctx       context.Context
	tx        *sql.Tx
	cursor    string
	batchSize int
	encode    RowEncoder

	buf    bytes.Buffer
	done   bool
	closed bool
	err    error
}

const defaultBatchSize = 1000

// Open starts a read-only transaction, declares a server-side cursor
// for query/args, and returns a Reader over it. The first Read call
// may block while the cursor opens (spec.md §4.5 contract (a)).
func Open(ctx context.Context, db *sql.DB, cursorName, query string, args []interface{}, encode RowEncoder) (*Reader, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, herr.FromPQ(err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DECLARE %s CURSOR FOR %s", cursorName, query), args...); err != nil {
		_ = tx.Rollback()
		return nil, herr.FromPQ(err)
	}

	return &Reader{ctx: ctx, tx: tx, cursor: cursorName, batchSize: defaultBatchSize, encode: encode}, nil
}

// Read implements io.Reader, fetching another batch of rows via
// FETCH FORWARD only when the internal buffer has been fully drained.
func (r *Reader) Read(p []byte) (int, error) {
	for r.buf.Len() == 0 {
		if r.err != nil {
			return 0, r.err
		}
		if r.done {
			_ = r.Close()
			return 0, io.EOF
		}
		if err := r.fetchBatch(); err != nil {
			r.err = err
			_ = r.Abort()
			return 0, err
		}
	}
	return r.buf.Read(p)
}

// WriteTo implements io.WriterTo, draining every remaining batch
// straight into w without an intermediate copy through Read's buffer
// beyond one batch at a time.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for {
		n, err := r.buf.WriteTo(w)
		total += n
		if err != nil {
			r.err = err
			_ = r.Abort()
			return total, err
		}
		if r.done {
			return total, r.Close()
		}
		if err := r.fetchBatch(); err != nil {
			r.err = err
			_ = r.Abort()
			return total, err
		}
	}
}

func (r *Reader) fetchBatch() error {
	rows, err := r.tx.QueryContext(r.ctx, fmt.Sprintf("FETCH FORWARD %d FROM %s", r.batchSize, r.cursor))
	if err != nil {
		return herr.FromPQ(err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
		b, err := r.encode(rows)
		if err != nil {
			return err
		}
		r.buf.Write(b)
	}
	if err := rows.Err(); err != nil {
		return herr.FromPQ(err)
	}
	if n < r.batchSize {
		r.done = true
	}
	return nil
}

// Close commits the underlying transaction, releasing the cursor
// normally once the sequence is exhausted.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.tx.Commit()
}

// Abort rolls back the underlying transaction promptly, the release
// path spec.md §4.5 requires on consumer disconnect or mid-stream SQL
// error (contracts (c) and (d)).
func (r *Reader) Abort() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.tx.Rollback()
}
