package stream

import (
	"bytes"
	"io"
)

// Framed wraps a row Reader with a fixed preamble and epilogue, the
// shape internal/wfs uses to emit a `<wfs:FeatureCollection>` envelope
// around a lazily streamed sequence of `<wfs:member>` rows (spec.md
// §4.5, §6 WFS 2.0 XML).
type Framed struct {
	preamble []byte
	epilogue []byte
	inner    *Reader

	state  int // 0=preamble, 1=rows, 2=epilogue, 3=done
	closed bool
}

const (
	framedPreamble = iota
	framedRows
	framedEpilogue
	framedDone
)

// NewFramed wraps inner with a preamble written before the first row
// and an epilogue written after the last.
func NewFramed(preamble, epilogue string, inner *Reader) *Framed {
	return &Framed{preamble: []byte(preamble), epilogue: []byte(epilogue), inner: inner, state: framedPreamble}
}

// Read implements io.Reader.
func (f *Framed) Read(p []byte) (int, error) {
	for {
		switch f.state {
		case framedPreamble:
			if len(f.preamble) == 0 {
				f.state = framedRows
				continue
			}
			n := copy(p, f.preamble)
			f.preamble = f.preamble[n:]
			if len(f.preamble) == 0 {
				f.state = framedRows
			}
			return n, nil

		case framedRows:
			n, err := f.inner.Read(p)
			if err == io.EOF {
				f.state = framedEpilogue
				if n > 0 {
					return n, nil
				}
				continue
			}
			return n, err

		case framedEpilogue:
			if len(f.epilogue) == 0 {
				f.state = framedDone
				return 0, io.EOF
			}
			n := copy(p, f.epilogue)
			f.epilogue = f.epilogue[n:]
			if len(f.epilogue) == 0 {
				f.state = framedDone
			}
			return n, nil

		default:
			return 0, io.EOF
		}
	}
}

// WriteTo implements io.WriterTo.
func (f *Framed) WriteTo(w io.Writer) (int64, error) {
	var total int64
	if len(f.preamble) > 0 {
		n, err := w.Write(f.preamble)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	n, err := f.inner.WriteTo(w)
	total += n
	if err != nil {
		return total, err
	}

	if len(f.epilogue) > 0 {
		m, err := bytes.NewReader(f.epilogue).WriteTo(w)
		total += m
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Abort rolls back the inner cursor's transaction without writing the
// epilogue, for consumer-disconnect handling.
func (f *Framed) Abort() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.inner.Abort()
}
