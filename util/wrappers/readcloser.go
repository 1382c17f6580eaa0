package wrappers

import (
	"errors"
	"io"
)

var ErrClosed = errors.New("closed")

// ReaderWrapper shields a shared reader (usually stdin) from being closed
// for real when the repl shuts down
type ReaderWrapper struct {
	isClosed bool
	wrapped  io.Reader
}

// Close implements repl.ReadCloser.
func (r *ReaderWrapper) Close() error {
	r.isClosed = true
	return nil
}

// Read implements repl.ReadCloser.
func (r *ReaderWrapper) Read(p []byte) (n int, err error) {
	if r.isClosed {
		return 0, ErrClosed
	}
	return r.wrapped.Read(p)
}

func NewReaderWrapper(wraps io.Reader) *ReaderWrapper {
	return &ReaderWrapper{
		isClosed: false,
		wrapped:  wraps,
	}
}
