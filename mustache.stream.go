package mustache

import (
	"context"
	"io"
)

// Stream is the output of one template render, delivered on demand.
// Each call to ForEach, Read or WriteTo performs a fresh render.
type Stream struct {
	tmpl     *Template
	err      error
	view     any
	partials PartialLoader
}

// ForEach renders the template and passes every chunk of output to write in
// document order. The next chunk is not produced until write returns, so a
// slow write throttles rendering.
//
// Chunks already passed to write are not retracted when a later part of the
// render fails: the caller may have received partial output before the error.
func (s *Stream) ForEach(ctx context.Context, write WriteFunc) error {
	if s.err != nil {
		return s.err
	}
	return s.tmpl.Execute(ctx, s.view, s.partials, write)
}

// Read renders the template and returns all of its output.
func (s *Stream) Read(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.tmpl.Render(ctx, s.view, s.partials)
}

// WriteTo renders the template into w. It implements io.WriterTo.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	var written int64
	err := s.ForEach(context.Background(), func(_ context.Context, chunk string) error {
		n, err := io.WriteString(w, chunk)
		written += int64(n)
		return err
	})
	return written, err
}

// ChanWriter returns a WriteFunc that sends every chunk on ch. Sends block
// until a receiver is ready or ctx is done.
func ChanWriter(ch chan<- string) WriteFunc {
	return func(ctx context.Context, chunk string) error {
		select {
		case ch <- chunk:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
