// Package source provides the byte sources the melt engine reads from:
// in-memory strings and buffers, arbitrary io.Readers, and memory-mapped
// files. A source exposes its whole input as one byte slice; decoding to
// UTF-8 happens once at construction when the input uses another encoding.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/transform"
)

// Source exposes an input byte range for tokenizing.
type Source interface {
	// Data returns the input bytes. The slice stays valid until Close.
	Data() []byte
	// Name identifies the source in messages (a path, or a placeholder).
	Name() string
	// Close releases any underlying resource (e.g. an mmap view).
	Close() error
}

// Option configures source construction.
type Option func(*options)

type options struct {
	decoder transform.Transformer
}

// WithDecoder decodes the raw input through the given transformer (as
// produced by Locale.NewDecoder) before it is exposed.
func WithDecoder(t transform.Transformer) Option {
	return func(o *options) {
		o.decoder = t
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// prepare applies the configured decoder and strips a UTF-8 BOM.
func prepare(data []byte, opts options) ([]byte, error) {
	if opts.decoder != nil {
		decoded, _, err := transform.Bytes(opts.decoder, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode input: %w", err)
		}
		data = decoded
	}

	return bytes.TrimPrefix(data, utf8BOM), nil
}

// StringSource is an in-memory source backed by a string.
type StringSource struct {
	data []byte
}

// NewStringSource creates a new StringSource
func NewStringSource(s string, opts ...Option) (*StringSource, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := prepare([]byte(s), o)
	if err != nil {
		return nil, err
	}

	return &StringSource{data: data}, nil
}

func (s *StringSource) Data() []byte { return s.data }
func (s *StringSource) Name() string { return "<string>" }
func (s *StringSource) Close() error { return nil }

// BytesSource is an in-memory source backed by a byte slice.
type BytesSource struct {
	data []byte
}

// NewBytesSource creates a new BytesSource
func NewBytesSource(b []byte, opts ...Option) (*BytesSource, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := prepare(b, o)
	if err != nil {
		return nil, err
	}

	return &BytesSource{data: data}, nil
}

func (s *BytesSource) Data() []byte { return s.data }
func (s *BytesSource) Name() string { return "<bytes>" }
func (s *BytesSource) Close() error { return nil }

// ReaderSource slurps an io.Reader into memory.
type ReaderSource struct {
	data []byte
	name string
}

// NewReaderSource creates a new ReaderSource
func NewReaderSource(r io.Reader, opts ...Option) (*ReaderSource, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	data, err := prepare(raw, o)
	if err != nil {
		return nil, err
	}

	name := "<reader>"
	if f, ok := r.(*os.File); ok {
		name = f.Name()
	}

	return &ReaderSource{data: data, name: name}, nil
}

func (s *ReaderSource) Data() []byte { return s.data }
func (s *ReaderSource) Name() string { return s.name }
func (s *ReaderSource) Close() error { return nil }

// FileSource memory-maps a file on platforms that support it and falls
// back to reading it whole elsewhere. The mapping is released by Close;
// Data must not be used afterwards.
type FileSource struct {
	data    []byte
	name    string
	cleanup func()
}

// NewFileSource creates a new FileSource
func NewFileSource(path string, opts ...Option) (*FileSource, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	raw, cleanup, err := mapFile(path)
	if err != nil {
		return nil, err
	}

	data, err := prepare(raw, o)
	if err != nil {
		cleanup()
		return nil, err
	}

	// Decoding or BOM stripping copied the bytes off the mapping, so the
	// mapping can be released now.
	if len(raw) > 0 && (len(data) == 0 || &data[0] != &raw[0]) {
		copied := make([]byte, len(data))
		copy(copied, data)
		cleanup()

		return &FileSource{data: copied, name: path, cleanup: func() {}}, nil
	}

	return &FileSource{data: data, name: path, cleanup: cleanup}, nil
}

func (s *FileSource) Data() []byte { return s.data }
func (s *FileSource) Name() string { return s.name }

func (s *FileSource) Close() error {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	return nil
}
