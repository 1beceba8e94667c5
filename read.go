package wavmeta

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// minWavFileSize is the smallest possible valid WAV file: RIFF preamble,
// fmt chunk and an empty data chunk header.
const minWavFileSize = 44

type readOptions struct {
	debug        io.Writer
	noHeuristics bool
}

// Option configures a read operation.
type Option func(*readOptions)

// WithDebug prints diagnostic chunk dumps to standard output. Debug output
// is observability only and never changes extraction results.
func WithDebug() Option {
	return func(o *readOptions) {
		o.debug = os.Stdout
	}
}

// WithDebugOutput sends diagnostic chunk dumps to w.
func WithDebugOutput(w io.Writer) Option {
	return func(o *readOptions) {
		o.debug = w
	}
}

// WithoutHeuristics disables the regex fallback layer that mines free-text
// fields (bext description, INFO subject/comment) for labeled values.
// Structured iXML extraction is unaffected.
func WithoutHeuristics() Option {
	return func(o *readOptions) {
		o.noHeuristics = true
	}
}

func applyOptions(opts []Option) readOptions {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// ReadFile extracts production metadata from the WAV file at path.
//
// It never returns an error: any failure is reported through the record's
// Error field, and fields recovered before the failure point are kept.
// Results are not cached; wrap calls in a Cache for memoization.
func ReadFile(path string, opts ...Option) (rec Record) {
	o := applyOptions(opts)
	rec = newRecord(path)

	// The never-raise contract covers arbitrary malformed input.
	defer func() {
		if r := recover(); r != nil {
			rec.Error = fmt.Sprintf("metadata extraction failed: %v", r)
		}
	}()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		rec.Error = fmt.Sprintf("File not found: %s", path)
		return rec
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			rec.Error = fmt.Sprintf("Cannot read file: %s", path)
		} else {
			rec.Error = err.Error()
		}

		return rec
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	if fi.Size() < minWavFileSize {
		rec.Error = fmt.Sprintf("File too small to be a valid WAV file: %s", path)
		return rec
	}

	dec := NewDecoder(f)
	dec.DebugOut = o.debug
	dec.ReadMetadata()

	dec.Metadata.Extract(&rec, !o.noHeuristics, dec.logf)

	if err := dec.Err(); err != nil {
		rec.Error = err.Error()
	}

	return rec
}
