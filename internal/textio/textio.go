// Package textio provides transparent gzip handling and stdin/stdout routing
// for the pipeline's text formats.
package textio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// gzip magic bytes
const (
	gzipMagic0 = 0x1f
	gzipMagic1 = 0x8b
)

func isStdio(path string) bool {
	return path == "-" || path == "/dev/stdin" || path == "/dev/stdout"
}

// Reader wraps an input stream with its closers.
type Reader struct {
	io.Reader
	closers []io.Closer
}

// Close closes the underlying gzip stream and file, in that order.
func (r *Reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens path for buffered reading. Gzip streams are detected by their
// magic bytes rather than by file extension. "-" reads from stdin.
func Open(path string) (*Reader, error) {
	if isStdio(path) {
		return &Reader{Reader: bufio.NewReader(os.Stdin)}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	br := bufio.NewReader(file)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == gzipMagic0 && magic[1] == gzipMagic1 {
		gz, err := gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open gzip reader for %s: %w", path, err)
		}
		return &Reader{Reader: bufio.NewReader(gz), closers: []io.Closer{gz, file}}, nil
	}

	return &Reader{Reader: br, closers: []io.Closer{file}}, nil
}

// Writer wraps an output stream with the flush/close chain needed to
// guarantee no partial records are left behind.
type Writer struct {
	*bufio.Writer
	gz   *gzip.Writer
	file *os.File
}

// Close flushes buffers and closes the gzip stream and file.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return err
		}
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// Create opens path for buffered writing, creating parent directories as
// needed. Paths ending in ".gz" are gzip-compressed. "-" writes to stdout.
func Create(path string) (*Writer, error) {
	if isStdio(path) {
		return &Writer{Writer: bufio.NewWriter(os.Stdout)}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(file)
		return &Writer{Writer: bufio.NewWriter(gz), gz: gz, file: file}, nil
	}

	return &Writer{Writer: bufio.NewWriter(file), file: file}, nil
}

// ParseError reports an unparsable line in one of the pipeline's text
// formats, with enough context to diagnose it.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// Errorf builds a ParseError with a formatted message.
func Errorf(file string, line int, format string, args ...any) *ParseError {
	return &ParseError{File: file, Line: line, Message: fmt.Sprintf(format, args...)}
}
