// Package importer bulk-creates coupons from gzipped JSON-lines files stored
// on local disk or in S3.
package importer

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"

	"coupon-service/internal/model"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// maxLineBytes bounds a single JSON line.
const maxLineBytes = 1024 * 1024

// Loader opens the raw (still gzipped) import file at path.
type Loader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Record is one decoded line of an import file. Err is set when the line
// is not a valid creation request.
type Record struct {
	Line    int
	Request model.CouponRequest
	Err     error
}

// fileLoader implements Loader for files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "file-loader").Logger(),
	}
}

// Open opens a local import file.
func (l *fileLoader) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Info().Str("file", filePath).Msg("opening import file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open import file")
		return nil, fmt.Errorf("failed to open import file %s: %w", filePath, err)
	}
	return file, nil
}

// ReadRecords decompresses r and calls fn for every non-blank line, in file
// order. Reading stops at the first error returned by fn or when ctx is done.
func ReadRecords(ctx context.Context, r io.Reader, fn func(Record) error) error {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	// Set larger buffer for better performance with big files
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		rec := Record{Line: lineNo}
		if err := json.Unmarshal(line, &rec.Request); err != nil {
			rec.Err = fmt.Errorf("line %d: %w", lineNo, err)
		}

		if err := fn(rec); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading import file at line %d: %w", lineNo+1, err)
	}

	return nil
}
