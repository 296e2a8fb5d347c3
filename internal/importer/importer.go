package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"coupon-service/internal/model"
	"coupon-service/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxReportedErrors caps the per-line failures kept in a Report.
const maxReportedErrors = 50

// LineError describes why one line was not imported.
type LineError struct {
	Line  int    `json:"line"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Report summarises an import run.
type Report struct {
	Total      int           `json:"total"`
	Created    int           `json:"created"`
	Duplicates int           `json:"duplicates"`
	Invalid    int           `json:"invalid"`
	Failed     int           `json:"failed"`
	Errors     []LineError   `json:"errors,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Importer feeds every line of an import file through CouponService.Create.
type Importer struct {
	loader  Loader
	service service.CouponService
	workers int
	logger  zerolog.Logger
}

// New creates an importer running at most workers concurrent creations.
func New(loader Loader, svc service.CouponService, workers int, logger zerolog.Logger) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{
		loader:  loader,
		service: svc,
		workers: workers,
		logger:  logger.With().Str("component", "importer").Logger(),
	}
}

// Run imports path. Per-line failures are counted in the report; only a
// failure to read the file or a cancelled context returns an error.
func (im *Importer) Run(ctx context.Context, path string) (*Report, error) {
	start := time.Now()
	im.logger.Info().Str("path", path).Int("workers", im.workers).Msg("import started")

	rc, err := im.loader.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		mu     sync.Mutex
		report = &Report{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)

	readErr := ReadRecords(gctx, rc, func(rec Record) error {
		mu.Lock()
		report.Total++
		mu.Unlock()

		if rec.Err != nil {
			mu.Lock()
			report.add(rec.Line, model.ErrCodeInvalidJSON, rec.Err)
			mu.Unlock()
			return nil
		}

		req := rec.Request
		g.Go(func() error {
			_, err := im.service.Create(gctx, &req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Created++
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				code := model.ErrCodeInternalError
				if de, ok := model.AsDomainError(err); ok {
					code = de.Code
				}
				report.add(rec.Line, code, err)
			}
			return nil
		})
		return nil
	})

	waitErr := g.Wait()
	report.Duration = time.Since(start)

	if readErr != nil {
		return report, fmt.Errorf("import of %s aborted: %w", path, readErr)
	}
	if waitErr != nil {
		return report, fmt.Errorf("import of %s aborted: %w", path, waitErr)
	}

	im.logger.Info().
		Str("path", path).
		Int("total", report.Total).
		Int("created", report.Created).
		Int("duplicates", report.Duplicates).
		Int("invalid", report.Invalid).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("import finished")

	return report, nil
}

// add classifies one failed line. Callers hold the report lock.
func (r *Report) add(line int, code string, err error) {
	switch code {
	case model.ErrCodeDuplicateCode:
		r.Duplicates++
	case model.ErrCodeInternalError:
		r.Failed++
	default:
		r.Invalid++
	}

	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, LineError{Line: line, Code: code, Error: err.Error()})
	}
}
