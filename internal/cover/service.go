// Package cover runs the cover pipeline: validate, plan, render to a
// temporary file, upload once, and return the public URL.
package cover

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/semaphore"

	"github.com/jmylchreest/covergen/internal/apperr"
	"github.com/jmylchreest/covergen/internal/compose"
	"github.com/jmylchreest/covergen/internal/label"
	"github.com/jmylchreest/covergen/internal/layout"
	"github.com/jmylchreest/covergen/internal/metrics"
	"github.com/jmylchreest/covergen/internal/objectkey"
	"github.com/jmylchreest/covergen/internal/security"
	"github.com/jmylchreest/covergen/internal/storage"
)

// Result is returned for a cover that was rendered and confirmed stored.
type Result struct {
	Key        string `json:"key"`
	URL        string `json:"url"`
	Background string `json:"background"`
}

// Options configures a Service.
type Options struct {
	Validator   label.Validator
	Composer    *compose.Composer
	Uploader    storage.Uploader
	Canvas      layout.Canvas
	OutputDir   string
	Endpoint    string
	Bucket      string
	Concurrency int64
	Metrics     *metrics.Metrics
	Logger      hclog.Logger
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	validator label.Validator
	composer  *compose.Composer
	uploader  storage.Uploader
	canvas    layout.Canvas
	outputDir string
	endpoint  string
	bucket    string
	slots     *semaphore.Weighted
	metrics   *metrics.Metrics
	logger    hclog.Logger
}

// NewService validates opts and returns a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Composer == nil {
		return nil, apperr.NewConfigurationError("cover service requires a composer")
	}
	if opts.Uploader == nil {
		return nil, apperr.NewConfigurationError("cover service requires an uploader")
	}
	if err := opts.Canvas.Validate(); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		return nil, apperr.NewConfigurationError("cover service requires an output directory")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{
		validator: opts.Validator,
		composer:  opts.Composer,
		uploader:  opts.Uploader,
		canvas:    opts.Canvas,
		outputDir: opts.OutputDir,
		endpoint:  opts.Endpoint,
		bucket:    opts.Bucket,
		slots:     semaphore.NewWeighted(opts.Concurrency),
		metrics:   opts.Metrics,
		logger:    logger,
	}, nil
}

// CreateMonthly renders and stores the cover for month/year.
func (s *Service) CreateMonthly(ctx context.Context, month string, year int) (Result, error) {
	m, err := s.validator.ValidateMonthly(month, year)
	if err != nil {
		return Result{}, err
	}
	plan, err := PlanMonthly(s.canvas, m)
	if err != nil {
		return Result{}, err
	}
	return s.publish(ctx, plan)
}

// CreateWeekly renders and stores the cover for the date1..date2 week.
func (s *Service) CreateWeekly(ctx context.Context, date1, date2 string, year int) (Result, error) {
	w, err := s.validator.ValidateWeekly(date1, date2, year)
	if err != nil {
		return Result{}, err
	}
	plan, err := PlanWeekly(s.canvas, w)
	if err != nil {
		return Result{}, err
	}
	return s.publish(ctx, plan)
}

// publish renders plan to a uniquely named temporary file, uploads it once
// and removes the file on every exit path.
func (s *Service) publish(ctx context.Context, plan Plan) (Result, error) {
	logger := s.logger.With("key", plan.Key)

	path := filepath.Join(s.outputDir, fmt.Sprintf("%s-%s.png", objectkey.Slug(plan.Key), uuid.NewString()))
	if err := security.ValidateWithinDir(path, s.outputDir); err != nil {
		return Result{}, &apperr.RenderError{Op: "output path", Err: err}
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove temporary cover", "path", path, "error", err)
		}
	}()

	if err := s.render(ctx, plan, path); err != nil {
		return Result{}, err
	}

	if err := s.upload(ctx, plan.Key, path); err != nil {
		logger.Error("upload failed", "error", err)
		return Result{}, err
	}

	url := storage.PublicURL(s.endpoint, s.bucket, plan.Key)
	logger.Info("cover published", "url", url, "background", plan.Background.Hex())
	return Result{Key: plan.Key, URL: url, Background: plan.Background.Hex()}, nil
}

// render holds a concurrency slot while composing and encoding.
func (s *Service) render(ctx context.Context, plan Plan, path string) (err error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return &apperr.RenderError{Op: "wait for render slot", Err: err}
	}
	defer s.slots.Release(1)

	s.metrics.RenderStarted()
	defer s.metrics.RenderFinished()

	start := time.Now()
	defer func() {
		s.metrics.ObserveRender(plan.Kind, time.Since(start), err)
	}()

	img, err := s.composer.Render(plan.Canvas, plan.Background.RGBA(), plan.Labels)
	if err != nil {
		return err
	}
	if err := compose.WritePNG(path, img); err != nil {
		return err
	}
	s.logger.Debug("cover rendered", "key", plan.Key, "path", path, "elapsed", time.Since(start))
	return nil
}

// upload streams the closed file at path to the object store exactly once.
func (s *Service) upload(ctx context.Context, key, path string) (err error) {
	defer func() { s.metrics.ObserveUpload(err) }()

	f, err := os.Open(path) // #nosec G304 -- path was generated inside the output dir
	if err != nil {
		return &apperr.RenderError{Op: "reopen output", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &apperr.RenderError{Op: "stat output", Err: err}
	}

	if err := s.uploader.PutObject(ctx, s.bucket, key, f, info.Size(), storage.ContentTypePNG); err != nil {
		var serr *apperr.StorageError
		if !errors.As(err, &serr) {
			err = &apperr.StorageError{Op: "put", Key: key, Err: err}
		}
		return err
	}
	return nil
}
