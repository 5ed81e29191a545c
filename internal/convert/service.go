// Package convert runs the conversion pipeline: validate the request,
// decode the HTML, render it in the requested format and store the result.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	htmlconv "github.com/porticus-lab/go-html-convert"
	"github.com/porticus-lab/go-html-convert/internal/metrics"
	"github.com/porticus-lab/go-html-convert/internal/store"
)

// ErrMissingFields is returned when base64Html or format is empty.
var ErrMissingFields = fmt.Errorf("%w: base64Html and format are required", htmlconv.ErrInvalidInput)

// Request is the body of a conversion request.
type Request struct {
	Base64HTML string `json:"base64Html"`
	Format     string `json:"format"`
}

// Validate checks that both fields are present.
func (r *Request) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Base64HTML, validation.Required),
		validation.Field(&r.Format, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingFields, err)
	}
	return nil
}

// Storage persists rendered documents.
type Storage interface {
	Save(ctx context.Context, res *htmlconv.Result) (*store.File, error)
}

// Result describes a stored conversion.
type Result struct {
	File    *store.File
	Format  htmlconv.Format
	Message string
}

// Service converts requests with one renderer per output format.
type Service struct {
	renderers map[htmlconv.Format]htmlconv.Renderer
	storage   Storage
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewService creates a service. A later renderer replaces an earlier one
// for the same format; m may be nil.
func NewService(renderers []htmlconv.Renderer, storage Storage, m *metrics.Metrics, logger *slog.Logger) *Service {
	byFormat := make(map[htmlconv.Format]htmlconv.Renderer, len(renderers))
	for _, r := range renderers {
		byFormat[r.Format()] = r
	}
	return &Service{
		renderers: byFormat,
		storage:   storage,
		metrics:   m,
		logger:    logger,
	}
}

// Convert validates req, renders the document and stores it. Input
// problems are reported as errors wrapping [htmlconv.ErrInvalidInput];
// nothing is rendered or stored in that case.
func (s *Service) Convert(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	res, err := s.convert(ctx, req)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, htmlconv.ErrInvalidInput) {
			outcome = metrics.OutcomeInvalid
			s.logger.Debug("conversion rejected", "format", req.Format, "error", err)
		} else {
			s.logger.Error("conversion failed",
				"format", req.Format,
				"duration", time.Since(start),
				"error", err,
			)
		}
		s.metrics.Observe(formatLabel(req.Format), outcome, time.Since(start), 0)
		return nil, err
	}

	elapsed := time.Since(start)
	s.metrics.Observe(string(res.Format), metrics.OutcomeSuccess, elapsed, res.File.Size)
	s.logger.Info("conversion completed",
		"format", res.Format,
		"file", res.File.Name,
		"size", res.File.Size,
		"duration", elapsed,
	)
	return res, nil
}

func (s *Service) convert(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	format, err := htmlconv.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w %q: no renderer configured", htmlconv.ErrUnsupportedFormat, format)
	}

	html, err := htmlconv.DecodeHTML(req.Base64HTML)
	if err != nil {
		return nil, err
	}

	artifact, err := renderer.Render(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", format, err)
	}

	file, err := s.storage.Save(ctx, artifact)
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", format, err)
	}

	return &Result{
		File:    file,
		Format:  format,
		Message: format.Label() + " generated successfully.",
	}, nil
}

// formatLabel keeps arbitrary client input out of metric labels.
func formatLabel(s string) string {
	if f, err := htmlconv.ParseFormat(s); err == nil {
		return string(f)
	}
	return "unknown"
}
