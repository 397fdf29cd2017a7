package validation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/creative-compliance/internal/faces"
	"github.com/jonathan/creative-compliance/internal/rules"
	"github.com/jonathan/creative-compliance/internal/schemas"
	"github.com/jonathan/creative-compliance/internal/types"
)

// MaxConcurrentDetections bounds the number of images sent to the detector at once
const MaxConcurrentDetections = 4

// Engine validates designs against a rule configuration.
// It is safe for concurrent use; the only shared state is the face detector cache.
type Engine struct {
	config *rules.Config
	faces  *faces.Cache
	images faces.ImageFetcher
	logger *slog.Logger
	now    func() time.Time

	defaultFormat string
}

// Option configures an Engine
type Option func(*Engine)

// WithFaceDetection enables the people-detected advisory using the given detector cache
func WithFaceDetection(cache *faces.Cache) Option {
	return func(e *Engine) {
		e.faces = cache
	}
}

// WithImageFetcher lets face detection download http and https image sources
func WithImageFetcher(fetcher faces.ImageFetcher) Option {
	return func(e *Engine) {
		e.images = fetcher
	}
}

// WithLogger sets the logger used for debug output and swallowed detection failures
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDefaultFormat sets the format type used when a request does not name one
func WithDefaultFormat(format string) Option {
	return func(e *Engine) {
		e.defaultFormat = format
	}
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine. A nil config uses rules.DefaultConfig().
func NewEngine(cfg *rules.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = rules.DefaultConfig()
	}
	e := &Engine{
		config: cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the rule configuration the engine evaluates with
func (e *Engine) Config() *rules.Config {
	return e.config
}

// ValidateJSON checks a raw request document against the request schema, decodes it and validates it.
func (e *Engine) ValidateJSON(ctx context.Context, raw []byte) (*types.ComplianceReport, error) {
	if err := schemas.ValidateRequest(raw); err != nil {
		var schemaErr *schemas.ValidationError
		if errors.As(err, &schemaErr) {
			return nil, &InputError{Message: "request does not match schema", Fields: schemaErr.Fields(), Cause: err}
		}
		return nil, err
	}

	var req types.ValidationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &InputError{Message: "failed to decode request", Cause: err}
	}
	return e.Validate(ctx, &req)
}

// Validate runs every rule over the flattened design and returns the compliance report.
// Face detection, when enabled, runs alongside the rules and never fails the run.
func (e *Engine) Validate(ctx context.Context, req *types.ValidationRequest) (*types.ComplianceReport, error) {
	if req == nil {
		return nil, &InputError{Message: "request is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, &InputError{Message: "canvas must have a positive width and height", Cause: err}
	}

	format := req.Options.FormatType
	if format == "" {
		format = e.defaultFormat
	}

	tracer := otel.Tracer("validation")
	ctx, span := tracer.Start(ctx, "validation.Validate",
		trace.WithAttributes(
			attribute.Int("design.pages", len(req.Pages)),
			attribute.String("design.format", format),
			attribute.Bool("design.alcohol", req.Options.IsAlcohol),
			attribute.Bool("design.face_detection", req.Options.EnableFaceDetection),
		),
	)
	defer span.End()

	items := rules.Flatten(req.Pages, e.config)
	rctx := &rules.Context{
		Canvas:     req.Canvas,
		FormatType: format,
		IsAlcohol:  req.Options.IsAlcohol,
		Background: rules.ResolveBackground(req.Pages, e.config),
		Config:     e.config,
	}

	var ruleViolations, faceViolations []types.Violation

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ruleViolations = rules.RunAll(items, rctx)
		return nil
	})
	if req.Options.EnableFaceDetection {
		if e.faces == nil {
			e.logger.Debug("face detection requested but no detector is configured")
		} else {
			g.Go(func() error {
				faceViolations = e.detectPeople(gCtx, items)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	all := make([]types.Violation, 0, len(ruleViolations)+len(faceViolations))
	all = append(all, ruleViolations...)
	all = append(all, faceViolations...)

	report := BuildReport(all, e.config)
	report.ID = uuid.NewString()
	report.FormatType = format
	report.CreatedAt = e.now().UTC()

	span.SetAttributes(
		attribute.Int("report.score", report.Score),
		attribute.Bool("report.compliant", report.Compliant),
		attribute.Int("report.violations", report.Summary.Total),
	)
	e.logger.Debug("validation complete",
		"elements", len(items),
		"score", report.Score,
		"hard", report.Summary.Hard,
		"warnings", report.Summary.Warnings,
		"info", report.Summary.Info,
	)
	return report, nil
}

// detectPeople runs the detector over every image with a source. Failures are logged and
// produce no advisory for that image.
func (e *Engine) detectPeople(ctx context.Context, items []rules.Item) []types.Violation {
	var candidates []rules.Item
	for _, it := range items {
		if it.Element.Kind() == types.KindImage && it.Element.Src != "" {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	results := make([]*types.Violation, len(candidates))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentDetections)
	for i, it := range candidates {
		g.Go(func() error {
			found, err := faces.DetectFacesFrom(gCtx, e.faces, e.images, it.Element.Src)
			if err != nil {
				if errors.Is(err, faces.ErrUnsupportedSource) {
					e.logger.Debug("skipping face detection", "element", it.Element.ID, "error", err)
				} else {
					e.logger.Warn("face detection failed", "element", it.Element.ID, "error", err)
				}
				return nil
			}
			if len(found) > 0 {
				v := rules.PeopleDetected(it, len(found))
				results[i] = &v
			}
			return nil
		})
	}
	_ = g.Wait()

	var violations []types.Violation
	for _, v := range results {
		if v != nil {
			violations = append(violations, *v)
		}
	}
	return violations
}
