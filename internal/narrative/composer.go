package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
	apperrors "github.com/hdmquan/logos-living-capital/internal/errors"
	"github.com/hdmquan/logos-living-capital/internal/infrastructure"
)

// Section is the model's answer for one analysis.
type Section struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Prompt string `json:"-"`
	Text   string `json:"text"`
}

// Narrative is the composed qualitative analysis.
type Narrative struct {
	Model    string    `json:"model"`
	Sections []Section `json:"sections"`
	Summary  string    `json:"summary"`
	// Skipped lists the analyses left out for lack of data.
	Skipped []string `json:"skipped,omitempty"`
}

// Option configures a Composer.
type Option func(*Composer)

// WithConcurrency bounds the number of sub-prompts in flight.
func WithConcurrency(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRateLimit spaces model calls to rps per second. Zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Composer) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
		}
	}
}

// WithTimeout bounds every model call.
func WithTimeout(d time.Duration) Option {
	return func(c *Composer) { c.timeout = d }
}

// WithMetrics records model calls on m.
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(c *Composer) { c.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Composer runs the sub-prompts and the master prompt against a model.
type Composer struct {
	model       Model
	templates   map[string]Template
	concurrency int
	limiter     *rate.Limiter
	timeout     time.Duration
	metrics     *infrastructure.PipelineMetrics
	logger      *slog.Logger
}

// NewComposer creates a composer over model.
func NewComposer(model Model, opts ...Option) *Composer {
	c := &Composer{
		model:       model,
		templates:   Templates,
		concurrency: 1,
		limiter:     rate.NewLimiter(rate.Inf, 0),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "narrative"), slog.String("model", model.Name()))
	return c
}

// Compose asks the model about every non-empty result, in order, then
// synthesizes the answers with the master prompt. Any model failure fails the
// whole narrative.
func (c *Composer) Compose(ctx context.Context, results []*analysis.Result) (*Narrative, error) {
	story := &Narrative{Model: c.model.Name()}

	var sections []Section
	for _, res := range results {
		tmpl, ok := c.templates[res.Name]
		if !ok || res.Skipped != "" || res.Empty() {
			story.Skipped = append(story.Skipped, res.Name)
			continue
		}
		prompt, err := BuildPrompt(tmpl, res)
		if err != nil {
			return nil, apperrors.NewNarrativeError("failed to build prompt for "+res.Name, err)
		}
		sections = append(sections, Section{Name: res.Name, Label: tmpl.Label, Prompt: prompt})
	}

	if len(sections) == 0 {
		return nil, apperrors.NewNarrativeError("no analysis has data", nil)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i := range sections {
		g.Go(func() error {
			text, err := c.generate(gctx, sections[i].Prompt)
			if err != nil {
				return fmt.Errorf("%s: %w", sections[i].Name, err)
			}
			sections[i].Text = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewNarrativeError("sub-analysis failed", err)
	}

	summary, err := c.generate(ctx, MasterPrompt(sections))
	if err != nil {
		return nil, apperrors.NewNarrativeError("master analysis failed", err)
	}

	story.Sections = sections
	story.Summary = summary

	c.logger.InfoContext(ctx, "Narrative composed",
		slog.Int("sections", len(sections)),
		slog.Int("skipped", len(story.Skipped)))

	return story, nil
}

func (c *Composer) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.model.Generate(ctx, prompt)
	c.record(ctx, time.Since(start), err)
	if err != nil {
		c.logger.WarnContext(ctx, "Model call failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return "", err
	}
	c.logger.DebugContext(ctx, "Model call complete",
		slog.Int("prompt_bytes", len(prompt)),
		slog.Duration("duration", time.Since(start)))
	return text, nil
}

func (c *Composer) record(ctx context.Context, d time.Duration, err error) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("model", c.model.Name()),
		attribute.String("status", status),
	)
	c.metrics.NarrativeCalls.Add(ctx, 1, attrs)
	c.metrics.NarrativeDuration.Record(ctx, d.Seconds(), attrs)
}
