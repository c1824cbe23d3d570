// Package pipeline orchestrates the draft-generation stages: classify,
// resolve, prompt, generate, extract, validate. It assigns a correlation
// id, emits one audit event per stage transition, and maps every failure
// to a typed outcome.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/otherjamesbrown/draftgen-cli/pkg/control"
	pferrors "github.com/otherjamesbrown/draftgen-cli/pkg/errors"
	"github.com/otherjamesbrown/draftgen-cli/pkg/extract"
	"github.com/otherjamesbrown/draftgen-cli/pkg/generation"
	"github.com/otherjamesbrown/draftgen-cli/pkg/intent"
	"github.com/otherjamesbrown/draftgen-cli/pkg/logging"
	"github.com/otherjamesbrown/draftgen-cli/pkg/observability"
	"github.com/otherjamesbrown/draftgen-cli/pkg/prompt"
	"github.com/otherjamesbrown/draftgen-cli/pkg/validate"
)

// Description length bounds, in characters after trimming.
const (
	DescriptionMinLen = 10
	DescriptionMaxLen = 500
)

// DefaultRequestTimeout bounds one full pipeline run, including all
// generation retries and backoff.
const DefaultRequestTimeout = 45 * time.Second

// Outcome is the tagged result of one full pipeline run: either a
// validated draft with metadata, or a typed failure. Exactly one of Draft
// and Failure is set.
type Outcome struct {
	CorrelationID string              `json:"correlation_id"`
	Draft         *extract.EmailDraft `json:"draft,omitempty"`
	Label         string              `json:"label,omitempty"`
	Tier          control.Tier        `json:"tier,omitempty"`
	FallbackUsed  bool                `json:"fallback_used"`
	// WarningsSuppressed is true when whitelisted placeholders were
	// permitted under low confidence tier.
	WarningsSuppressed bool          `json:"warnings_suppressed"`
	Failure            *Failure      `json:"failure,omitempty"`
	Latency            time.Duration `json:"latency"`
}

// OK reports whether the run produced a validated draft.
func (o *Outcome) OK() bool {
	return o.Failure == nil
}

// Failure carries the typed failure of a pipeline run as structured data
// with a stable reason code.
type Failure struct {
	Code   pferrors.ErrorCode `json:"code"`
	Stage  string             `json:"stage,omitempty"`
	Reason string             `json:"reason"`
}

// Pipeline sequences the draft-generation stages. Request-scoped: no state
// is shared across Process calls except the injected collaborators, all of
// which are safe for concurrent use.
type Pipeline struct {
	classifier *intent.Classifier
	generator  generation.Generator
	logger     logging.Logger
	sink       observability.Sink
	metrics    *observability.PipelineMetrics
	tracer     *observability.Tracer

	requestTimeout time.Duration
	// repromptBudget bounds re-prompt attempts after malformed output.
	repromptBudget int
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(logger logging.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithSink sets the audit event sink.
func WithSink(sink observability.Sink) Option {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// WithMetrics sets the metrics collection.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithRequestTimeout bounds one full pipeline run.
func WithRequestTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.requestTimeout = d
		}
	}
}

// New creates a pipeline around the given classifier and generator.
func New(classifier *intent.Classifier, generator generation.Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier:     classifier,
		generator:      generator,
		sink:           observability.NopSink{},
		tracer:         observability.NewTracer(),
		requestTimeout: DefaultRequestTimeout,
		repromptBudget: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.MustGlobal()
	}
	p.logger = p.logger.With(logging.F("component", "pipeline"))
	return p
}

// Process runs the full pipeline for one description. It always returns a
// typed outcome and never panics past this boundary: unanticipated faults
// are converted to the nearest taxonomy code.
func (p *Pipeline) Process(ctx context.Context, description, correlationID string) (outcome *Outcome) {
	start := time.Now()
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	ctx = context.WithValue(ctx, logging.CorrelationIDKey, correlationID)
	ctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	logger := p.logger.WithContext(ctx)
	ctx, span := p.tracer.StartProcess(ctx, correlationID)

	outcome = &Outcome{CorrelationID: correlationID}
	defer func() {
		if r := recover(); r != nil {
			pe := pferrors.ClassifyError(fmt.Errorf("internal fault: %v", r), "pipeline")
			outcome.Failure = &Failure{Code: pe.Code, Stage: pe.Stage, Reason: pe.Reason}
			logger.Error("pipeline recovered from internal fault", logging.F("fault", fmt.Sprint(r)))
		}
		outcome.Latency = time.Since(start)
		code := "ok"
		if outcome.Failure != nil {
			code = string(outcome.Failure.Code)
		}
		if p.metrics != nil {
			p.metrics.OutcomesTotal.WithLabelValues(code).Inc()
		}
		observability.EndStage(span, nil)
		logger.Info("pipeline finished",
			logging.F("outcome", code),
			logging.F("latency", time.Since(start)))
	}()

	// Input bounds. The only client-correctable rejection.
	trimmed := strings.TrimSpace(description)
	if n := utf8.RuneCountInString(trimmed); n < DescriptionMinLen || n > DescriptionMaxLen {
		p.emit(ctx, correlationID, observability.StageInput, observability.StageStatusFailed, 0)
		outcome.Failure = &Failure{
			Code:   pferrors.ErrInputRejected,
			Stage:  observability.StageInput,
			Reason: fmt.Sprintf("description length %d outside %d-%d", n, DescriptionMinLen, DescriptionMaxLen),
		}
		return outcome
	}
	p.emit(ctx, correlationID, observability.StageInput, observability.StageStatusCompleted, 0)

	// Classification never fails; internal errors degrade to general/0.
	result := p.runClassify(ctx, correlationID, trimmed)

	// Control resolution is a pure lookup; the record is always fully
	// populated, even when classification degraded.
	rec := p.runResolve(ctx, correlationID, result)
	outcome.Label = rec.Label
	outcome.Tier = rec.Tier

	instruction, err := p.runPrompt(ctx, correlationID, rec, trimmed)
	if err != nil {
		outcome.Failure = failureFrom(err)
		return outcome
	}

	gen, err := p.runGenerate(ctx, correlationID, logger, instruction, rec.Domain)
	if err != nil {
		outcome.Failure = failureFrom(err)
		return outcome
	}
	outcome.FallbackUsed = gen.Source == generation.SourceFallback

	draft, err := p.runExtract(ctx, correlationID, gen)
	if err != nil && pferrors.IsCode(err, pferrors.ErrMalformedOutput) &&
		gen.Source == generation.SourceGenerated && p.repromptBudget > 0 {
		// Malformed output is often transient generation noise; one
		// bounded re-prompt before surfacing. Fallback text is a static
		// template, so re-prompting it cannot change anything.
		logger.Warn("extraction failed, re-prompting once")
		gen, err = p.runGenerate(ctx, correlationID, logger, instruction, rec.Domain)
		if err != nil {
			outcome.Failure = failureFrom(err)
			return outcome
		}
		outcome.FallbackUsed = outcome.FallbackUsed || gen.Source == generation.SourceFallback
		draft, err = p.runExtract(ctx, correlationID, gen)
	}
	if err != nil {
		outcome.Failure = failureFrom(err)
		return outcome
	}

	validated, err := p.runValidate(ctx, correlationID, draft, rec)
	if err != nil {
		outcome.Failure = failureFrom(err)
		return outcome
	}

	outcome.Draft = validated
	outcome.WarningsSuppressed = len(validate.SuppressedPlaceholders(validated, rec)) > 0
	return outcome
}

func (p *Pipeline) runClassify(ctx context.Context, correlationID, text string) intent.Result {
	ctx, span := p.tracer.StartStage(ctx, observability.StageClassify)
	start := time.Now()
	result := p.classifier.Classify(text)
	p.emit(ctx, correlationID, observability.StageClassify, observability.StageStatusCompleted, time.Since(start))
	p.observeStage(observability.StageClassify, observability.StageStatusCompleted, time.Since(start))
	observability.EndStage(span, nil)
	return result
}

func (p *Pipeline) runResolve(ctx context.Context, correlationID string, result intent.Result) control.Record {
	ctx, span := p.tracer.StartStage(ctx, observability.StageResolve)
	start := time.Now()
	rec := control.Resolve(result)
	if p.metrics != nil {
		p.metrics.ClassificationsTotal.WithLabelValues(rec.Label, string(rec.Tier)).Inc()
	}
	p.emit(ctx, correlationID, observability.StageResolve, observability.StageStatusCompleted, time.Since(start))
	p.observeStage(observability.StageResolve, observability.StageStatusCompleted, time.Since(start))
	observability.EndStage(span, nil)
	return rec
}

func (p *Pipeline) runPrompt(ctx context.Context, correlationID string, rec control.Record, description string) (string, error) {
	ctx, span := p.tracer.StartStage(ctx, observability.StagePrompt)
	start := time.Now()
	instruction, err := prompt.Build(rec, description)
	if err != nil {
		err = pferrors.ClassifyError(err, observability.StagePrompt)
	}
	p.finishStage(ctx, span, correlationID, observability.StagePrompt, start, err)
	return instruction, err
}

func (p *Pipeline) runGenerate(ctx context.Context, correlationID string, logger logging.Logger, instruction, domain string) (generation.GeneratedText, error) {
	ctx, span := p.tracer.StartStage(ctx, observability.StageGenerate)
	start := time.Now()
	gen, err := p.generator.Generate(ctx, instruction, domain)
	if err != nil {
		err = pferrors.ClassifyError(err, observability.StageGenerate)
	} else if p.metrics != nil {
		p.metrics.GenerationAttempts.Observe(float64(gen.Attempts))
		if gen.Source == generation.SourceFallback {
			p.metrics.FallbacksTotal.Inc()
		}
	}
	p.finishStage(ctx, span, correlationID, observability.StageGenerate, start, err)
	return gen, err
}

func (p *Pipeline) runExtract(ctx context.Context, correlationID string, gen generation.GeneratedText) (*extract.EmailDraft, error) {
	ctx, span := p.tracer.StartStage(ctx, observability.StageExtract)
	start := time.Now()
	draft, err := extract.Extract(gen.Content)
	if err != nil {
		err = pferrors.ClassifyError(err, observability.StageExtract)
	}
	p.finishStage(ctx, span, correlationID, observability.StageExtract, start, err)
	return draft, err
}

func (p *Pipeline) runValidate(ctx context.Context, correlationID string, draft *extract.EmailDraft, rec control.Record) (*extract.EmailDraft, error) {
	ctx, span := p.tracer.StartStage(ctx, observability.StageValidate)
	start := time.Now()

	var err error
	validated := draft.TrimFields()
	if rej := validate.Validate(validated, rec); rej != nil {
		if p.metrics != nil {
			p.metrics.RejectionsTotal.WithLabelValues(string(rej.Reason)).Inc()
		}
		err = &pferrors.PipelineError{
			Code:   pferrors.ErrOutputRejected,
			Stage:  observability.StageValidate,
			Reason: string(rej.Reason) + ": " + rej.Field + ": " + rej.Detail,
			Cause:  rej,
		}
	}
	p.finishStage(ctx, span, correlationID, observability.StageValidate, start, err)
	if err != nil {
		return nil, err
	}
	return validated, nil
}

func (p *Pipeline) finishStage(ctx context.Context, span trace.Span, correlationID, stage string, start time.Time, err error) {
	status := observability.StageStatusCompleted
	if err != nil {
		status = observability.StageStatusFailed
	}
	p.emit(ctx, correlationID, stage, status, time.Since(start))
	p.observeStage(stage, status, time.Since(start))
	observability.EndStage(span, err)
}

// emit publishes one audit event; sink failures are logged, never fatal.
func (p *Pipeline) emit(ctx context.Context, correlationID, stage, status string, duration time.Duration) {
	event := observability.NewStageEvent(correlationID, stage, status, duration)
	if err := p.sink.Publish(ctx, event); err != nil {
		p.logger.Warn("audit event publish failed",
			logging.F("stage", stage),
			logging.Err(err))
	}
}

func (p *Pipeline) observeStage(stage, status string, duration time.Duration) {
	if p.metrics != nil {
		p.metrics.StageSeconds.WithLabelValues(stage, status).Observe(duration.Seconds())
	}
}

func failureFrom(err error) *Failure {
	pe := pferrors.ClassifyError(err, "")
	return &Failure{Code: pe.Code, Stage: pe.Stage, Reason: pe.Reason}
}
