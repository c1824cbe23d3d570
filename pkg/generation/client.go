package generation

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	pferrors "github.com/otherjamesbrown/draftgen-cli/pkg/errors"
	"github.com/otherjamesbrown/draftgen-cli/pkg/logging"
)

// Config holds the externally provided generation service settings.
type Config struct {
	// BaseURL is the address of the OpenAI-compatible generation service.
	BaseURL string `yaml:"base_url"`
	// APIKey authenticates against the service.
	APIKey string `yaml:"-"`
	// Model is the model selector sent with every request.
	Model string `yaml:"model"`
	// TranscriptionModel is the speech-to-text model used for audio input.
	TranscriptionModel string `yaml:"transcription_model"`
	// AttemptTimeout bounds each individual service call. It must be well
	// below the end-to-end request budget, never the SDK default.
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	// Retry is the retry/backoff policy.
	Retry RetryPolicy `yaml:"retry"`
}

// DefaultConfig returns client settings suitable for an interactive budget.
func DefaultConfig() Config {
	return Config{
		Model:              "llama-3.1-8b-instant",
		TranscriptionModel: string(openai.AudioModelWhisper1),
		AttemptTimeout:     8 * time.Second,
		Retry:              DefaultRetryPolicy(),
	}
}

// Generator produces a GeneratedText for an instruction. The domain tag
// selects the fallback template if the service is unavailable.
type Generator interface {
	Generate(ctx context.Context, instruction, domain string) (GeneratedText, error)
}

// Client calls the generation service with retry, backoff, and fallback.
// Safe for concurrent use; all state is per-call.
type Client struct {
	api    openai.Client
	cfg    Config
	logger logging.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithLogger sets a custom logger.
func WithLogger(logger logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a generation client. SDK-internal retries are disabled;
// the retry policy here is the only one in play.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultConfig().AttemptTimeout
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = DefaultConfig().TranscriptionModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}

	c := &Client{
		api: openai.NewClient(reqOpts...),
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.MustGlobal()
	}
	c.logger = c.logger.With(logging.F("component", "generation_client"))
	return c
}

// Generate runs the attempt state machine:
//
//	Attempt(n) -> Done                      on success
//	Attempt(n) -> Backoff -> Attempt(n+1)   on transient failure, n < maxRetries
//	Attempt(n) -> Fallback                  on transient failure, n == maxRetries
//	Attempt(n) -> Failed                    on non-transient failure
//
// A caller deadline that cannot accommodate another attempt short-circuits
// to Fallback rather than exceeding the budget. Instruction content is
// never logged; per-attempt metadata always is.
func (c *Client) Generate(ctx context.Context, instruction, domain string) (GeneratedText, error) {
	start := time.Now()
	attempts := 0
	var content string
	var lastErr error

	st := stateAttempt
	for {
		switch st {
		case stateAttempt:
			attemptStart := time.Now()
			out, err := c.attempt(ctx, instruction)
			attempts++
			if err == nil {
				content = out
				c.logger.Debug("generation attempt succeeded",
					logging.F("attempt", attempts),
					logging.F("attempt_latency", time.Since(attemptStart)))
				st = stateDone
				break
			}
			lastErr = err
			c.logger.Warn("generation attempt failed",
				logging.F("attempt", attempts),
				logging.F("attempt_latency", time.Since(attemptStart)),
				logging.F("transient", IsTransient(err)),
				logging.Err(err))
			if !IsTransient(err) {
				st = stateFailed
				break
			}
			if attempts > c.cfg.Retry.MaxRetries {
				st = stateFallback
				break
			}
			st = stateBackoff

		case stateBackoff:
			delay := c.cfg.Retry.Backoff(attempts - 1)
			if !deadlineAllows(ctx, delay+c.cfg.AttemptTimeout) {
				c.logger.Warn("request deadline cannot fit another attempt, using fallback",
					logging.F("attempts", attempts))
				st = stateFallback
				break
			}
			select {
			case <-time.After(delay):
				st = stateAttempt
			case <-ctx.Done():
				st = stateFallback
			}

		case stateFallback:
			fb, ok := FallbackContent(domain)
			if !ok {
				return GeneratedText{}, pferrors.Wrap(pferrors.ErrGenerationUnavailable, "generate", lastErr)
			}
			c.logger.Error("generation service unavailable, using fallback template",
				logging.F("attempts", attempts),
				logging.F("domain", domain),
				logging.F("latency", time.Since(start)),
				logging.Err(lastErr))
			return GeneratedText{
				Content:  fb,
				Source:   SourceFallback,
				Latency:  time.Since(start),
				Attempts: attempts,
			}, nil

		case stateDone:
			c.logger.Info("generation completed",
				logging.F("attempts", attempts),
				logging.F("latency", time.Since(start)))
			return GeneratedText{
				Content:  content,
				Source:   SourceGenerated,
				Latency:  time.Since(start),
				Attempts: attempts,
			}, nil

		case stateFailed:
			c.logger.Error("generation failed permanently",
				logging.F("attempts", attempts),
				logging.F("latency", time.Since(start)),
				logging.Err(lastErr))
			return GeneratedText{}, pferrors.Wrap(pferrors.ErrGenerationUnavailable, "generate", lastErr)
		}
	}
}

// attempt performs a single bounded service call.
func (c *Client) attempt(ctx context.Context, instruction string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	resp, err := c.api.Chat.Completions.New(attemptCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(instruction),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("generation service returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// deadlineAllows reports whether the context deadline leaves at least
// needed headroom. Contexts without a deadline always allow.
func deadlineAllows(ctx context.Context, needed time.Duration) bool {
	deadline, ok := ctx.Deadline()
	if !ok {
		return true
	}
	return time.Until(deadline) >= needed
}
