package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/draftgen-cli/config"
	"github.com/otherjamesbrown/draftgen-cli/credentials"
	"github.com/otherjamesbrown/draftgen-cli/pkg/generation"
	"github.com/otherjamesbrown/draftgen-cli/pkg/intent"
	"github.com/otherjamesbrown/draftgen-cli/pkg/logging"
	"github.com/otherjamesbrown/draftgen-cli/pkg/observability"
	"github.com/otherjamesbrown/draftgen-cli/pkg/pipeline"
)

// Draft command flags.
var (
	draftOutput        string
	draftCorrelationID string
	draftModelPath     string
	draftAudioPath     string
)

// DraftCommandDeps holds the dependencies for the draft command.
type DraftCommandDeps struct {
	LoadConfig func() (*config.Config, error)
	APIKey     func() (string, error)

	// RunFn overrides pipeline execution for testing.
	RunFn func(ctx context.Context, cfg *config.Config, description, correlationID string) (*pipeline.Outcome, error)

	// TranscribeFn overrides audio transcription for testing.
	TranscribeFn func(ctx context.Context, cfg *config.Config, audio []byte, filename string) (string, error)
}

// DefaultDraftDeps returns the default dependencies for production use.
func DefaultDraftDeps() *DraftCommandDeps {
	return &DraftCommandDeps{
		LoadConfig: config.LoadConfig,
		APIKey:     activeAPIKey,
		RunFn:      nil,
	}
}

// activeAPIKey resolves the generation-service API key from the environment
// or the encrypted credential store.
func activeAPIKey() (string, error) {
	if key := os.Getenv(credentials.APIKeyEnvVar); key != "" {
		return key, nil
	}
	store, err := credentials.NewStore()
	if err != nil {
		return "", err
	}
	return store.ActiveAPIKey()
}

// NewDraftCommand creates the draft command.
func NewDraftCommand(deps *DraftCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDraftDeps()
	}

	cmd := &cobra.Command{
		Use:   "draft <description>",
		Short: "Generate a structured email draft from a description",
		Long: `Generate a structured email draft from a natural-language description.

The description is classified to infer the sender/recipient relationship,
an instruction is assembled for the generation service, and the response is
extracted and validated into subject, greeting, body, and closing fields.

The description must be between 10 and 500 characters. Pass "-" to read
the description from stdin, or --audio to transcribe it from a recording.

Examples:
  draftgen draft "Ask my manager for two days of leave next week"
  draftgen draft --output json "Follow up with the client on the delayed invoice"
  draftgen draft --audio request.wav
  echo "Request a fee waiver from the college administration" | draftgen draft -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if draftModelPath != "" {
				cfg.ModelArtifactPath = draftModelPath
			}

			format, err := resolveOutputFormat(draftOutput, cfg)
			if err != nil {
				return err
			}

			description, err := resolveDraftDescription(cmd, deps, cfg, args)
			if err != nil {
				return err
			}

			run := deps.RunFn
			if run == nil {
				apiKey, err := resolveAPIKey(deps)
				if err != nil {
					return err
				}
				run = func(ctx context.Context, cfg *config.Config, description, correlationID string) (*pipeline.Outcome, error) {
					return runPipeline(ctx, cfg, apiKey, description, correlationID)
				}
			}

			outcome, err := run(cmd.Context(), cfg, description, draftCorrelationID)
			if err != nil {
				return err
			}

			return renderOutcome(cmd.OutOrStdout(), format, outcome)
		},
	}

	// Silence cobra's own error/usage printing - a failed run is not a
	// usage mistake, and both blocks would corrupt json/yaml output.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.Flags().StringVarP(&draftOutput, "output", "o", "", "output format: text, json, yaml")
	cmd.Flags().StringVar(&draftCorrelationID, "correlation-id", "", "correlation ID to attach (default: generated)")
	cmd.Flags().StringVar(&draftModelPath, "model-artifact", "", "path to an intent model artifact (default: built-in model)")
	cmd.Flags().StringVar(&draftAudioPath, "audio", "", "path to an audio recording to transcribe into the description")

	return cmd
}

// resolveDraftDescription produces the draft description from the positional
// argument, stdin, or an audio recording. Exactly one source must be used.
func resolveDraftDescription(cmd *cobra.Command, deps *DraftCommandDeps, cfg *config.Config, args []string) (string, error) {
	if draftAudioPath != "" {
		if len(args) > 0 {
			return "", errors.New("pass a description or --audio, not both")
		}
		return transcribeDescription(cmd.Context(), deps, cfg)
	}
	if len(args) == 0 {
		return "", errors.New("pass a description argument or --audio")
	}
	description := args[0]
	if description == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading description from stdin: %w", err)
		}
		description = string(data)
	}
	return description, nil
}

// transcribeDescription reads the audio file and turns spoken input into a
// description via the transcription service.
func transcribeDescription(ctx context.Context, deps *DraftCommandDeps, cfg *config.Config) (string, error) {
	audio, err := os.ReadFile(draftAudioPath)
	if err != nil {
		return "", fmt.Errorf("reading audio file: %w", err)
	}

	transcribe := deps.TranscribeFn
	if transcribe == nil {
		apiKey, err := resolveAPIKey(deps)
		if err != nil {
			return "", err
		}
		transcribe = func(ctx context.Context, cfg *config.Config, audio []byte, filename string) (string, error) {
			genCfg := cfg.Generation
			genCfg.APIKey = apiKey
			client := generation.NewClient(genCfg, generation.WithLogger(logging.MustGlobal()))
			return client.Transcribe(ctx, audio, filename)
		}
	}
	return transcribe(ctx, cfg, audio, filepath.Base(draftAudioPath))
}

// resolveAPIKey resolves the service key, mapping a missing credential to an
// actionable message.
func resolveAPIKey(deps *DraftCommandDeps) (string, error) {
	apiKey, err := deps.APIKey()
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredentials) {
			return "", fmt.Errorf("no API key configured; run 'draftgen auth login' or set %s", credentials.APIKeyEnvVar)
		}
		return "", fmt.Errorf("resolving API key: %w", err)
	}
	return apiKey, nil
}

// runPipeline assembles the pipeline from configuration and runs it once.
func runPipeline(ctx context.Context, cfg *config.Config, apiKey, description, correlationID string) (*pipeline.Outcome, error) {
	logger := logging.MustGlobal()

	genCfg := cfg.Generation
	genCfg.APIKey = apiKey
	generator := generation.NewClient(genCfg, generation.WithLogger(logger))

	classifier := intent.NewClassifier(
		intent.WithArtifactPath(cfg.ModelArtifactPath),
		intent.WithLogger(logger),
	)

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(observability.DefaultPipelineMetrics()),
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, pipeline.WithRequestTimeout(cfg.RequestTimeout))
	}
	if cfg.RedisAddress != "" {
		sink := observability.NewRedisSink(cfg.RedisAddress)
		defer sink.Close()
		opts = append(opts, pipeline.WithSink(sink))
	}

	p := pipeline.New(classifier, generator, opts...)
	return p.Process(ctx, description, correlationID), nil
}

// renderOutcome writes the pipeline outcome in the requested format.
// Failed outcomes render then return an error so the process exits non-zero.
func renderOutcome(w io.Writer, format config.OutputFormat, outcome *pipeline.Outcome) error {
	switch format {
	case config.OutputFormatJSON:
		if err := renderJSON(w, outcome); err != nil {
			return err
		}
	case config.OutputFormatYAML:
		if err := renderYAML(w, outcome); err != nil {
			return err
		}
	default:
		renderOutcomeText(w, outcome)
	}

	if !outcome.OK() {
		return fmt.Errorf("draft failed: %s: %s", outcome.Failure.Code, outcome.Failure.Reason)
	}
	return nil
}

func renderOutcomeText(w io.Writer, outcome *pipeline.Outcome) {
	if !outcome.OK() {
		return
	}
	d := outcome.Draft
	fmt.Fprintf(w, "Subject: %s\n\n", d.Subject)
	fmt.Fprintf(w, "%s\n\n", d.Greeting)
	fmt.Fprintf(w, "%s\n\n", d.Body)
	fmt.Fprintf(w, "%s\n", d.Closing)

	meta := []string{
		fmt.Sprintf("intent=%s", outcome.Label),
		fmt.Sprintf("tier=%s", outcome.Tier),
	}
	if outcome.FallbackUsed {
		meta = append(meta, "fallback=true")
	}
	if outcome.WarningsSuppressed {
		meta = append(meta, "placeholders-allowed=true")
	}
	fmt.Fprintf(w, "\n-- %s correlation=%s\n", strings.Join(meta, " "), outcome.CorrelationID)
}
