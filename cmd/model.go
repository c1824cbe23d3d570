package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/draftgen-cli/config"
	"github.com/otherjamesbrown/draftgen-cli/pkg/control"
	"github.com/otherjamesbrown/draftgen-cli/pkg/intent"
	"github.com/otherjamesbrown/draftgen-cli/pkg/logging"
)

// Model command flags.
var (
	modelOutput       string
	modelTrainOut     string
	modelTrainEpochs  int
	modelClassifyPath string
)

// ModelCommandDeps holds the dependencies for model commands.
type ModelCommandDeps struct {
	LoadConfig func() (*config.Config, error)
}

// DefaultModelDeps returns the default dependencies for production use.
func DefaultModelDeps() *ModelCommandDeps {
	return &ModelCommandDeps{LoadConfig: config.LoadConfig}
}

// ModelInfoResult summarizes an intent model artifact.
type ModelInfoResult struct {
	Version        string         `json:"version"`
	TrainedAt      time.Time      `json:"trained_at"`
	Labels         []string       `json:"labels"`
	VocabularySize int            `json:"vocabulary_size"`
	Examples       int            `json:"examples"`
	ClassSizes     map[string]int `json:"class_sizes,omitempty"`
}

// ClassifyResult is the output of a debug classification.
type ClassifyResult struct {
	Label      string       `json:"label"`
	Confidence float64      `json:"confidence"`
	Tier       control.Tier `json:"tier"`
}

// NewModelCommand creates the root model command with all subcommands.
func NewModelCommand(deps *ModelCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultModelDeps()
	}

	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the intent classification model",
		Long: `Manage the intent classification model used to route descriptions.

The model is trained in-process from a built-in labeled dataset by default.
Use 'model train' to produce a reusable artifact file, 'model info' to
inspect one, and 'model classify' to test classification interactively.`,
	}

	cmd.AddCommand(newModelTrainCommand())
	cmd.AddCommand(newModelInfoCommand())
	cmd.AddCommand(newModelClassifyCommand(deps))

	return cmd
}

func newModelTrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the intent model and save the artifact",
		Long: `Train the intent model from the built-in dataset and save the artifact.

Training is deterministic: the same dataset and settings always produce
the same artifact.

Examples:
  draftgen model train --out ~/.draftgen/intent-model.json
  draftgen model train --out model.json --epochs 2000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelTrainOut == "" {
				return fmt.Errorf("--out is required")
			}

			trainCfg := intent.DefaultTrainConfig()
			if modelTrainEpochs > 0 {
				trainCfg.Epochs = modelTrainEpochs
			}

			artifact, err := intent.Train(intent.DefaultDataset, trainCfg)
			if err != nil {
				return fmt.Errorf("training model: %w", err)
			}
			if err := artifact.Save(modelTrainOut); err != nil {
				return fmt.Errorf("saving artifact: %w", err)
			}

			logging.MustGlobal().Info("model trained",
				logging.F("path", modelTrainOut),
				logging.F("labels", len(artifact.Labels)),
				logging.F("vocabulary", len(artifact.Vocabulary)))
			fmt.Fprintf(cmd.OutOrStdout(), "Artifact written to %s (%d labels, %d features)\n",
				modelTrainOut, len(artifact.Labels), len(artifact.Vocabulary))
			return nil
		},
	}

	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	cmd.Flags().StringVar(&modelTrainOut, "out", "", "destination path for the artifact (required)")
	cmd.Flags().IntVar(&modelTrainEpochs, "epochs", 0, "training epochs (default: built-in setting)")

	return cmd
}

func newModelInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <artifact>",
		Short: "Inspect an intent model artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			artifact, err := intent.LoadArtifact(args[0])
			if err != nil {
				return fmt.Errorf("loading artifact: %w", err)
			}

			info := ModelInfoResult{
				Version:        artifact.Version,
				TrainedAt:      artifact.TrainedAt,
				Labels:         artifact.Labels,
				VocabularySize: len(artifact.Vocabulary),
				Examples:       artifact.Examples,
				ClassSizes:     artifact.ClassSizes,
			}

			format, err := resolveOutputFormat(modelOutput, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case config.OutputFormatJSON:
				return renderJSON(out, info)
			case config.OutputFormatYAML:
				return renderYAML(out, info)
			default:
				fmt.Fprintf(out, "Version:    %s\n", info.Version)
				fmt.Fprintf(out, "Trained:    %s\n", info.TrainedAt.Format(time.RFC3339))
				fmt.Fprintf(out, "Labels:     %v\n", info.Labels)
				fmt.Fprintf(out, "Features:   %d\n", info.VocabularySize)
				fmt.Fprintf(out, "Examples:   %d\n", info.Examples)
				if len(info.ClassSizes) > 0 {
					labels := make([]string, 0, len(info.ClassSizes))
					for label := range info.ClassSizes {
						labels = append(labels, label)
					}
					sort.Strings(labels)
					fmt.Fprintln(out, "Class sizes:")
					for _, label := range labels {
						fmt.Fprintf(out, "  %-10s %d\n", label, info.ClassSizes[label])
					}
				}
				return nil
			}
		},
	}

	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	cmd.Flags().StringVarP(&modelOutput, "output", "o", "", "output format: text, json, yaml")

	return cmd
}

func newModelClassifyCommand(deps *ModelCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify a description without generating a draft",
		Long: `Classify a description and report the label, confidence, and tier.

Useful for checking how a description will be routed before drafting.

Examples:
  draftgen model classify "Ask HR about my leave balance"
  draftgen model classify --artifact model.json "write an email"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			artifactPath := modelClassifyPath
			if artifactPath == "" {
				if cfg, err := deps.LoadConfig(); err == nil {
					artifactPath = cfg.ModelArtifactPath
				}
			}

			classifier := intent.NewClassifier(
				intent.WithArtifactPath(artifactPath),
				intent.WithLogger(logging.MustGlobal()),
			)
			result := classifier.Classify(args[0])
			rec := control.Resolve(result)

			out := ClassifyResult{
				Label:      result.Label,
				Confidence: result.Confidence,
				Tier:       rec.Tier,
			}

			format, err := resolveOutputFormat(modelOutput, nil)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch format {
			case config.OutputFormatJSON:
				return renderJSON(w, out)
			case config.OutputFormatYAML:
				return renderYAML(w, out)
			default:
				fmt.Fprintf(w, "label=%s confidence=%.3f tier=%s\n", out.Label, out.Confidence, out.Tier)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&modelClassifyPath, "artifact", "", "path to a model artifact (default: config setting or built-in model)")
	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	cmd.Flags().StringVarP(&modelOutput, "output", "o", "", "output format: text, json, yaml")

	return cmd
}
