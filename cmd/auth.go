package cmd

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/otherjamesbrown/draftgen-cli/credentials"
)

// Auth command flags.
var (
	authAPIKey  string
	authBaseURL string
)

// AuthCommandDeps holds the dependencies for auth commands.
type AuthCommandDeps struct {
	NewStore func() (*credentials.Store, error)

	// ReadSecret reads the API key without echoing. Overridable for tests.
	ReadSecret func() (string, error)
}

// DefaultAuthDeps returns the default dependencies for production use.
func DefaultAuthDeps() *AuthCommandDeps {
	return &AuthCommandDeps{
		NewStore: credentials.NewStore,
		ReadSecret: func() (string, error) {
			data, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
	}
}

// NewAuthCommand creates the auth command group.
func NewAuthCommand(deps *AuthCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAuthDeps()
	}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage generation-service credentials",
		Long: `Manage the API key used to call the generation service.

The key is stored in ~/.draftgen/credentials.yaml, encrypted with a key
held in the system keyring. The DRAFTGEN_API_KEY environment variable
takes precedence over stored credentials.`,
	}

	cmd.AddCommand(newAuthLoginCommand(deps))
	cmd.AddCommand(newAuthStatusCommand(deps))
	cmd.AddCommand(newAuthLogoutCommand(deps))

	return cmd
}

func newAuthLoginCommand(deps *AuthCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the generation-service API key",
		Long: `Store the generation-service API key in the encrypted credential store.

Examples:
  # Interactive (prompts for the key without echoing)
  draftgen auth login

  # Non-interactive
  draftgen auth login --api-key gsk_...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := authAPIKey
			if apiKey == "" {
				fmt.Fprint(cmd.OutOrStdout(), "API key: ")
				secret, err := deps.ReadSecret()
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("reading API key: %w", err)
				}
				apiKey = secret
			}

			apiKey = strings.TrimSpace(apiKey)
			if apiKey == "" {
				return fmt.Errorf("API key must not be empty")
			}

			store, err := deps.NewStore()
			if err != nil {
				return fmt.Errorf("opening credential store: %w", err)
			}

			creds := &credentials.Credentials{
				APIKey:  apiKey,
				BaseURL: authBaseURL,
			}
			if err := store.Save(creds); err != nil {
				return fmt.Errorf("saving credentials: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "API key stored (encryption key: %s)\n", store.KeyDescription())
			return nil
		},
	}

	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	cmd.Flags().StringVar(&authAPIKey, "api-key", "", "API key (omit to enter interactively)")
	cmd.Flags().StringVar(&authBaseURL, "base-url", "", "service endpoint this key is for")

	return cmd
}

func newAuthStatusCommand(deps *AuthCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show credential status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.NewStore()
			if err != nil {
				return fmt.Errorf("opening credential store: %w", err)
			}

			out := cmd.OutOrStdout()
			if !store.Exists() {
				fmt.Fprintln(out, "No credentials stored. Run 'draftgen auth login'.")
				return nil
			}

			creds, err := store.Load()
			if err != nil {
				return fmt.Errorf("loading credentials: %w", err)
			}

			fmt.Fprintf(out, "API key:        %s\n", maskKey(creds.APIKey))
			if creds.BaseURL != "" {
				fmt.Fprintf(out, "Base URL:       %s\n", creds.BaseURL)
			}
			fmt.Fprintf(out, "Last updated:   %s\n", creds.LastUpdated.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Encryption key: %s\n", store.KeyDescription())
			return nil
		},
	}

	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	return cmd
}

func newAuthLogoutCommand(deps *AuthCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.NewStore()
			if err != nil {
				return fmt.Errorf("opening credential store: %w", err)
			}
			if err := store.Delete(); err != nil {
				return fmt.Errorf("removing credentials: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Credentials removed.")
			return nil
		},
	}

	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	return cmd
}

// maskKey hides all but the first and last few characters of a key.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
