package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/otherjamesbrown/draftgen-cli/credentials"
)

// testCredentialsKey is a fixed 32-byte key hex-encoded to 64 chars.
const testCredentialsKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func testAuthDeps(t *testing.T, secret string) *AuthCommandDeps {
	t.Helper()

	t.Setenv("DRAFTGEN_CONFIG_DIR", t.TempDir())
	t.Setenv(credentials.EncryptionKeyEnvVar, testCredentialsKey)

	return &AuthCommandDeps{
		NewStore: func() (*credentials.Store, error) {
			return credentials.NewStoreWithKeyProvider(
				credentials.NewEnvKeyProvider(credentials.EncryptionKeyEnvVar))
		},
		ReadSecret: func() (string, error) { return secret, nil },
	}
}

func runAuthCommand(t *testing.T, deps *AuthCommandDeps, args ...string) (string, error) {
	t.Helper()

	authAPIKey = ""
	authBaseURL = ""

	cmd := NewAuthCommand(deps)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestAuthLoginStatusLogout(t *testing.T) {
	deps := testAuthDeps(t, "")

	out, err := runAuthCommand(t, deps, "login", "--api-key", "gsk_test_12345678")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "API key stored") {
		t.Errorf("login output = %q", out)
	}

	out, err = runAuthCommand(t, deps, "status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if strings.Contains(out, "gsk_test_12345678") {
		t.Errorf("status must not print the full key:\n%s", out)
	}
	if !strings.Contains(out, "gsk_") {
		t.Errorf("status should show a masked key:\n%s", out)
	}

	out, err = runAuthCommand(t, deps, "logout")
	if err != nil {
		t.Fatalf("logout error = %v", err)
	}
	if !strings.Contains(out, "Credentials removed") {
		t.Errorf("logout output = %q", out)
	}

	out, err = runAuthCommand(t, deps, "status")
	if err != nil {
		t.Fatalf("status after logout error = %v", err)
	}
	if !strings.Contains(out, "No credentials stored") {
		t.Errorf("status after logout = %q", out)
	}
}

func TestAuthLoginInteractive(t *testing.T) {
	deps := testAuthDeps(t, "  gsk_interactive_key  ")

	if _, err := runAuthCommand(t, deps, "login"); err != nil {
		t.Fatalf("login error = %v", err)
	}

	store, err := deps.NewStore()
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if creds.APIKey != "gsk_interactive_key" {
		t.Errorf("APIKey = %q, want trimmed interactive value", creds.APIKey)
	}
}

func TestAuthLoginRejectsEmptyKey(t *testing.T) {
	deps := testAuthDeps(t, "   ")

	if _, err := runAuthCommand(t, deps, "login"); err == nil {
		t.Error("login with blank key should fail")
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "short", want: "*****"},
		{in: "gsk_abcdefgh1234", want: "gsk_********1234"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.in); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
