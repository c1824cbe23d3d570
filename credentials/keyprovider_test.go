package credentials

import (
	"encoding/hex"
	"os"
	"strings"
	"testing"
)

func TestEnvKeyProvider(t *testing.T) {
	t.Setenv("TEST_DRAFTGEN_KEY", testEncryptionKey)

	provider := NewEnvKeyProvider("TEST_DRAFTGEN_KEY")
	key, err := provider.GetKey()
	if err != nil {
		t.Fatalf("GetKey() error = %v", err)
	}

	expected, _ := hex.DecodeString(testEncryptionKey)
	if len(key) != keyLength {
		t.Errorf("GetKey() returned %d bytes, want %d", len(key), keyLength)
	}
	if hex.EncodeToString(key) != hex.EncodeToString(expected) {
		t.Error("GetKey() returned unexpected key material")
	}
}

func TestEnvKeyProviderErrors(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "unset", value: ""},
		{name: "not hex", value: "zzzz"},
		{name: "wrong length", value: "0123456789abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				os.Unsetenv("TEST_DRAFTGEN_KEY")
			} else {
				t.Setenv("TEST_DRAFTGEN_KEY", tt.value)
			}
			provider := NewEnvKeyProvider("TEST_DRAFTGEN_KEY")
			if _, err := provider.GetKey(); err == nil {
				t.Error("GetKey() should fail")
			}
		})
	}
}

func TestStaticKeyProvider(t *testing.T) {
	key := make([]byte, keyLength)
	provider := NewStaticKeyProvider(key)

	got, err := provider.GetKey()
	if err != nil {
		t.Fatalf("GetKey() error = %v", err)
	}
	if len(got) != keyLength {
		t.Errorf("GetKey() returned %d bytes, want %d", len(got), keyLength)
	}

	short := NewStaticKeyProvider(key[:8])
	if _, err := short.GetKey(); err == nil {
		t.Error("GetKey() should reject short key")
	}
}

func TestGetDefaultKeyProviderPrefersEnv(t *testing.T) {
	t.Setenv(EncryptionKeyEnvVar, testEncryptionKey)

	provider, err := GetDefaultKeyProvider()
	if err != nil {
		t.Fatalf("GetDefaultKeyProvider() error = %v", err)
	}
	if !strings.Contains(provider.Description(), EncryptionKeyEnvVar) {
		t.Errorf("Description() = %q, want env-based provider", provider.Description())
	}
}
