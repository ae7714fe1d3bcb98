package core

import (
	"errors"
	"testing"

	"github.com/griptape-ai/griptape-nodes-library-decart/model"
)

func TestResolveAPIKeyFromConfig(t *testing.T) {
	key, err := ResolveAPIKey(model.DecartConfig{APIKey: "from-config"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "from-config" {
		t.Errorf("expected config key to win, got %q", key)
	}
}

func TestResolveAPIKeyFromEnv(t *testing.T) {
	t.Setenv("DECART_TEST_KEY", "from-env")
	key, err := ResolveAPIKey(model.DecartConfig{APIKeyEnv: "DECART_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "from-env" {
		t.Errorf("expected env key, got %q", key)
	}
}

func TestResolveAPIKeyMissing(t *testing.T) {
	_, err := ResolveAPIKey(model.DecartConfig{APIKeyEnv: "DECART_TEST_KEY_ABSENT"})
	var missing *MissingCredentialError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingCredentialError, got %v", err)
	}
	if missing.EnvVar != "DECART_TEST_KEY_ABSENT" {
		t.Errorf("expected env var name in error, got %q", missing.EnvVar)
	}
}
