package cli

import (
	"testing"

	"kiddoland-quiz-service/internal/config"
)

func TestResolvePortPrecedence(t *testing.T) {
	var cfg config.Config
	if got := resolvePort("", cfg); got != "8080" {
		t.Fatalf("expected fallback 8080, got %s", got)
	}

	cfg.Server.Port = "9090"
	if got := resolvePort("", cfg); got != "9090" {
		t.Fatalf("expected config port, got %s", got)
	}
	if got := resolvePort("7000", cfg); got != "7000" {
		t.Fatalf("expected flag port, got %s", got)
	}
}

func TestRootPortFlagDefaultsToConfig(t *testing.T) {
	t.Setenv("PORT", "")
	cmd := newRootCmd()
	if got := cmd.PersistentFlags().Lookup("port").DefValue; got != "" {
		t.Fatalf("expected empty --port default so config applies, got %q", got)
	}
}
