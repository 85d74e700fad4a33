package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
}

func TestLoadFallsBackOnBadTTLs(t *testing.T) {
	t.Setenv("SUMMARY_TTL_SECONDS", "bogus")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "-3")

	cfg := Load()
	if cfg.SummaryTTLSeconds != 20 {
		t.Fatalf("expected summary TTL fallback 20, got %d", cfg.SummaryTTLSeconds)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("expected token TTL fallback 480, got %d", cfg.AccessTokenTTLMinutes)
	}
}
