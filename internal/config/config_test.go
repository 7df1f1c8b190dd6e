package config

import "testing"

func TestValidate_DevAllowsEmptyKeyAndWildcard(t *testing.T) {
	cfg := &Config{Environment: EnvDev, APIKey: "", BackendCORSOrigins: []string{"*"}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("dev config should validate, got %v", err)
	}
}

func TestValidate_ProductionRequiresAPIKey(t *testing.T) {
	cfg := &Config{Environment: EnvProduction, APIKey: "", BackendCORSOrigins: []string{"https://app.example.com"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty API key in production")
	}
}

func TestValidate_ProductionRejectsWildcardCORS(t *testing.T) {
	cfg := &Config{Environment: EnvProduction, APIKey: "secret", BackendCORSOrigins: []string{"*"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for wildcard CORS in production")
	}
}

func TestValidate_ProductionHappyPath(t *testing.T) {
	cfg := &Config{Environment: EnvProduction, APIKey: "secret", BackendCORSOrigins: []string{"https://app.example.com"}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid production config, got %v", err)
	}
}

func TestSplitIfSingle(t *testing.T) {
	got := splitIfSingle([]string{"a, b,c"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplitIfSingle_NoCommaPassesThrough(t *testing.T) {
	got := splitIfSingle([]string{"http", "https"})
	if len(got) != 2 || got[0] != "http" || got[1] != "https" {
		t.Errorf("expected unchanged slice, got %v", got)
	}
}
