package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if !cfg.Tree.ShowVirtualRoot {
		t.Error("virtual root should be shown by default")
	}
	if cfg.Tree.RootLabel != DefaultRootLabel {
		t.Errorf("root label = %q, want %q", cfg.Tree.RootLabel, DefaultRootLabel)
	}
}

func TestTreeConfig_EmptyPattern(t *testing.T) {
	cfg := TreeConfig{RootLabel: "Data", FilePatterns: []string{"*.yaml", ""}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty file pattern should fail validation")
	}
}

func TestTreeConfig_EmptyLabel(t *testing.T) {
	cfg := TreeConfig{FilePatterns: []string{"*.yaml"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty root label should fail validation")
	}
}

func TestWatchConfig_Debounce(t *testing.T) {
	cfg := WatchConfig{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled watcher without debounce should fail")
	}
	cfg.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled watcher needs no debounce: %v", err)
	}
}

func TestSessionConfig_PathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Session.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty session path should fail")
	}
}
