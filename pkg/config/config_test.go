package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port is required")
	}
	s.valid = true
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TAGTREE_TEST_NAME", "worlds")
	p := writeConfig(t, "name: ${TAGTREE_TEST_NAME}\nport: 9000\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "worlds" {
		t.Errorf("name = %q, want %q", s.Name, "worlds")
	}
	if !s.valid {
		t.Error("Validate was not called")
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	p := writeConfig(t, "name: x\n")
	s := sample{Port: 8080}
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != 8080 {
		t.Errorf("port = %d, want 8080", s.Port)
	}
}

func TestLoadValidationError(t *testing.T) {
	p := writeConfig(t, "name: x\n")
	var s sample
	err := Load(p, &s)
	if err == nil || !strings.Contains(err.Error(), "port is required") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	s := sample{Port: 1}
	if err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if !s.valid {
		t.Error("defaults were not validated")
	}
}

func TestLoadMissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &s); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}
