package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var stdout bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "raml2postman configuration") {
		t.Fatalf("unexpected config contents: %s", data)
	}
	if !strings.Contains(stdout.String(), "Wrote config") {
		t.Fatalf("unexpected output: %q", stdout.String())
	}
}

func TestInit_SampleConfigLoads(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig("", "", "")), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := defaultConfig()
	if err := applyConfigFromFile(&cfg, path); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !cfg.Upload || cfg.Input != "" || cfg.APIKey != "" {
		t.Fatalf("commented sample must keep defaults: %+v", cfg)
	}
}

func TestInit_FillsInputTitleAndKey(t *testing.T) {
	t.Setenv(apiKeyEnv, "PMAK-from-env")
	specPath := writeSpec(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	var stdout bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--input", specPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}
	if !strings.Contains(stdout.String(), "filled in from "+apiKeyEnv) {
		t.Errorf("expected key notice, got %q", stdout.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), `apiKey: "PMAK-from-env"`) {
		t.Errorf("apiKey not filled in:\n%s", data)
	}

	cfg := defaultConfig()
	if err := applyConfigFromFile(&cfg, path); err != nil {
		t.Fatalf("generated config should load: %v", err)
	}
	if cfg.Input != specPath {
		t.Errorf("input: want %q got %q", specPath, cfg.Input)
	}
	if cfg.Name != "Test API" {
		t.Errorf("name: want Test API got %q", cfg.Name)
	}
	if cfg.APIKey != "PMAK-from-env" {
		t.Errorf("apiKey: got %q", cfg.APIKey)
	}
}

func TestInit_BadInput(t *testing.T) {
	t.Parallel()
	err := runInit(context.Background(), &InitConfig{
		OutputPath: filepath.Join(t.TempDir(), "config.yaml"),
		Input:      filepath.Join(t.TempDir(), "missing.raml"),
		Stdout:     io.Discard,
	})
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--force"})
	if err := root.Execute(); err != nil {
		t.Fatalf("expected --force to overwrite: %v", err)
	}
}
