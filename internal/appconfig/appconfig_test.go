// internal/appconfig/appconfig_test.go
package appconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoad verifies that a partial config file is merged over defaults and
// that broken or missing files are reported.
func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
        "backend": "ollama",
        "url": "http://localhost:11434",
        "model": "translategemma:12b",
        "maxTokens": 128
    }`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() with valid config failed: %v", err)
	}
	if cfg.Backend != BackendOllama {
		t.Fatalf("expected backend ollama, got %q", cfg.Backend)
	}
	if cfg.MaxTokens != 128 {
		t.Fatalf("expected maxTokens 128, got %d", cfg.MaxTokens)
	}
	if cfg.TimeoutSeconds != 600 {
		t.Fatalf("expected default timeout of 600 seconds, got %d", cfg.TimeoutSeconds)
	}
	if cfg.RequestTimeout() != 600*time.Second {
		t.Fatalf("expected default request timeout of 600s, got %v", cfg.RequestTimeout())
	}
	if len(cfg.Stop) != 2 || cfg.Stop[0] != "<end_of_turn>" || cfg.Stop[1] != "<eos>" {
		t.Fatalf("expected default stop markers, got %q", cfg.Stop)
	}
	if cfg.SourceLang != "en" || cfg.TargetLang != "fr" {
		t.Fatalf("expected default languages en->fr, got %s->%s", cfg.SourceLang, cfg.TargetLang)
	}
	if cfg.ConfigPath != path {
		t.Fatalf("expected config path %q, got %q", path, cfg.ConfigPath)
	}

	if _, err := Load(writeConfig(t, `{ "backend": `)); err == nil {
		t.Fatal("Load() with invalid JSON should have failed")
	}
	if _, err := Load(writeConfig(t, `{ "backend": "vllm" }`)); err == nil {
		t.Fatal("Load() with unknown backend should have failed")
	}
	if _, err := Load(writeConfig(t, `{ "maxTokens": 0 }`)); err == nil {
		t.Fatal("Load() with zero maxTokens should have failed")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nonexistent.json")); err == nil {
		t.Fatal("Load() with nonexistent file should have failed")
	}
}

func TestModelName(t *testing.T) {
	cases := []struct {
		cfg  Config
		want string
	}{
		{Config{Model: "translategemma:12b"}, "translategemma:12b"},
		{Config{ModelPath: DefaultModelPath}, "translategemma-12b-it.Q8_0"},
		{Config{Model: "  ", ModelPath: "/models/a.gguf"}, "a"},
		{Config{}, ""},
	}
	for _, tc := range cases {
		if got := tc.cfg.ModelName(); got != tc.want {
			t.Fatalf("ModelName(%+v) = %q, want %q", tc.cfg, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Temperature = -0.1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected negative temperature to fail")
	}

	cfg = Defaults()
	cfg.URL = " "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected empty url to fail")
	}
}

func TestLogFilePathDefault(t *testing.T) {
	if got := (Config{}).LogFilePath(); got != "petit.log" {
		t.Fatalf("expected petit.log, got %q", got)
	}
	if got := (Config{LogFile: "logs/run.log"}).LogFilePath(); got != "logs/run.log" {
		t.Fatalf("expected configured log file, got %q", got)
	}
}

func TestShowConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := Defaults()
	ShowConfig(&buf, "", &cfg, false)
	out := buf.String()
	if !strings.Contains(out, "No config file loaded") {
		t.Fatalf("expected default banner, got: %s", out)
	}
	if !strings.Contains(out, "Languages:        en -> fr") {
		t.Fatalf("expected language pair, got: %s", out)
	}
	if !strings.Contains(out, "Suite:            (built-in)") {
		t.Fatalf("expected built-in suite label, got: %s", out)
	}
}
