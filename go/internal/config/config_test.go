package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestNewConfigFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "WORD_SOURCE", "WORD_LIST_PATH", "MIN_WORD_LENGTH",
		"ROUND_SECONDS", "CORRECT_GUESS_POINTS", "ALLOWED_ORIGINS", "NATS_URL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := NewConfigFromEnv()
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.RoundDuration() != 60*time.Second {
		t.Errorf("RoundDuration() = %v", cfg.RoundDuration())
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestNewConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ROUND_SECONDS", "30")
	t.Setenv("CORRECT_GUESS_POINTS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,,http://a.test")
	t.Setenv("WORD_SOURCE", "POSTGRES")

	cfg := NewConfigFromEnv()
	if cfg.Port != "9000" || cfg.RoundSeconds != 30 {
		t.Errorf("unexpected port/round: %+v", cfg)
	}
	if cfg.CorrectGuessPoints != 10 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.CorrectGuessPoints)
	}
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.WordSource != WordSourcePostgres {
		t.Errorf("WordSource = %q", cfg.WordSource)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guessword.yaml")
	data := []byte("port: \":7777\"\nround_seconds: 45\nallowed_origins:\n  - http://game.test\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path, Default())
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Addr() != ":7777" || cfg.RoundSeconds != 45 {
		t.Errorf("overlay not applied: %+v", cfg)
	}
	if cfg.WordListPath != Default().WordListPath {
		t.Errorf("missing key should keep base value, got %q", cfg.WordListPath)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "nope.yaml"), Default()); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("word_source: redis\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad, Default()); err == nil {
		t.Error("expected error for unknown word source")
	}
}
