package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8090" {
		t.Errorf("Port = %q, want 8090", cfg.Port)
	}
	if cfg.StorageBackend != "json" {
		t.Errorf("StorageBackend = %q, want json", cfg.StorageBackend)
	}
	if cfg.ExpressionPreset != "classic" {
		t.Errorf("ExpressionPreset = %q, want classic", cfg.ExpressionPreset)
	}
	if cfg.MinTestDuration != 30*time.Second || cfg.MaxTestDuration != 25*time.Minute {
		t.Errorf("test bounds = %v, %v", cfg.MinTestDuration, cfg.MaxTestDuration)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := "port: \"9000\"\nstorage_backend: sqlite\nmin_test_duration: 1m\n"
	if err := os.WriteFile(filepath.Join(dir, "coach.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.StorageBackend != "sqlite" {
		t.Errorf("StorageBackend = %q, want sqlite", cfg.StorageBackend)
	}
	if cfg.MinTestDuration != time.Minute {
		t.Errorf("MinTestDuration = %v, want 1m", cfg.MinTestDuration)
	}
	// Untouched keys keep their defaults.
	if cfg.HistoryPath != "data/sessions.json" {
		t.Errorf("HistoryPath = %q", cfg.HistoryPath)
	}
}
