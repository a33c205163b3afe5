package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonesrussell/assistant/internal/config"
	"github.com/jonesrussell/assistant/internal/domain"
)

func loadClean(t *testing.T, path string) (*config.Config, error) {
	t.Helper()
	return config.Load(path)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := loadClean(t, filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Service.Name != "assistant" {
		t.Errorf("service name = %s, want assistant", cfg.Service.Name)
	}
	if cfg.Service.Port != 8095 {
		t.Errorf("port = %d, want 8095", cfg.Service.Port)
	}
	if cfg.Exa.MaxResults != 50 {
		t.Errorf("exa max results = %d, want 50", cfg.Exa.MaxResults)
	}
	if cfg.Exa.DefaultDepth != domain.DepthAdvanced {
		t.Errorf("default depth = %s, want advanced", cfg.Exa.DefaultDepth)
	}
	if cfg.Guest.MaxMessages != 10 {
		t.Errorf("guest cap = %d, want 10", cfg.Guest.MaxMessages)
	}
	if cfg.Guest.Window.Hours() != 24 {
		t.Errorf("guest window = %v, want 24h", cfg.Guest.Window)
	}
	if cfg.Video.BatchSize != 5 {
		t.Errorf("video batch size = %d, want 5", cfg.Video.BatchSize)
	}
}

func TestLoad_FileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := []byte("service:\n  port: 9000\nexa:\n  max_results: 30\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := loadClean(t, path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Service.Port != 9000 {
		t.Errorf("port = %d, want 9000 from file", cfg.Service.Port)
	}
	if cfg.Exa.MaxResults != 30 {
		t.Errorf("exa max results = %d, want 30 from file", cfg.Exa.MaxResults)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("service:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	t.Setenv("ASSISTANT_PORT", "9100")

	cfg, err := loadClean(t, path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Service.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Service.Port)
	}
}

func TestLoad_MaxResultsClamped(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"below floor", "5", 10},
		{"above ceiling", "500", 100},
		{"in range", "60", 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EXA_MAX_RESULTS", tt.env)

			cfg, err := loadClean(t, filepath.Join(t.TempDir(), "missing.yml"))
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if cfg.Exa.MaxResults != tt.want {
				t.Errorf("exa max results = %d, want %d", cfg.Exa.MaxResults, tt.want)
			}
		})
	}
}

func TestLoad_InvalidDepthRejected(t *testing.T) {
	t.Setenv("EXA_DEFAULT_DEPTH", "extreme")

	if _, err := loadClean(t, filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("Load() should reject an unknown default depth")
	}
}

func TestLoad_InvalidLogLevelRejected(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	if _, err := loadClean(t, filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("Load() should reject an unknown log level")
	}
}
