package server

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr != ":5001" {
		t.Errorf("Expected default addr :5001, got %q", cfg.Addr)
	}
	if cfg.Max.UploadBytes != 64<<20 {
		t.Errorf("Expected 64 MiB default upload cap, got %d", cfg.Max.UploadBytes)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pptd.yml")
	content := []byte("addr: \":9090\"\nmax:\n  uploadBytes: 1048576\nverbose: true\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Writing config: %v", err)
	}

	cfg := DefaultConfig()
	if err := LoadConfigFile(path, &cfg); err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Expected addr from file, got %q", cfg.Addr)
	}
	if cfg.Max.UploadBytes != 1<<20 {
		t.Errorf("Expected upload cap from file, got %d", cfg.Max.UploadBytes)
	}
	if !cfg.Verbose {
		t.Error("Expected verbose from file")
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	if err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yml"), &cfg); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestLoadConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0o600); err != nil {
		t.Fatalf("Writing config: %v", err)
	}
	cfg := DefaultConfig()
	if err := LoadConfigFile(path, &cfg); err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
}
