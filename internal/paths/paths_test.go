package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wellsgz/linkcheck/internal/config"
)

func TestCreateDefaultConfig(t *testing.T) {
	p := &Paths{ConfigFile: filepath.Join(t.TempDir(), "nested", "config.yaml")}

	created, err := p.CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created {
		t.Error("CreateDefaultConfig() = false on first call, want true")
	}
	if !p.ConfigExists() {
		t.Fatal("ConfigExists() = false after creation")
	}

	created, err = p.CreateDefaultConfig()
	if err != nil || created {
		t.Errorf("CreateDefaultConfig() second call = %v, %v, want false, nil", created, err)
	}
}

func TestDefaultConfigLoads(t *testing.T) {
	p := &Paths{ConfigFile: filepath.Join(t.TempDir(), "config.yaml")}
	if _, err := p.CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}

	cfg, err := config.Load(p.ConfigFile)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if cfg.Test.ParallelStreams != 6 || cfg.Test.Percentile != "p95" {
		t.Errorf("test section = %+v, want defaults", cfg.Test)
	}
	if !cfg.Provider.Enabled {
		t.Error("provider.enabled = false, want true")
	}
}

func TestCreateDefaultConfigKeepsExisting(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("server:\n  address: \":9999\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	p := &Paths{ConfigFile: file}
	if created, _ := p.CreateDefaultConfig(); created {
		t.Error("CreateDefaultConfig() overwrote an existing file")
	}

	data, _ := os.ReadFile(file)
	if string(data) != "server:\n  address: \":9999\"\n" {
		t.Errorf("file content changed: %q", data)
	}
}

func TestResolveConfigExplicit(t *testing.T) {
	got, err := ResolveConfig("/tmp/custom.yaml")
	if err != nil || got != "/tmp/custom.yaml" {
		t.Errorf("ResolveConfig() = %q, %v, want explicit path", got, err)
	}
}
