package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/treelist/pkg/tree"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.IDs.Generator != GeneratorCounter {
		t.Errorf("expected counter generator, got %q", cfg.IDs.Generator)
	}
	if gen := cfg.IDGenerator(); gen.NextID() != 1 || gen.NextID() != 2 {
		t.Error("default generator should count up from 1")
	}
	if cfg.IDs.Min != 1 || cfg.IDs.Max != 100000 {
		t.Errorf("expected ids 1..100000, got %d..%d", cfg.IDs.Min, cfg.IDs.Max)
	}
	if !cfg.WatchEnabled() || !cfg.DetailPaneEnabled() {
		t.Error("watch and detail pane should default to on")
	}
	if len(cfg.CatalogPaths()) != 0 {
		t.Errorf("expected no catalogs, got %v", cfg.CatalogPaths())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, DirName, FileName)
	writeFile(t, path, `catalogs:
  - cities.yaml
  - /abs/europe.json
ids:
  generator: counter
  start: 500
watch: false
ui:
  detail_pane: false
  expand: [Paris]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.WatchEnabled() {
		t.Error("expected watch disabled")
	}
	if cfg.DetailPaneEnabled() {
		t.Error("expected detail pane disabled")
	}
	if len(cfg.UI.Expand) != 1 || cfg.UI.Expand[0] != "Paris" {
		t.Errorf("unexpected expand list %v", cfg.UI.Expand)
	}

	paths := cfg.CatalogPaths()
	want := []string{filepath.Join(root, DirName, "cities.yaml"), "/abs/europe.json"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("catalog paths = %v, want %v", paths, want)
	}

	gen := cfg.IDGenerator()
	if id := gen.NextID(); id != 500 {
		t.Errorf("expected counter to start at 500, got %d", id)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "ids: [", "parsing config"},
		{"unknown generator", "ids:\n  generator: uuid\n", "unknown generator"},
		{"inverted bounds", "ids:\n  min: 10\n  max: 5\n", "below min"},
		{"empty catalog", "catalogs:\n  - \"\"\n", "catalogs[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)

			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRandomGeneratorFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IDs.Generator = GeneratorRandom
	cfg.IDs.Min, cfg.IDs.Max, cfg.IDs.Seed = 7, 9, 42

	gen := cfg.IDGenerator()
	for i := 0; i < 50; i++ {
		id := gen.NextID()
		if id < 7 || id > 9 {
			t.Fatalf("id %d outside 7..9", id)
		}
	}

	a := cfg.IDGenerator()
	b := cfg.IDGenerator()
	for i := 0; i < 10; i++ {
		if a.NextID() != b.NextID() {
			t.Fatal("same seed should give the same sequence")
		}
	}
	var _ tree.IDGenerator = a
}
