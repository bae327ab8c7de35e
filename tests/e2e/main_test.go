package main_test

import (
	"github.com/goccy/go-json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildTLBinary compiles cmd/tl into a temp dir and returns its path.
func buildTLBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e build in -short mode")
	}

	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..")

	binPath := filepath.Join(t.TempDir(), "tl")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/tl")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Build failed: %v\n%s", err, out)
	}
	return binPath
}

func TestEndToEndBuildAndRun(t *testing.T) {
	binPath := buildTLBinary(t)
	envDir := t.TempDir()

	runCmd := exec.Command(binPath, "--version")
	runCmd.Dir = envDir
	out, err := runCmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Execution failed: %v\n%s", err, out)
	}
	if !strings.HasPrefix(string(out), "tl ") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestEndToEndRobotRowsFromDiscoveredConfig(t *testing.T) {
	binPath := buildTLBinary(t)
	envDir := t.TempDir()

	// Project layout: .tl/config.yaml pointing at a catalogs directory.
	if err := os.MkdirAll(filepath.Join(envDir, ".tl"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(envDir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := "catalogs: [../data]\nids:\n  generator: counter\n"
	if err := os.WriteFile(filepath.Join(envDir, ".tl", "config.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(envDir, "data", "a.yaml"), []byte("- name: Quito\n  description: High up\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(envDir, "data", "b.jsonl"), []byte(`{"name":"Hanoi","description":"Lakes"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	runCmd := exec.Command(binPath, "--robot-rows", "--activate", "0")
	runCmd.Dir = envDir
	out, err := runCmd.Output()
	if err != nil {
		t.Fatalf("Execution failed: %v", err)
	}

	var doc struct {
		RootCount int `json:"root_count"`
		Rows      []struct {
			Kind string `json:"kind"`
			Name string `json:"name"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if doc.RootCount != 2 || len(doc.Rows) != 3 {
		t.Fatalf("got %d roots / %d rows, want 2 / 3", doc.RootCount, len(doc.Rows))
	}
	if doc.Rows[0].Name != "Quito" || doc.Rows[1].Kind != "child" || doc.Rows[2].Name != "Hanoi" {
		t.Errorf("unexpected rows: %+v", doc.Rows)
	}
}
