package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePipelines(t *testing.T, dir, content string) {
	t.Helper()
	forgeDir := filepath.Join(dir, ".forge")
	if err := os.MkdirAll(forgeDir, 0755); err != nil {
		t.Fatalf("failed to create .forge dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(forgeDir, "pipelines.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write pipelines.yaml: %v", err)
	}
}

func TestLoadPipelineOverride(t *testing.T) {
	dir := t.TempDir()
	writePipelines(t, dir, "maxRetries: 5\nstageTimeout: 30m\n")

	override, err := LoadPipelineOverride(dir)
	if err != nil {
		t.Fatalf("LoadPipelineOverride failed: %v", err)
	}
	if override.MaxRetries != 5 {
		t.Errorf("maxRetries = %d, want 5", override.MaxRetries)
	}
	if override.StageTimeout != 30*time.Minute {
		t.Errorf("stageTimeout = %v, want 30m", override.StageTimeout)
	}
}

func TestLoadPipelineOverrideMissingFile(t *testing.T) {
	override, err := LoadPipelineOverride(t.TempDir())
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if override.MaxRetries != 0 || override.StageTimeout != 0 {
		t.Errorf("missing file produced non-zero overrides: %+v", override)
	}
}

func TestLoadPipelineOverrideInvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	writePipelines(t, dir, "stageTimeout: soon\n")

	if _, err := LoadPipelineOverride(dir); err == nil {
		t.Error("expected error for unparseable stageTimeout")
	}
}
