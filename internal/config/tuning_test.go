package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGridConfig_PartialOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	if err := os.WriteFile(path, []byte(`{"pixel_size_meters": 0.1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadGridConfig(path)
	if err != nil {
		t.Fatalf("LoadGridConfig: %v", err)
	}
	if got := cfg.GetPixelSizeMeters(); got != 0.1 {
		t.Fatalf("expected overridden pixel size 0.1, got %f", got)
	}
	if got := cfg.GetWidthMeters(); got != 80.0 {
		t.Fatalf("expected default width 80.0, got %f", got)
	}
}

func TestLoadGridConfig_RejectsNonJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.txt")
	os.WriteFile(path, []byte(`{}`), 0o644)

	if _, err := LoadGridConfig(path); err == nil {
		t.Fatal("expected error for non-.json extension")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	bad := EmptyGridConfig()
	neg := -1.0
	bad.PixelSizeMeters = &neg
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error for negative pixel size")
	}
}

func TestDefaults_MatchSpec(t *testing.T) {
	cfg := EmptyGridConfig()
	if got := cfg.GetPredictConfidenceDecay(); got != 0.92 {
		t.Fatalf("decay factor: expected 0.92, got %f", got)
	}
	if got := cfg.GetFuseOccludedNearFactor(); got != 1.8 {
		t.Fatalf("near occlusion factor: expected 1.8, got %f", got)
	}
	if got := cfg.GetFuseOccludedFarFactor(); got != 1.1 {
		t.Fatalf("far occlusion factor: expected 1.1, got %f", got)
	}
}
