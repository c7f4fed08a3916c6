package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"FACE_TAGGER_MODEL_URL", "FACE_TAGGER_SCORE_THRESHOLD", "FACE_TAGGER_TOP_K",
		"FACE_TAGGER_GALLERY", "DATABASE_URL", "FACE_TAGGER_DB_TABLE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Model.URL != "http://localhost:8000" {
		t.Errorf("Model.URL = %q", cfg.Model.URL)
	}
	if cfg.Recognizer.ScoreThreshold != 0.75 {
		t.Errorf("ScoreThreshold = %v, want 0.75", cfg.Recognizer.ScoreThreshold)
	}
	if cfg.Recognizer.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.Recognizer.TopK)
	}
	if cfg.Database.Table != "faces" {
		t.Errorf("Database.Table = %q, want faces", cfg.Database.Table)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FACE_TAGGER_MODEL_URL", "http://model:9000")
	t.Setenv("FACE_TAGGER_SCORE_THRESHOLD", "0.9")
	t.Setenv("FACE_TAGGER_TOP_K", "3")
	t.Setenv("FACE_TAGGER_GALLERY", "/data/gallery.json")

	cfg := Load()

	if cfg.Model.URL != "http://model:9000" {
		t.Errorf("Model.URL = %q", cfg.Model.URL)
	}
	if cfg.Recognizer.ScoreThreshold != 0.9 {
		t.Errorf("ScoreThreshold = %v, want 0.9", cfg.Recognizer.ScoreThreshold)
	}
	if cfg.Recognizer.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.Recognizer.TopK)
	}
	if cfg.Gallery.Path != "/data/gallery.json" {
		t.Errorf("Gallery.Path = %q", cfg.Gallery.Path)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("FACE_TAGGER_TOP_K", "not-a-number")
	t.Setenv("FACE_TAGGER_SCORE_THRESHOLD", "also-not")

	cfg := Load()

	if cfg.Recognizer.TopK != 5 {
		t.Errorf("TopK = %d, want default 5", cfg.Recognizer.TopK)
	}
	if cfg.Recognizer.ScoreThreshold != 0.75 {
		t.Errorf("ScoreThreshold = %v, want default 0.75", cfg.Recognizer.ScoreThreshold)
	}
}

func TestApplyFile(t *testing.T) {
	t.Setenv("FACE_TAGGER_MODEL_URL", "http://from-env:8000")

	content := `
recognizer:
  score_threshold: 0.85
  top_k: 2
gallery:
  path: /overlay/gallery.json
`
	path := filepath.Join(t.TempDir(), "face-tagger.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile() error: %v", err)
	}

	if cfg.Recognizer.ScoreThreshold != 0.85 {
		t.Errorf("ScoreThreshold = %v, want 0.85", cfg.Recognizer.ScoreThreshold)
	}
	if cfg.Recognizer.TopK != 2 {
		t.Errorf("TopK = %d, want 2", cfg.Recognizer.TopK)
	}
	if cfg.Gallery.Path != "/overlay/gallery.json" {
		t.Errorf("Gallery.Path = %q", cfg.Gallery.Path)
	}
	// Fields absent from the file keep their environment values.
	if cfg.Model.URL != "http://from-env:8000" {
		t.Errorf("Model.URL = %q, want env value preserved", cfg.Model.URL)
	}
}

func TestApplyFileErrors(t *testing.T) {
	cfg := Load()

	if err := cfg.ApplyFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("ApplyFile() on a missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("recognizer: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyFile(path); err == nil {
		t.Error("ApplyFile() on broken YAML should fail")
	}
}
