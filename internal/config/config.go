// Package config loads settings from the environment, with an optional
// YAML overlay file for recognizer tuning.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Model      ModelConfig
	Recognizer RecognizerConfig
	Gallery    GalleryConfig
	Database   DatabaseConfig
	Log        LogConfig
}

type ModelConfig struct {
	URL string // inference server base URL
}

type RecognizerConfig struct {
	ScoreThreshold float64 // minimum top-candidate score to tag a face, in [0, 1]
	TopK           int     // class candidates returned when no gallery is loaded
}

type GalleryConfig struct {
	Path string // path to the JSON gallery file (optional)
}

type DatabaseConfig struct {
	URL   string // PostgreSQL connection URL for `gallery pull`
	Table string // table with (name, embedding vector) columns
}

type LogConfig struct {
	Level string // logrus level name
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Model: ModelConfig{
			URL: envString("FACE_TAGGER_MODEL_URL", "http://localhost:8000"),
		},
		Recognizer: RecognizerConfig{
			ScoreThreshold: envFloat("FACE_TAGGER_SCORE_THRESHOLD", 0.75),
			TopK:           envInt("FACE_TAGGER_TOP_K", 5),
		},
		Gallery: GalleryConfig{
			Path: os.Getenv("FACE_TAGGER_GALLERY"),
		},
		Database: DatabaseConfig{
			URL:   os.Getenv("DATABASE_URL"),
			Table: envString("FACE_TAGGER_DB_TABLE", "faces"),
		},
		Log: LogConfig{
			Level: envString("LOG_LEVEL", "info"),
		},
	}
}

// fileConfig mirrors the YAML overlay file. Pointer fields distinguish
// "absent" from zero values so the file only overrides what it sets.
type fileConfig struct {
	Model struct {
		URL *string `yaml:"url"`
	} `yaml:"model"`
	Recognizer struct {
		ScoreThreshold *float64 `yaml:"score_threshold"`
		TopK           *int     `yaml:"top_k"`
	} `yaml:"recognizer"`
	Gallery struct {
		Path *string `yaml:"path"`
	} `yaml:"gallery"`
}

// ApplyFile overlays settings from a YAML file on top of the current
// config. Fields absent from the file keep their environment values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Model.URL != nil {
		c.Model.URL = *fc.Model.URL
	}
	if fc.Recognizer.ScoreThreshold != nil {
		c.Recognizer.ScoreThreshold = *fc.Recognizer.ScoreThreshold
	}
	if fc.Recognizer.TopK != nil {
		c.Recognizer.TopK = *fc.Recognizer.TopK
	}
	if fc.Gallery.Path != nil {
		c.Gallery.Path = *fc.Gallery.Path
	}
	return nil
}
