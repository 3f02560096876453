// Package config loads croquis settings from YAML, a .env file and
// CROQUIS_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. CROQUIS_DATASET_MODE.
const EnvPrefix = "CROQUIS"

// Config holds all application configuration.
type Config struct {
	LogLevel        string           `yaml:"log_level" mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat       string           `yaml:"log_format" mapstructure:"log_format" validate:"oneof=console json"`
	OutputDir       string           `yaml:"output_dir" mapstructure:"output_dir" validate:"required"`
	Validator       string           `yaml:"validator" mapstructure:"validator" validate:"oneof=exists wav"`
	Saver           string           `yaml:"saver" mapstructure:"saver" validate:"oneof=json dataset"`
	ContinueOnError bool             `yaml:"continue_on_error" mapstructure:"continue_on_error"`
	Transcribe      TranscribeConfig `yaml:"transcribe" mapstructure:"transcribe"`
	Dataset         DatasetConfig    `yaml:"dataset" mapstructure:"dataset"`
	Audio           AudioConfig      `yaml:"audio" mapstructure:"audio"`
}

// TranscribeConfig selects and configures the speech-to-text backend.
type TranscribeConfig struct {
	Backend   string        `yaml:"backend" mapstructure:"backend" validate:"oneof=dummy whisper whisper-http"`
	ModelPath string        `yaml:"model_path" mapstructure:"model_path"`
	Language  string        `yaml:"language" mapstructure:"language"`
	Threads   int           `yaml:"threads" mapstructure:"threads" validate:"min=0"`
	URL       string        `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Model     string        `yaml:"model" mapstructure:"model"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"min=0"`
}

// DatasetConfig holds dataset export settings.
type DatasetConfig struct {
	Name               string `yaml:"name" mapstructure:"name"`
	Mode               string `yaml:"mode" mapstructure:"mode" validate:"oneof=WRITE APPEND OVERWRITE"`
	Strategy           string `yaml:"strategy" mapstructure:"strategy" validate:"oneof=NOTHING THRESHOLD NORMAL"`
	SilenceThresholdMs int    `yaml:"silence_threshold_ms" mapstructure:"silence_threshold_ms" validate:"min=0"`
	PadMs              int    `yaml:"pad_ms" mapstructure:"pad_ms" validate:"min=0"`
}

// AudioConfig holds external tool paths and microphone capture settings.
type AudioConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path" mapstructure:"ffprobe_path"`
	SampleRate  uint32 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gt=0"`
	Channels    uint32 `yaml:"channels" mapstructure:"channels" validate:"gt=0"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "croquis")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultModelsDir returns where downloaded models are stored.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(home, ".local", "share", "croquis", "models")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "console",
		OutputDir: "out",
		Validator: "exists",
		Saver:     "dataset",
		Transcribe: TranscribeConfig{
			Backend:   "whisper",
			ModelPath: filepath.Join(DefaultModelsDir(), "ggml-base.en.bin"),
			URL:       "http://localhost:8387",
			Model:     "base",
			Timeout:   2 * time.Minute,
		},
		Dataset: DatasetConfig{
			Name:               "dataset",
			Mode:               "WRITE",
			Strategy:           "THRESHOLD",
			SilenceThresholdMs: 500,
			PadMs:              200,
		},
		Audio: AudioConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			SampleRate:  16000,
			Channels:    1,
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. A missing file is not an error. Variables already set win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load env file %q: %w", path, err)
	}
	return nil
}

// Load reads a YAML config file on top of the defaults and applies
// CROQUIS_* environment overrides. An empty path loads defaults and
// environment only. Tilde (~) in paths is expanded to the user's home
// directory and enum values are upper-cased.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides is Load with explicit key=value overrides applied on
// top of the file and environment. Keys use the dotted YAML path, e.g.
// "dataset.pad_ms".
func LoadWithOverrides(path string, overrides map[string]string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("config: encode defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("config: read defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range overrides {
		if !v.IsSet(key) {
			return nil, fmt.Errorf("config: unknown key %q", key)
		}
		v.Set(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", path, err)
	}

	cfg.OutputDir = expandTilde(cfg.OutputDir)
	cfg.Transcribe.ModelPath = expandTilde(cfg.Transcribe.ModelPath)
	cfg.Dataset.Mode = strings.ToUpper(strings.TrimSpace(cfg.Dataset.Mode))
	cfg.Dataset.Strategy = strings.ToUpper(strings.TrimSpace(cfg.Dataset.Strategy))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	return cfg, nil
}

// ParseOverrides turns "key=value" arguments into an override map. Keys
// are lower-cased.
func ParseOverrides(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("config: override %q must be key=value", arg)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		})
	})
	return validate
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
	}

	switch c.Transcribe.Backend {
	case "whisper":
		if c.Transcribe.ModelPath == "" {
			return fmt.Errorf("config: transcribe.model_path must not be empty for the whisper backend")
		}
	case "whisper-http":
		if c.Transcribe.URL == "" {
			return fmt.Errorf("config: transcribe.url must not be empty for the whisper-http backend")
		}
	}

	if c.Saver == "dataset" {
		name := c.Dataset.Name
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("config: dataset.name must be a plain directory name, got %q", name)
		}
	}

	return nil
}

// describe renders a validation failure using the YAML key path.
func describe(fe validator.FieldError) string {
	key := fe.Namespace()
	if i := strings.IndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return key + " must not be empty"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s, got %q", key, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be > %s", key, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be >= %s", key, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", key, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}

// ParseLogLevel converts a config log level to a zerolog level.
func ParseLogLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

const defaultHeader = `# croquis configuration
# Values here are overridden by CROQUIS_* environment variables,
# e.g. CROQUIS_DATASET_MODE=APPEND or CROQUIS_TRANSCRIBE_BACKEND=whisper-http.
#
# dataset.mode:     WRITE (clear files first) or APPEND
# dataset.strategy: NOTHING, THRESHOLD or NORMAL
`

// WriteDefault writes the default config to DefaultConfigPath. It returns
// ("", nil) without touching anything when the file already exists.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("config: create %q: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("config: encode defaults: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0o644); err != nil {
		return "", fmt.Errorf("config: write %q: %w", path, err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
