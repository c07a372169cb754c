// Package config loads formfill settings from a YAML file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/formfill/completion"
	"github.com/tsawler/formfill/docx"
	"github.com/tsawler/formfill/locate"
	"github.com/tsawler/formfill/ocr"
)

const (
	envVarPrefix = "FORMFILL"
	dotEnvFile   = ".env"
)

// ErrMissingAPIKey is returned by Validate when no API key is configured.
var ErrMissingAPIKey = errors.New("config: API key is required (set ARK_API_KEY or FORMFILL_ARK_API_KEY)")

// Config holds every setting. Environment variables use the FORMFILL_
// prefix; the API key, model and base URL are also read from the unprefixed
// ARK_API_KEY, MODEL_ENDPOINT and ARK_BASE_URL. OCRLanguage is a "+"
// separated list of Tesseract languages used for image profiles.
type Config struct {
	APIKey         string        `envconfig:"ARK_API_KEY"    yaml:"apiKey"`
	Model          string        `envconfig:"MODEL_ENDPOINT" yaml:"model"`
	BaseURL        string        `envconfig:"ARK_BASE_URL"   yaml:"baseURL"`
	Timeout        time.Duration `split_words:"true"         yaml:"timeout"`
	Addr           string        `split_words:"true"         yaml:"addr"`
	CORSOrigins    []string      `envconfig:"CORS_ORIGINS"   yaml:"corsOrigins"`
	MaxUploadBytes int64         `split_words:"true"         yaml:"maxUploadBytes"`
	PhotoWidthCm   float64       `envconfig:"PHOTO_WIDTH_CM" yaml:"photoWidthCm"`
	PhotoKeywords  []string      `split_words:"true"         yaml:"photoKeywords"`
	OCRLanguage    string        `envconfig:"OCR_LANGUAGE"   yaml:"ocrLanguage"`
}

func defaults() *Config {
	return &Config{
		Model:          completion.DefaultModel,
		BaseURL:        completion.DefaultBaseURL,
		Timeout:        completion.DefaultTimeout,
		Addr:           ":8080",
		CORSOrigins:    []string{"*"},
		MaxUploadBytes: 20 << 20,
		PhotoWidthCm:   3.5,
		PhotoKeywords:  append([]string(nil), locate.DefaultKeywords...),
		OCRLanguage:    ocr.DefaultLanguage,
	}
}

// Load builds the configuration. configFile names a YAML file; when empty,
// FORMFILL_CONFIG_FILE is consulted and a missing file is not an error.
// A .env file in the working directory is loaded into the environment
// without overriding variables that are already set.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", dotEnvFile, err)
	}

	required := configFile != ""
	if configFile == "" {
		configFile = os.Getenv(envVarPrefix + "_CONFIG_FILE")
	}

	c := defaults()
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		switch {
		case err == nil:
			if err := decodeYAML(data, c); err != nil {
				return nil, fmt.Errorf("unmarshaling config file: %w", err)
			}
		case required || !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := envconfig.Process(envVarPrefix, c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return c, nil
}

func decodeYAML(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the settings needed to fill forms.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return invalid("model", "MODEL_ENDPOINT")
	}
	if c.BaseURL == "" {
		return invalid("baseURL", "ARK_BASE_URL")
	}
	if c.Timeout <= 0 {
		return invalid("timeout", envVarPrefix+"_TIMEOUT")
	}
	if c.MaxUploadBytes <= 0 {
		return invalid("maxUploadBytes", envVarPrefix+"_MAX_UPLOAD_BYTES")
	}
	if c.PhotoWidthCm <= 0 {
		return invalid("photoWidthCm", envVarPrefix+"_PHOTO_WIDTH_CM")
	}
	return nil
}

func invalid(field, env string) error {
	return fmt.Errorf("config: invalid %s (yaml) / %s (env)", field, env)
}

// Completion returns the settings of the completion client.
func (c *Config) Completion() completion.Config {
	return completion.Config{
		APIKey:  c.APIKey,
		Model:   c.Model,
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
	}
}

// PhotoWidth returns the configured photo width.
func (c *Config) PhotoWidth() docx.Length {
	return docx.Cm(c.PhotoWidthCm)
}
