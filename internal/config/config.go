package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "askimage.yaml"

// Config is the full application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	OCR    OCRConfig    `yaml:"ocr"`
	QA     QAConfig     `yaml:"qa"`
}

// ServerConfig controls the web interface
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	PreviewWidth   int           `yaml:"preview_width"`
}

// OCRConfig selects the OCR engine
type OCRConfig struct {
	Engine      string            `yaml:"engine"`    // "tesseract" or "ollama"
	Languages   []string          `yaml:"languages"` // tesseract language codes
	Variables   map[string]string `yaml:"variables"` // tesseract SetVariable pairs
	OllamaURL   string            `yaml:"ollama_url"`
	OllamaModel string            `yaml:"ollama_model"`
}

// QAConfig selects the question-answering backend
type QAConfig struct {
	Provider      string        `yaml:"provider"` // "huggingface", "openai" or "gemini"
	Model         string        `yaml:"model"`
	Endpoint      string        `yaml:"endpoint,omitempty"`
	CredentialEnv string        `yaml:"credential_env"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8888,
			MaxUploadBytes: 10 * 1024 * 1024,
			SessionTTL:     time.Hour,
			PreviewWidth:   800,
		},
		OCR: OCRConfig{
			Engine:    "tesseract",
			Languages: []string{"eng"},
		},
		QA: QAConfig{
			Provider: "huggingface",
			Timeout:  30 * time.Second,
		},
	}
}

// Load reads the YAML file at path (a missing file is not an error) and applies
// environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyProviderDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}
	if engine := os.Getenv("OCR_ENGINE"); engine != "" {
		c.OCR.Engine = engine
	}
	if langs := os.Getenv("OCR_LANGUAGES"); langs != "" {
		c.OCR.Languages = splitList(langs)
	}
	if url := os.Getenv("OLLAMA_URL"); url != "" {
		c.OCR.OllamaURL = url
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		c.OCR.OllamaModel = model
	}
	if provider := os.Getenv("QA_PROVIDER"); provider != "" {
		c.QA.Provider = provider
	}
	if model := os.Getenv("QA_MODEL"); model != "" {
		c.QA.Model = model
	}
	if endpoint := os.Getenv("QA_ENDPOINT"); endpoint != "" {
		c.QA.Endpoint = endpoint
	}
	if timeout := os.Getenv("QA_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid QA_TIMEOUT %q: %w", timeout, err)
		}
		c.QA.Timeout = d
	}
	return nil
}

// applyProviderDefaults fills the model and credential variable for the chosen backend.
func (c *Config) applyProviderDefaults() {
	switch c.QA.Provider {
	case "huggingface":
		if c.QA.Model == "" {
			c.QA.Model = "deepset/roberta-base-squad2"
		}
		if c.QA.CredentialEnv == "" {
			c.QA.CredentialEnv = "HF_TOKEN"
		}
	case "openai":
		if c.QA.Model == "" {
			c.QA.Model = "gpt-4o"
		}
		if c.QA.CredentialEnv == "" {
			c.QA.CredentialEnv = "OPENAI_API_KEY"
		}
	case "gemini":
		if c.QA.Model == "" {
			c.QA.Model = "gemini-1.5-flash"
		}
		if c.QA.CredentialEnv == "" {
			c.QA.CredentialEnv = "GEMINI_API_KEY"
		}
	}
}

// Validate checks enumerated values and limits
func (c *Config) Validate() error {
	switch c.QA.Provider {
	case "huggingface", "openai", "gemini":
	default:
		return fmt.Errorf("unsupported QA provider: %s", c.QA.Provider)
	}
	switch c.OCR.Engine {
	case "tesseract", "ollama":
	default:
		return fmt.Errorf("unsupported OCR engine: %s", c.OCR.Engine)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	return nil
}

// Credential returns the bearer token for the QA backend, or "" when it is not set.
func (c *Config) Credential() string {
	if c.QA.CredentialEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.QA.CredentialEnv))
}

// Addr is the listen address for the web server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
