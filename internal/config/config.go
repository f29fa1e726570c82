package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration. It is loaded once at
// startup and read-only afterwards.
type Config struct {
	ModelPath         string   `yaml:"model_path"`
	MetadataPath      string   `yaml:"metadata_path"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	MaxFileSizeMB     int64    `yaml:"max_file_size_mb"`
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	TemplateDir       string   `yaml:"template_dir"`

	InferenceTimeoutSeconds int `yaml:"inference_timeout_seconds"`
	MailTimeoutSeconds      int `yaml:"mail_timeout_seconds"`

	// Defaulted is set when the config file could not be read and the
	// built-in defaults are in effect, so operators can tell a deliberate
	// default apart from a misconfiguration.
	Defaulted bool `yaml:"-"`
}

// Mail holds SMTP credentials and server address, sourced from the
// environment rather than the config file.
type Mail struct {
	Username string
	Password string
	From     string
	FromName string
	Server   string
	Port     int
}

// Default returns the built-in fallback configuration, matching the
// documented defaults of the service.
func Default() *Config {
	return &Config{
		ModelPath:               "models/plant_disease.onnx",
		MetadataPath:            "models/model_metadata.json",
		AllowedExtensions:       []string{"jpg", "jpeg", "png"},
		MaxFileSizeMB:           10,
		Host:                    "0.0.0.0",
		Port:                    8000,
		TemplateDir:             "templates",
		InferenceTimeoutSeconds: 30,
		MailTimeoutSeconds:      30,
		Defaulted:               true,
	}
}

// Load reads configuration from the given YAML file. If the file cannot
// be opened or parsed it logs a warning and returns the default
// configuration with Defaulted set, rather than failing startup.
func Load(configPath string, log *zap.Logger) *Config {
	file, err := os.Open(configPath)
	if err != nil {
		log.Warn("config file unreadable, using defaults",
			zap.String("path", configPath), zap.Error(err))
		return Default()
	}
	defer file.Close()

	cfg := Default()
	cfg.Defaulted = false
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		log.Warn("config file malformed, using defaults",
			zap.String("path", configPath), zap.Error(err))
		return Default()
	}

	return cfg
}

// LoadMail reads SMTP settings from the environment. All credentials are
// required except the display name: a service that cannot authenticate
// must fail at startup instead of sending broken messages later.
func LoadMail() (*Mail, error) {
	m := &Mail{
		Username: os.Getenv("MAIL_USERNAME"),
		Password: os.Getenv("MAIL_PASSWORD"),
		From:     os.Getenv("MAIL_FROM"),
		FromName: os.Getenv("MAIL_FROM_NAME"),
		Server:   os.Getenv("MAIL_SERVER"),
		Port:     587,
	}

	for name, v := range map[string]string{
		"MAIL_USERNAME": m.Username,
		"MAIL_PASSWORD": m.Password,
		"MAIL_FROM":     m.From,
		"MAIL_SERVER":   m.Server,
	} {
		if v == "" {
			return nil, fmt.Errorf("missing required mail setting %s", name)
		}
	}

	if port := os.Getenv("MAIL_PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &m.Port); err != nil {
			return nil, fmt.Errorf("invalid MAIL_PORT %q: %w", port, err)
		}
	}

	return m, nil
}

// MaxFileSizeBytes converts the configured megabyte cap to bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// Addr returns the bind address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// InferenceTimeout returns the bound on a single model forward pass.
func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.InferenceTimeoutSeconds) * time.Second
}

// MailTimeout returns the bound on a single email delivery.
func (c *Config) MailTimeout() time.Duration {
	return time.Duration(c.MailTimeoutSeconds) * time.Second
}
