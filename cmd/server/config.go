// config.go - Configuration loading and management.
//
// This file handles loading configuration from a YAML or JSON file and
// environment variables. It defines the Config struct, validation, and the
// logger setup driven by it.
package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/egoist/bina/internal/github"
)

const ServerVersion = "0.1.0" // Define software version

// Config holds the application configuration.
type Config struct {
	LogFilePath       string `json:"log_file_path" yaml:"log_file_path"`
	LogFormat         string `json:"log_format" yaml:"log_format"`
	APIServerAddress  string `json:"api_listener" yaml:"api_listener"`
	PublicURL         string `json:"public_url" yaml:"public_url"`
	GitHubAPI         string `json:"github_api" yaml:"github_api"`
	DefaultInstallDir string `json:"default_install_dir" yaml:"default_install_dir"`
	RequestTimeout    int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	MaxManifestBytes  int64  `json:"max_manifest_bytes" yaml:"max_manifest_bytes"`
	ShutdownDelay     int    `json:"shutdown_delay_seconds" yaml:"shutdown_delay_seconds"`
	// Server-side fallback token, environment only. Never embedded in a script.
	GitHubToken    string `json:"-" yaml:"-"`
	ConfigFileUsed string `json:"-" yaml:"-"`
}

// Default configuration values if not provided in file or env vars.
const (
	defaultLogFormat         = "production"
	defaultAPIServerAddress  = ":3000"
	defaultPublicURL         = "https://bina.egoist.sh"
	defaultDefaultInstallDir = "/usr/local/bin"
	defaultRequestTimeout    = 30
	defaultMaxManifestBytes  = 1 << 20
	defaultShutdownDelay     = 5
	configFileName           = "bina.config.yaml"
)

// LoadConfig loads the configuration from a config file and environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	configFilePath := getConfigFilePath()

	if err := loadConfigFile(cfg, configFilePath); err != nil {
		if !os.IsNotExist(err) { // Ignore file not found error, use defaults or env vars
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg.ConfigFileUsed = configFilePath
	}

	if err := applyEnvironmentVariables(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a Config struct with default values.
func DefaultConfig() *Config {
	return &Config{
		LogFormat:         defaultLogFormat,
		APIServerAddress:  defaultAPIServerAddress,
		PublicURL:         defaultPublicURL,
		GitHubAPI:         github.DefaultAPIBase,
		DefaultInstallDir: defaultDefaultInstallDir,
		RequestTimeout:    defaultRequestTimeout,
		MaxManifestBytes:  defaultMaxManifestBytes,
		ShutdownDelay:     defaultShutdownDelay,
	}
}

// getConfigFilePath checks BINA_CONFIG_PATH first, then defaults to configFileName.
func getConfigFilePath() string {
	if envPath := os.Getenv("BINA_CONFIG_PATH"); envPath != "" {
		return envPath
	}
	return configFileName
}

// loadConfigFile decodes path into cfg. Files ending in .json are read as
// JSON, anything else as YAML.
func loadConfigFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return fmt.Errorf("failed to decode config file: %w", err)
		}
		return nil
	}

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

// applyEnvironmentVariables overrides configuration with environment variables.
func applyEnvironmentVariables(cfg *Config) error {
	setIfEnvExists(&cfg.LogFilePath, "BINA_LOG_FILE_PATH")
	setIfEnvExists(&cfg.LogFormat, "BINA_LOG_FORMAT")
	setIfEnvExists(&cfg.APIServerAddress, "BINA_API_ADDRESS")
	setIfEnvExists(&cfg.PublicURL, "BINA_PUBLIC_URL")
	setIfEnvExists(&cfg.GitHubAPI, "BINA_GITHUB_API")
	setIfEnvExists(&cfg.DefaultInstallDir, "BINA_DEFAULT_DIR")
	if err := setIntIfEnvExists(&cfg.RequestTimeout, "BINA_REQUEST_TIMEOUT"); err != nil {
		return err
	}
	if err := setIntIfEnvExists(&cfg.ShutdownDelay, "BINA_SHUTDOWN_DELAY"); err != nil {
		return err
	}
	if val := os.Getenv("BINA_MAX_MANIFEST_BYTES"); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid value for BINA_MAX_MANIFEST_BYTES: %w", err)
		}
		cfg.MaxManifestBytes = n
	}
	cfg.GitHubToken = github.TokenFromEnv()
	return nil
}

// setIfEnvExists sets the config value from environment variable if it exists.
func setIfEnvExists(configValue *string, envName string) {
	if val := os.Getenv(envName); val != "" {
		*configValue = val
	}
}

func setIntIfEnvExists(configValue *int, envName string) error {
	val := os.Getenv(envName)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", envName, err)
	}
	*configValue = n
	return nil
}

// validateConfig performs basic validation of the configuration.
func validateConfig(cfg *Config) error {
	if cfg.APIServerAddress == "" {
		return fmt.Errorf("API listener address cannot be empty")
	}
	if err := validateHTTPURL("public_url", cfg.PublicURL); err != nil {
		return err
	}
	if err := validateHTTPURL("github_api", cfg.GitHubAPI); err != nil {
		return err
	}
	if cfg.DefaultInstallDir == "" {
		return fmt.Errorf("default install dir cannot be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if cfg.MaxManifestBytes <= 0 {
		return fmt.Errorf("max manifest bytes must be positive")
	}
	if cfg.ShutdownDelay < 0 {
		return fmt.Errorf("shutdown delay must be non-negative")
	}
	return nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", field, raw)
	}
	return nil
}

// SetupLogger builds the zap logger. Output goes to stderr and, when
// LogFilePath is set, to that file as well.
func SetupLogger(cfg *Config) (*zap.SugaredLogger, error) {
	var zc zap.Config
	if cfg.LogFormat == "development" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	zc.OutputPaths = []string{"stderr"}
	if cfg.LogFilePath != "" {
		logDir := filepath.Dir(cfg.LogFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = append(zc.OutputPaths, cfg.LogFilePath)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Sugar().With("version", ServerVersion), nil
}
