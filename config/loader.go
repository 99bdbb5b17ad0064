package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/runbooktools/runbook/errors"
	"github.com/runbooktools/runbook/pkg/paths"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// ConfigFileNames lists the recognized config file names, in lookup order.
var ConfigFileNames = []string{"runbook.yml", "runbook.yaml", "runbook.toml"}

// Load reads and parses a runbook configuration file. YAML or TOML is
// selected by file extension. Defaults are applied; validation is the
// caller's responsibility (fatal at daemon startup).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML config").
				WithDetail("path", path)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML config").
				WithDetail("path", path)
		}
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// LoadDefault finds and loads the configuration:
// 1. RUNBOOK_CONFIG env var (explicit path)
// 2. runbook.yml / runbook.yaml / runbook.toml in the working directory
// 3. the XDG config directory (~/.config/runbook/)
func LoadDefault() (*Config, error) {
	path, err := FindConfigFile()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// FindConfigFile resolves the config file path without loading it.
func FindConfigFile() (string, error) {
	if p := os.Getenv("RUNBOOK_CONFIG"); p != "" {
		return p, nil
	}

	cwd, err := os.Getwd()
	if err == nil {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(cwd, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	if dir := paths.ConfigDir(); dir != "" {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return "", errors.ConfigNotFound("runbook.yml")
}

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		name := envVarRegex.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
