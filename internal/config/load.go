package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides: auth.token_secret is read
// from FOLIO_AUTH_TOKEN_SECRET.
const EnvPrefix = "FOLIO"

// Load builds the effective configuration. Later sources win:
//
//  1. defaults
//  2. the YAML file at path, if path is non-empty
//  3. FOLIO_* environment variables and any flags bound on v
func Load(v *viper.Viper, path string) (*FolioConfig, error) {
	cfg := DefaultYAMLConfig()
	if path != "" {
		var err error
		if cfg, err = LoadYAMLConfig(path); err != nil {
			return nil, err
		}
	}

	// Feed the merged file to viper so every key is known to it; env lookups
	// only happen for known keys.
	base, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	v.SetConfigType("yaml")
	if err := v.MergeConfig(bytes.NewReader(base)); err != nil {
		return nil, fmt.Errorf("merge config: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var out FolioConfig
	if err := v.Unmarshal(&out); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &out, nil
}

// FindConfigFile returns explicit when set, otherwise the first folio.yaml
// found in the working directory or ~/.folio. It returns "" when there is
// none; running without a file is allowed.
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{"folio.yaml"}
	if dir := DefaultDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "folio.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// DefaultDir is ~/.folio, or "" when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".folio")
}
