/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config holds the user-editable configuration persisted to a YAML
// file in the user scope. Environment variables are read-only overrides
// applied at load time.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// config_version: bump when the structure changes in a backward-incompatible way.

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// SARConfig locates the game plugin's playback socket.
type SARConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	DialTimeoutMs int    `yaml:"dial_timeout_ms"`
	// GameDir is the game install directory scripts are played relative to.
	GameDir string `yaml:"game_dir"`
}

type ToolsConfig struct {
	// CatalogFile is an optional JSON tool catalog layered over the builtin tools.
	CatalogFile string `yaml:"catalog_file"`
}

type CompletionConfig struct {
	Placeholders string `yaml:"placeholders"` // "until_resolved" | "hide"
}

type AppConfig struct {
	ConfigVersion int              `yaml:"config_version"`
	Logging       LoggingConfig    `yaml:"logging"`
	SAR           SARConfig        `yaml:"sar"`
	Tools         ToolsConfig      `yaml:"tools"`
	Completion    CompletionConfig `yaml:"completion"`
}

// Placeholder policies accepted in completion.placeholders.
const (
	PlaceholdersUntilResolved = "until_resolved"
	PlaceholdersHide          = "hide"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		SAR:           SARConfig{Host: "localhost", Port: 6555, DialTimeoutMs: 3000},
		Completion:    CompletionConfig{Placeholders: PlaceholdersUntilResolved},
	}
}

// Env var names used as overrides.
const (
	EnvSARHost     = "P2TAS_SAR_HOST"
	EnvSARPort     = "P2TAS_SAR_PORT"
	EnvGameDir     = "P2TAS_GAME_DIR"
	EnvToolCatalog = "P2TAS_TOOL_CATALOG"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "P2TAS_LOG_LEVEL"
	EnvLogFormat = "P2TAS_LOG_FORMAT"
	EnvLogSource = "P2TAS_LOG_SOURCE"
	EnvLogFile   = "P2TAS_LOG_FILE"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "p2tas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "p2tas")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "p2tas")
		} else if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config", "p2tas")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file at path (the per-user default when empty), applies
// defaults and merges environment overrides. A missing file is not an error.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML to path (the per-user default when empty).
func Save(path string, cfg AppConfig) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	// sar
	if strings.TrimSpace(src.SAR.Host) != "" {
		dst.SAR.Host = strings.TrimSpace(src.SAR.Host)
	}
	if src.SAR.Port != 0 {
		dst.SAR.Port = src.SAR.Port
	}
	if src.SAR.DialTimeoutMs != 0 {
		dst.SAR.DialTimeoutMs = src.SAR.DialTimeoutMs
	}
	if strings.TrimSpace(src.SAR.GameDir) != "" {
		dst.SAR.GameDir = strings.TrimSpace(src.SAR.GameDir)
	}
	if strings.TrimSpace(src.Tools.CatalogFile) != "" {
		dst.Tools.CatalogFile = strings.TrimSpace(src.Tools.CatalogFile)
	}
	if strings.TrimSpace(src.Completion.Placeholders) != "" {
		dst.Completion.Placeholders = strings.ToLower(strings.TrimSpace(src.Completion.Placeholders))
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSARHost)); v != "" {
		cfg.SAR.Host = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSARPort)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SAR.Port = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvGameDir)); v != "" {
		cfg.SAR.GameDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToolCatalog)); v != "" {
		cfg.Tools.CatalogFile = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"sar.host":           EnvSARHost,
	"sar.port":           EnvSARPort,
	"sar.game_dir":       EnvGameDir,
	"tools.catalog_file": EnvToolCatalog,
	"logging.level":      EnvLogLevel,
	"logging.format":     EnvLogFormat,
	"logging.source":     EnvLogSource,
	"logging.file":       EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Validate checks values the rest of the program relies on.
func (c AppConfig) Validate() error {
	var errs []error
	if c.SAR.Port < 1 || c.SAR.Port > 65535 {
		errs = append(errs, fmt.Errorf("sar.port %d out of range", c.SAR.Port))
	}
	if c.SAR.DialTimeoutMs < 0 {
		errs = append(errs, errors.New("sar.dial_timeout_ms must not be negative"))
	}
	switch c.Completion.Placeholders {
	case PlaceholdersUntilResolved, PlaceholdersHide:
	default:
		errs = append(errs, fmt.Errorf("completion.placeholders %q is not one of %s, %s",
			c.Completion.Placeholders, PlaceholdersUntilResolved, PlaceholdersHide))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not console or json", c.Logging.Format))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Address returns the host:port of the playback socket.
func (s SARConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// EffectiveDialTimeout returns the dial timeout in milliseconds, falling back to the default.
func (s SARConfig) EffectiveDialTimeout() int {
	if s.DialTimeoutMs <= 0 {
		return Defaults().SAR.DialTimeoutMs
	}
	return s.DialTimeoutMs
}
