// Package config handles settings loading and merging.
//
// Settings are loaded from three levels (highest priority first):
//  1. Local: .skillsync/settings.local.json (gitignored, per-project)
//  2. Project: .skillsync/settings.json (committed, per-project)
//  3. User: ~/.skillsync/settings.json (global)
//
// Environment variables override every file level, and values in the files
// may reference the environment as ${VAR} or ${VAR:default}. A .env file in
// the working directory is loaded first by LoadEnv.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DirName is the per-user and per-project settings directory.
const DirName = ".skillsync"

// Defaults.
const (
	DefaultBackend          = "file"
	DefaultHubAddr          = "127.0.0.1:7717"
	DefaultLogLevel         = "info"
	DefaultReadyTimeout     = 15 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultURLPattern       = "*://gemini.google.com/*"
	DefaultBaseURL          = "https://gemini.google.com"
)

// Settings holds merged configuration from all levels.
type Settings struct {
	Storage  StorageSettings `json:"storage"`
	Target   TargetSettings  `json:"target"`
	Hub      HubSettings     `json:"hub"`
	LogLevel string          `json:"logLevel,omitempty"`
}

// StorageSettings selects the registry backend.
type StorageSettings struct {
	Backend     string `json:"backend,omitempty"` // "file", "redis", "postgres", "memory"
	Path        string `json:"path,omitempty"`
	RedisURL    string `json:"redisURL,omitempty"`
	PostgresDSN string `json:"postgresDSN,omitempty"`
	Key         string `json:"key,omitempty"`
}

// TargetSettings describes the chat application skills are delivered to.
type TargetSettings struct {
	URLPattern string   `json:"urlPattern,omitempty"`
	BaseURL    string   `json:"baseURL,omitempty"`
	Selectors  []string `json:"selectors,omitempty"`
}

// HubSettings configures the activation hub and its clients.
type HubSettings struct {
	Addr             string   `json:"addr,omitempty"`
	ReadyTimeout     Duration `json:"readyTimeout,omitempty"`
	HandshakeTimeout Duration `json:"handshakeTimeout,omitempty"`
	OpenBrowser      *bool    `json:"openBrowser,omitempty"`
}

// Duration is a time.Duration written in JSON as a string like "15s".
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of milliseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q", s)
		}
		*d = Duration(v)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Dir returns the user-level settings directory, ~/.skillsync.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// LoadEnv loads cwd/.env into the process environment. Variables that are
// already set are kept. A missing file is not an error.
func LoadEnv(cwd string) error {
	err := godotenv.Load(filepath.Join(cwd, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// LoadSettings loads and merges settings from all levels, applies
// environment overrides, and fills in defaults.
// The merge order is user → project → local (each level overrides the previous).
func LoadSettings(cwd string) (*Settings, error) {
	merged := &Settings{}

	home, err := os.UserHomeDir()
	if err == nil {
		for _, path := range settingsPaths(home, cwd) {
			layer, err := loadSettingsFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			merged = mergeSettings(merged, layer)
		}
	}

	applyEnv(merged)
	applyDefaults(merged, home)
	return merged, nil
}

// settingsPaths returns settings file paths from lowest to highest priority.
func settingsPaths(home, cwd string) []string {
	return []string{
		filepath.Join(home, DirName, "settings.json"),
		filepath.Join(cwd, DirName, "settings.json"),
		filepath.Join(cwd, DirName, "settings.local.json"),
	}
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// expandEnv substitutes ${VAR} and ${VAR:default} with environment values.
func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		return parts[2]
	})
}

// loadSettingsFile reads and parses a single settings JSON file.
func loadSettingsFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Settings
	if err := json.Unmarshal([]byte(expandEnv(string(data))), &s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return &s, nil
}

// mergeSettings merges overlay on top of base. Fields from overlay replace
// base when set.
func mergeSettings(base, overlay *Settings) *Settings {
	result := *base

	pick(&result.Storage.Backend, overlay.Storage.Backend)
	pick(&result.Storage.Path, overlay.Storage.Path)
	pick(&result.Storage.RedisURL, overlay.Storage.RedisURL)
	pick(&result.Storage.PostgresDSN, overlay.Storage.PostgresDSN)
	pick(&result.Storage.Key, overlay.Storage.Key)

	pick(&result.Target.URLPattern, overlay.Target.URLPattern)
	pick(&result.Target.BaseURL, overlay.Target.BaseURL)
	// Selectors: overlay replaces the whole list.
	if len(overlay.Target.Selectors) > 0 {
		result.Target.Selectors = append([]string(nil), overlay.Target.Selectors...)
	}

	pick(&result.Hub.Addr, overlay.Hub.Addr)
	if overlay.Hub.ReadyTimeout > 0 {
		result.Hub.ReadyTimeout = overlay.Hub.ReadyTimeout
	}
	if overlay.Hub.HandshakeTimeout > 0 {
		result.Hub.HandshakeTimeout = overlay.Hub.HandshakeTimeout
	}
	if overlay.Hub.OpenBrowser != nil {
		result.Hub.OpenBrowser = overlay.Hub.OpenBrowser
	}

	pick(&result.LogLevel, overlay.LogLevel)
	return &result
}

func pick(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Environment variables that override file settings.
const (
	EnvStorage     = "SKILLSYNC_STORAGE"
	EnvStoragePath = "SKILLSYNC_STORAGE_PATH"
	EnvRedisURL    = "SKILLSYNC_REDIS_URL"
	EnvPostgresDSN = "SKILLSYNC_POSTGRES_DSN"
	EnvHubAddr     = "SKILLSYNC_HUB_ADDR"
	EnvLogLevel    = "SKILLSYNC_LOG_LEVEL"
)

func applyEnv(s *Settings) {
	pick(&s.Storage.Backend, os.Getenv(EnvStorage))
	pick(&s.Storage.Path, os.Getenv(EnvStoragePath))
	pick(&s.Storage.RedisURL, os.Getenv(EnvRedisURL))
	pick(&s.Storage.PostgresDSN, os.Getenv(EnvPostgresDSN))
	pick(&s.Hub.Addr, os.Getenv(EnvHubAddr))
	pick(&s.LogLevel, os.Getenv(EnvLogLevel))
}

func applyDefaults(s *Settings, home string) {
	if s.Storage.Backend == "" {
		s.Storage.Backend = DefaultBackend
	}
	if s.Storage.Path == "" && home != "" {
		s.Storage.Path = filepath.Join(home, DirName, "registry.json")
	}
	if strings.HasPrefix(s.Storage.Path, "~/") && home != "" {
		s.Storage.Path = filepath.Join(home, s.Storage.Path[2:])
	}
	if s.Target.URLPattern == "" {
		s.Target.URLPattern = DefaultURLPattern
	}
	if s.Target.BaseURL == "" {
		s.Target.BaseURL = DefaultBaseURL
	}
	if s.Hub.Addr == "" {
		s.Hub.Addr = DefaultHubAddr
	}
	if s.Hub.ReadyTimeout <= 0 {
		s.Hub.ReadyTimeout = Duration(DefaultReadyTimeout)
	}
	if s.Hub.HandshakeTimeout <= 0 {
		s.Hub.HandshakeTimeout = Duration(DefaultHandshakeTimeout)
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
}

// OpenBrowser reports whether the hub should open new tabs in the system
// browser. Defaults to true.
func (s *Settings) OpenBrowser() bool {
	return s.Hub.OpenBrowser == nil || *s.Hub.OpenBrowser
}
