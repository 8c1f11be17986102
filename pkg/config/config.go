// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/seqflow/seqflow/pkg/mining"
)

// Config holds all seqflow configuration.
type Config struct {
	Version int `yaml:"version"`

	Fields    FieldsConfig    `yaml:"fields"`
	Mining    mining.Params   `yaml:"mining"`
	Output    OutputConfig    `yaml:"output"`
	Encoding  EncodingConfig  `yaml:"encoding"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// FieldsConfig names the source columns. Names are canonicalized before
// matching, so "Session Key" and "session_key" resolve identically.
type FieldsConfig struct {
	Session   string `yaml:"session"`
	Action    string `yaml:"action"`
	Timestamp string `yaml:"timestamp"`
}

// OutputConfig controls rule-table persistence.
type OutputConfig struct {
	Format string `yaml:"format"` // csv | xlsx | parquet
	TopK   int    `yaml:"top_k"`  // 0 = all rows
	RankBy string `yaml:"rank_by"`
}

// EncodingConfig controls the encoder.
type EncodingConfig struct {
	Workers int `yaml:"workers"` // >1 enables parallel per-session encoding
}

// TelemetryConfig for optional OTLP trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Fields: FieldsConfig{
			Session:   "session_key",
			Action:    "action",
			Timestamp: "timestamp",
		},
		Mining: mining.DefaultParams(),
		Output: OutputConfig{
			Format: "csv",
			TopK:   0,
			RankBy: "lift",
		},
		Encoding: EncodingConfig{
			Workers: 1,
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = Default()

	for _, path := range m.getConfigPaths() {
		if err := m.loadFile(path); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	m.loadEnv()
	return nil
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/seqflow/config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".seqflow", "config.yaml"))
	}

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".seqflow.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}

	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	if src.Fields.Session != "" {
		m.config.Fields.Session = src.Fields.Session
	}
	if src.Fields.Action != "" {
		m.config.Fields.Action = src.Fields.Action
	}
	if src.Fields.Timestamp != "" {
		m.config.Fields.Timestamp = src.Fields.Timestamp
	}

	if src.Mining.MinSupport != 0 {
		m.config.Mining.MinSupport = src.Mining.MinSupport
	}
	if src.Mining.MaxLength != 0 {
		m.config.Mining.MaxLength = src.Mining.MaxLength
	}
	if src.Mining.MinGap != 0 {
		m.config.Mining.MinGap = src.Mining.MinGap
	}
	if src.Mining.MaxGap != 0 {
		m.config.Mining.MaxGap = src.Mining.MaxGap
	}
	if src.Mining.MinConfidence != 0 {
		m.config.Mining.MinConfidence = src.Mining.MinConfidence
	}

	if src.Output.Format != "" {
		m.config.Output.Format = src.Output.Format
	}
	if src.Output.TopK != 0 {
		m.config.Output.TopK = src.Output.TopK
	}
	if src.Output.RankBy != "" {
		m.config.Output.RankBy = src.Output.RankBy
	}

	if src.Encoding.Workers != 0 {
		m.config.Encoding.Workers = src.Encoding.Workers
	}

	if src.Telemetry.Enabled {
		m.config.Telemetry.Enabled = true
	}
	if src.Telemetry.Endpoint != "" {
		m.config.Telemetry.Endpoint = src.Telemetry.Endpoint
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("SEQFLOW_SESSION_FIELD"); v != "" {
		m.config.Fields.Session = v
	}
	if v := os.Getenv("SEQFLOW_ACTION_FIELD"); v != "" {
		m.config.Fields.Action = v
	}
	if v := os.Getenv("SEQFLOW_TIMESTAMP_FIELD"); v != "" {
		m.config.Fields.Timestamp = v
	}
	if v := os.Getenv("SEQFLOW_MIN_SUPPORT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m.config.Mining.MinSupport = f
		}
	}
	if v := os.Getenv("SEQFLOW_OTLP_ENDPOINT"); v != "" {
		m.config.Telemetry.Enabled = true
		m.config.Telemetry.Endpoint = v
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".seqflow")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Mining.MinSupport < 0 || c.Mining.MinSupport > 1 {
		return fmt.Errorf("mining.min_support must be in [0, 1], got %g", c.Mining.MinSupport)
	}
	if c.Mining.MinConfidence < 0 || c.Mining.MinConfidence > 1 {
		return fmt.Errorf("mining.min_confidence must be in [0, 1], got %g", c.Mining.MinConfidence)
	}
	switch c.Output.Format {
	case "csv", "xlsx", "parquet":
	default:
		return fmt.Errorf("output.format must be csv, xlsx, or parquet, got %q", c.Output.Format)
	}
	return nil
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalManager.Load()
	})
	return globalManager
}
