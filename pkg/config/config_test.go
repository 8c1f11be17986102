package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Fields.Session != "session_key" {
		t.Errorf("Expected default session field %q, got %q", "session_key", cfg.Fields.Session)
	}
	if cfg.Fields.Action != "action" {
		t.Errorf("Expected default action field %q, got %q", "action", cfg.Fields.Action)
	}
	if cfg.Output.Format != "csv" {
		t.Errorf("Expected default format csv, got %q", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestMerge(t *testing.T) {
	m := NewManager()
	m.merge(&Config{
		Fields: FieldsConfig{Session: "case_id"},
		Output: OutputConfig{TopK: 25},
	})

	cfg := m.Get()
	if cfg.Fields.Session != "case_id" {
		t.Errorf("Expected merged session field, got %q", cfg.Fields.Session)
	}
	if cfg.Output.TopK != 25 {
		t.Errorf("Expected merged top_k 25, got %d", cfg.Output.TopK)
	}
	// Zero values must not clobber defaults.
	if cfg.Fields.Timestamp != "timestamp" {
		t.Errorf("Merge clobbered default timestamp field: %q", cfg.Fields.Timestamp)
	}
	if cfg.Output.Format != "csv" {
		t.Errorf("Merge clobbered default format: %q", cfg.Output.Format)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SEQFLOW_SESSION_FIELD", "visitor_id")
	t.Setenv("SEQFLOW_MIN_SUPPORT", "0.05")

	m := NewManager()
	m.loadEnv()

	cfg := m.Get()
	if cfg.Fields.Session != "visitor_id" {
		t.Errorf("Expected env session field, got %q", cfg.Fields.Session)
	}
	if cfg.Mining.MinSupport != 0.05 {
		t.Errorf("Expected env min support 0.05, got %g", cfg.Mining.MinSupport)
	}
}

func TestLoadEnv_BadFloatIgnored(t *testing.T) {
	t.Setenv("SEQFLOW_MIN_SUPPORT", "lots")

	m := NewManager()
	before := m.Get().Mining.MinSupport
	m.loadEnv()

	if got := m.Get().Mining.MinSupport; got != before {
		t.Errorf("Bad env float changed min support to %g", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"default", func(*Config) {}, true},
		{"support too high", func(c *Config) { c.Mining.MinSupport = 1.5 }, false},
		{"negative confidence", func(c *Config) { c.Mining.MinConfidence = -0.1 }, false},
		{"bad format", func(c *Config) { c.Output.Format = "pdf" }, false},
		{"parquet format", func(c *Config) { c.Output.Format = "parquet" }, true},
	}

	for _, c := range cases {
		cfg := Default()
		c.mutate(cfg)
		err := cfg.Validate()
		if c.wantOK && err != nil {
			t.Errorf("%s: expected valid, got %v", c.name, err)
		}
		if !c.wantOK && err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}
