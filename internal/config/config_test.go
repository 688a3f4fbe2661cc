package config

import "testing"

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "cluster" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad server port", func(c *Config) { c.Server.Port = 0 }},
		{"fee over 100 percent", func(c *Config) { c.Market.FeeBps = 10_001 }},
		{"empty postgres host", func(c *Config) { c.Postgres.Host = "" }},
		{"empty redis addr", func(c *Config) { c.Redis.Addr = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDemoModeSkipsBackendChecks(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "demo"
	cfg.Postgres.Host = ""
	cfg.Redis.Addr = ""
	cfg.S3.Bucket = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("demo mode must not require backing services: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MARKETD_MODE", "demo")
	t.Setenv("MARKETD_MARKET_FEE_BPS", "250")
	t.Setenv("MARKETD_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Mode != "demo" {
		t.Errorf("mode = %q, want demo", cfg.Mode)
	}
	if cfg.Market.FeeBps != 250 {
		t.Errorf("fee_bps = %d, want 250", cfg.Market.FeeBps)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors_origins = %v", cfg.Server.CORSOrigins)
	}
}
