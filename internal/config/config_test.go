package config

import "testing"

func validConfig() *Config {
	return &Config{
		Port:              8080,
		UpstreamTimeoutMS: 10000,
		StoreBackend:      StoreMemory,
		LogLevel:          "info",
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"zero timeout", func(c *Config) { c.UpstreamTimeoutMS = 0 }},
		{"unknown backend", func(c *Config) { c.StoreBackend = "etcd" }},
		{"postgres without dsn", func(c *Config) { c.StoreBackend = StorePostgres }},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.UpstreamTimeout.Milliseconds() != int64(cfg.UpstreamTimeoutMS) {
		t.Errorf("computed timeout %v does not match %dms", cfg.UpstreamTimeout, cfg.UpstreamTimeoutMS)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Errorf("default store backend = %q, want memory", cfg.StoreBackend)
	}
}
