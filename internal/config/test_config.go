package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:    "http://127.0.0.1:0",
			Timeout:    2 * time.Second,
			UserAgent:  "blogscout-test/1.0",
			AllowLocal: true,
		},
		Discovery: defaultConfig().Discovery,
		UI:        defaultConfig().UI,
		Keys:      defaultConfig().Keys,
		Log:       LogConfig{Level: "off"},
	}
}
