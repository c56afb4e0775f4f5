package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	d := defaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		API: APIConfig{
			BaseURL:     "http://127.0.0.1",
			UsersPath:   "/users",
			RecipesPath: "/recipes",
			HTTPTimeout: 5 * time.Second,
			UserAgent:   "larder-test/1.0",
			AllowLocal:  true,
		},
		Catalog: CatalogConfig{
			SearchDebounce: 10 * time.Millisecond,
		},
		Log:   LogConfig{Level: "off"},
		UI:    d.UI,
		Media: d.Media,
		Keys:  d.Keys,
	}
}
