package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	UsersPath   string        `mapstructure:"users_path"`
	RecipesPath string        `mapstructure:"recipes_path"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	AllowLocal  bool          `mapstructure:"allow_local"`
}

type CatalogConfig struct {
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors UIColors     `mapstructure:"colors"`
	Detail DetailConfig `mapstructure:"detail"`
	Card   CardConfig   `mapstructure:"card"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type DetailConfig struct {
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type CardConfig struct {
	MaxIngredients int `mapstructure:"max_ingredients"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux"`
	Windows       MediaPlayers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type MediaPlayers struct {
	Image []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit      string `mapstructure:"quit"`
	Filter    string `mapstructure:"filter"`
	ShowMore  string `mapstructure:"show_more"`
	OpenImage string `mapstructure:"open_image"`
	Logout    string `mapstructure:"logout"`
	Back      string `mapstructure:"back"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".larder.db"),
			Timeout: 1 * time.Second,
		},
		API: APIConfig{
			BaseURL:     "https://dummyjson.com",
			UsersPath:   "/users",
			RecipesPath: "/recipes",
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "larder/1.0 (https://github.com/pders01/larder)",
		},
		Catalog: CatalogConfig{
			SearchDebounce: 350 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".larder", "larder.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#E07A5F",
				Secondary:  "#81B29A",
				Accent:     "#F2CC8F",
				Background: "#1F1B24",
				Surface:    "#2A2433",
				Text:       "#F4F1DE",
				Muted:      "#A8A29E",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Detail: DetailConfig{
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
			Card: CardConfig{
				MaxIngredients: 6,
			},
		},
		Media: MediaConfig{
			Darwin:        MediaPlayers{Image: []string{"preview", "open"}},
			Linux:         MediaPlayers{Image: []string{"sxiv", "feh", "eog", "xdg-open"}},
			Windows:       MediaPlayers{Image: []string{"start"}},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:      "c",
				Filter:    "f",
				ShowMore:  "n",
				OpenImage: "o",
				Logout:    "l",
				Back:      "esc",
			},
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Default returns the built-in configuration with paths expanded.
func Default() *Config {
	cfg := defaultConfig()
	expandPaths(cfg)
	return cfg
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("database", cfg.Database)
	v.SetDefault("api", cfg.API)
	v.SetDefault("catalog", cfg.Catalog)
	v.SetDefault("log", cfg.Log)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("keys", cfg.Keys)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "larder")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LARDER")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Decoding over the defaults keeps keys a partial section leaves out.
	config := *defaultConfig()
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// A top-level env var such as LARDER_LOG_LEVEL is not picked up by
	// Unmarshal for nested struct defaults.
	if lvl := os.Getenv("LARDER_LOG_LEVEL"); lvl != "" {
		config.Log.Level = lvl
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	v.Set("database", map[string]interface{}{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	})
	v.Set("api", map[string]interface{}{
		"base_url":     config.API.BaseURL,
		"users_path":   config.API.UsersPath,
		"recipes_path": config.API.RecipesPath,
		"http_timeout": config.API.HTTPTimeout.String(),
		"user_agent":   config.API.UserAgent,
		"allow_local":  config.API.AllowLocal,
	})
	v.Set("catalog", map[string]interface{}{
		"search_debounce": config.Catalog.SearchDebounce.String(),
	})
	v.Set("log", config.Log)
	v.Set("ui", config.UI)
	v.Set("media", config.Media)
	v.Set("keys", config.Keys)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
