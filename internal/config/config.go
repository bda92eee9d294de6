package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	UI        UIConfig        `mapstructure:"ui"`
	Keys      KeyConfig       `mapstructure:"keys"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServiceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"user_agent"`
	AllowLocal bool          `mapstructure:"allow_local"`
}

type DiscoveryConfig struct {
	InitialCount  int `mapstructure:"initial_count"`
	LoadMoreCount int `mapstructure:"load_more_count"`
	PrefetchLimit int `mapstructure:"prefetch_limit"`
	PopularCount  int `mapstructure:"popular_count"`
}

type UIConfig struct {
	Colors        UIColors `mapstructure:"colors"`
	FallbackCover string   `mapstructure:"fallback_cover"`
	BlogPath      string   `mapstructure:"blog_path"`
	WordWrapMax   int      `mapstructure:"word_wrap_max_width"`
	WordWrapMin   int      `mapstructure:"word_wrap_min_width"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type KeyConfig struct {
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit         string `mapstructure:"quit"`
	Search       string `mapstructure:"search"`
	NextCategory string `mapstructure:"next_category"`
	PrevCategory string `mapstructure:"prev_category"`
	CycleSort    string `mapstructure:"cycle_sort"`
	LoadMore     string `mapstructure:"load_more"`
	ClearFilters string `mapstructure:"clear_filters"`
	Navigate     string `mapstructure:"navigate"`
	Reload       string `mapstructure:"reload"`
	Back         string `mapstructure:"back"`
	Help         string `mapstructure:"help"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	logPath := filepath.Join(homeDir, ".blogscout", "blogscout.log")

	return &Config{
		Service: ServiceConfig{
			BaseURL:    "http://localhost:5000/api",
			Timeout:    10 * time.Second,
			UserAgent:  "blogscout/1.0",
			AllowLocal: true,
		},
		Discovery: DiscoveryConfig{
			InitialCount:  9,
			LoadMoreCount: 9,
			PrefetchLimit: 200,
			PopularCount:  6,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			FallbackCover: "/images/blog-placeholder.jpg",
			BlogPath:      "/blog",
			WordWrapMax:   120,
			WordWrapMin:   40,
		},
		Keys: KeyConfig{
			Bindings: KeyBindings{
				Quit:         "q",
				Search:       "/",
				NextCategory: "c",
				PrevCategory: "C",
				CycleSort:    "s",
				LoadMore:     "m",
				ClearFilters: "x",
				Navigate:     "g",
				Reload:       "r",
				Back:         "esc",
				Help:         "?",
			},
		},
		Log: LogConfig{
			Level: "off",
			Path:  logPath,
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range settings(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "blogscout")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BLOGSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&config)
	config.Log.Path = expandPath(config.Log.Path)

	return &config, nil
}

// applyDefaults replaces unusable values left by a partial config file.
func applyDefaults(cfg *Config) {
	d := defaultConfig()
	if cfg.Service.Timeout <= 0 {
		cfg.Service.Timeout = d.Service.Timeout
	}
	if cfg.Service.UserAgent == "" {
		cfg.Service.UserAgent = d.Service.UserAgent
	}
	if cfg.Discovery.InitialCount < 1 {
		cfg.Discovery.InitialCount = d.Discovery.InitialCount
	}
	if cfg.Discovery.LoadMoreCount < 1 {
		cfg.Discovery.LoadMoreCount = d.Discovery.LoadMoreCount
	}
	if cfg.Discovery.PrefetchLimit < 1 {
		cfg.Discovery.PrefetchLimit = d.Discovery.PrefetchLimit
	}
	if cfg.Discovery.PopularCount < 1 {
		cfg.Discovery.PopularCount = d.Discovery.PopularCount
	}
	if cfg.UI.BlogPath == "" {
		cfg.UI.BlogPath = d.UI.BlogPath
	}
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

func Save(config *Config, path string) error {
	v := viper.New()

	for key, value := range settings(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}

// Describe lists the effective settings as sorted "key = value" lines.
func Describe(cfg *Config) []string {
	flat := settings(cfg)
	lines := make([]string, 0, len(flat))
	for key, value := range flat {
		lines = append(lines, fmt.Sprintf("%s = %v", key, value))
	}
	sort.Strings(lines)
	return lines
}

// settings flattens cfg into dotted viper keys. Durations are written as
// strings for TOML readability.
func settings(cfg *Config) map[string]interface{} {
	return map[string]interface{}{
		"service.base_url":    cfg.Service.BaseURL,
		"service.timeout":     cfg.Service.Timeout.String(),
		"service.user_agent":  cfg.Service.UserAgent,
		"service.allow_local": cfg.Service.AllowLocal,

		"discovery.initial_count":   cfg.Discovery.InitialCount,
		"discovery.load_more_count": cfg.Discovery.LoadMoreCount,
		"discovery.prefetch_limit":  cfg.Discovery.PrefetchLimit,
		"discovery.popular_count":   cfg.Discovery.PopularCount,

		"ui.colors.primary":      cfg.UI.Colors.Primary,
		"ui.colors.secondary":    cfg.UI.Colors.Secondary,
		"ui.colors.accent":       cfg.UI.Colors.Accent,
		"ui.colors.text":         cfg.UI.Colors.Text,
		"ui.colors.muted":        cfg.UI.Colors.Muted,
		"ui.colors.error":        cfg.UI.Colors.Error,
		"ui.colors.success":      cfg.UI.Colors.Success,
		"ui.fallback_cover":      cfg.UI.FallbackCover,
		"ui.blog_path":           cfg.UI.BlogPath,
		"ui.word_wrap_max_width": cfg.UI.WordWrapMax,
		"ui.word_wrap_min_width": cfg.UI.WordWrapMin,

		"keys.bindings.quit":          cfg.Keys.Bindings.Quit,
		"keys.bindings.search":        cfg.Keys.Bindings.Search,
		"keys.bindings.next_category": cfg.Keys.Bindings.NextCategory,
		"keys.bindings.prev_category": cfg.Keys.Bindings.PrevCategory,
		"keys.bindings.cycle_sort":    cfg.Keys.Bindings.CycleSort,
		"keys.bindings.load_more":     cfg.Keys.Bindings.LoadMore,
		"keys.bindings.clear_filters": cfg.Keys.Bindings.ClearFilters,
		"keys.bindings.navigate":      cfg.Keys.Bindings.Navigate,
		"keys.bindings.reload":        cfg.Keys.Bindings.Reload,
		"keys.bindings.back":          cfg.Keys.Bindings.Back,
		"keys.bindings.help":          cfg.Keys.Bindings.Help,

		"log.level": cfg.Log.Level,
		"log.path":  cfg.Log.Path,
	}
}
