// Package config loads the process-wide service configuration once at
// startup. The resulting Config is a plain value passed to every component.
package config

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/jmylchreest/covergen/internal/apperr"
	"github.com/jmylchreest/covergen/internal/label"
	"github.com/jmylchreest/covergen/internal/layout"
)

// Configuration keys. Each maps to the upper-cased environment variable with
// dots replaced by underscores, e.g. storage.endpoint -> STORAGE_ENDPOINT.
const (
	KeyAPIKey            = "api_key"
	KeyFontPath          = "font_path"
	KeyOutputDir         = "output_dir"
	KeyListenAddr        = "listen_addr"
	KeyMinYear           = "min_year"
	KeyCanvasWidth       = "canvas.width"
	KeyCanvasHeight      = "canvas.height"
	KeyRenderConcurrency = "render.concurrency"
	KeyStorageEndpoint   = "storage.endpoint"
	KeyStorageAccessKey  = "storage.access_key"
	KeyStorageSecretKey  = "storage.secret_key"
	KeyStorageBucket     = "storage.bucket"
	KeyStorageRegion     = "storage.region"
	KeyStorageUseSSL     = "storage.use_ssl"
)

// Defaults.
const (
	DefaultOutputDir  = "/tmp"
	DefaultListenAddr = ":8000"
	DefaultBucket     = "playlist-covers"
)

var allKeys = []string{
	KeyAPIKey, KeyFontPath, KeyOutputDir, KeyListenAddr, KeyMinYear,
	KeyCanvasWidth, KeyCanvasHeight, KeyRenderConcurrency,
	KeyStorageEndpoint, KeyStorageAccessKey, KeyStorageSecretKey,
	KeyStorageBucket, KeyStorageRegion, KeyStorageUseSSL,
}

// Keys returns every configuration key in display order.
func Keys() []string {
	return slices.Clone(allKeys)
}

// IsSecret reports whether the value of key must not be displayed.
func IsSecret(key string) bool {
	switch key {
	case KeyAPIKey, KeyStorageAccessKey, KeyStorageSecretKey:
		return true
	}
	return false
}

// Storage holds object-store connection settings.
type Storage struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Config is the immutable service configuration.
type Config struct {
	APIKey            string
	FontPath          string
	OutputDir         string
	ListenAddr        string
	MinYear           int
	Canvas            layout.Canvas
	RenderConcurrency int
	Storage           Storage
}

// New returns a viper instance with defaults set and every key bound to its
// environment variable.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range allKeys {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(k)
	}

	v.SetDefault(KeyOutputDir, DefaultOutputDir)
	v.SetDefault(KeyListenAddr, DefaultListenAddr)
	v.SetDefault(KeyMinYear, label.DefaultMinYear)
	v.SetDefault(KeyCanvasWidth, layout.DefaultSide)
	v.SetDefault(KeyCanvasHeight, layout.DefaultSide)
	v.SetDefault(KeyRenderConcurrency, runtime.NumCPU())
	v.SetDefault(KeyStorageBucket, DefaultBucket)
	v.SetDefault(KeyStorageUseSSL, true)
	return v
}

// ReadFile overlays a YAML/JSON/TOML config file onto v. Environment
// variables still take precedence.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	return nil
}

// Load builds a Config from v and checks the settings every command needs.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		APIKey:     strings.TrimSpace(v.GetString(KeyAPIKey)),
		FontPath:   strings.TrimSpace(v.GetString(KeyFontPath)),
		OutputDir:  strings.TrimSpace(v.GetString(KeyOutputDir)),
		ListenAddr: strings.TrimSpace(v.GetString(KeyListenAddr)),
		MinYear:    v.GetInt(KeyMinYear),
		Canvas: layout.Canvas{
			Width:  v.GetInt(KeyCanvasWidth),
			Height: v.GetInt(KeyCanvasHeight),
		},
		RenderConcurrency: v.GetInt(KeyRenderConcurrency),
		Storage: Storage{
			Endpoint:  strings.TrimSpace(v.GetString(KeyStorageEndpoint)),
			AccessKey: strings.TrimSpace(v.GetString(KeyStorageAccessKey)),
			SecretKey: strings.TrimSpace(v.GetString(KeyStorageSecretKey)),
			Bucket:    strings.TrimSpace(v.GetString(KeyStorageBucket)),
			Region:    strings.TrimSpace(v.GetString(KeyStorageRegion)),
			UseSSL:    v.GetBool(KeyStorageUseSSL),
		},
	}

	var problems []string
	if err := cfg.Canvas.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.MinYear <= 0 {
		problems = append(problems, fmt.Sprintf("%s must be positive, got %d", KeyMinYear, cfg.MinYear))
	}
	if cfg.RenderConcurrency < 1 {
		problems = append(problems, fmt.Sprintf("%s must be at least 1, got %d", KeyRenderConcurrency, cfg.RenderConcurrency))
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if info, err := os.Stat(cfg.OutputDir); err != nil {
		problems = append(problems, fmt.Sprintf("%s %q: %v", KeyOutputDir, cfg.OutputDir, err))
	} else if !info.IsDir() {
		problems = append(problems, fmt.Sprintf("%s %q is not a directory", KeyOutputDir, cfg.OutputDir))
	}

	if len(problems) > 0 {
		return Config{}, &apperr.ConfigurationError{Problems: problems}
	}
	return cfg, nil
}

// RequireServer checks the settings only the HTTP service needs: the API key
// and object-store credentials. A missing API key is fatal at startup.
func (c Config) RequireServer() error {
	required := []struct {
		key   string
		value string
	}{
		{KeyAPIKey, c.APIKey},
		{KeyStorageEndpoint, c.Storage.Endpoint},
		{KeyStorageAccessKey, c.Storage.AccessKey},
		{KeyStorageSecretKey, c.Storage.SecretKey},
		{KeyStorageBucket, c.Storage.Bucket},
		{KeyListenAddr, c.ListenAddr},
	}

	var problems []string
	for _, r := range required {
		if r.value == "" {
			problems = append(problems, fmt.Sprintf("%s (%s) is required", r.key, EnvName(r.key)))
		}
	}
	if len(problems) > 0 {
		return &apperr.ConfigurationError{Problems: problems}
	}
	return nil
}

// EnvName returns the environment variable bound to key.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
