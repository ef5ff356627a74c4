package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

type Config struct {
	// BuildDir receives intermediate files and the generated output.
	BuildDir string `mapstructure:"build_dir"`
	// Multipage keeps included documents as separate output pages.
	Multipage bool `mapstructure:"multipage"`
	// WarningsAreErrors aborts generation on the first recoverable problem.
	WarningsAreErrors bool `mapstructure:"warnings_are_errors"`
	// PackageSpec is the path of the package specification file.
	PackageSpec string `mapstructure:"package_spec"`
	// VersionFile is an optional CSV file pinning package versions.
	VersionFile string `mapstructure:"version_file"`

	Cache CacheConfig `mapstructure:"cache"`
}

// cacheBase returns the base cache directory for adocgen.
// Checks XDG_CACHE_HOME, then ~/.cache, then the system temp dir as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "adocgen")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "adocgen")
	}
	return filepath.Join(os.TempDir(), "adocgen")
}

// DBPath returns the path to the package ledger database.
func DBPath() string {
	return filepath.Join(cacheBase(), "packages.db")
}

// CASDir returns the path to the content-addressable archive store.
func CASDir() string {
	return filepath.Join(cacheBase(), "cas")
}

// WorkspaceDir returns the directory unpacked packages are staged in.
func WorkspaceDir() string {
	return filepath.Join(cacheBase(), "workspace")
}

func InitializeViper() error {
	viper.SetConfigName("adocgen")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "adocgen"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "adocgen"))
	}

	viper.SetDefault("build_dir", "build")
	viper.SetDefault("multipage", false)
	viper.SetDefault("warnings_are_errors", false)
	viper.SetDefault("cache.enabled", true)

	viper.SetEnvPrefix("ADOCGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// stringToCacheConfigHookFunc lets `cache = "/some/dir"` stand for an
// enabled cache in that directory.
func stringToCacheConfigHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(CacheConfig{}) {
			return data, nil
		}
		if f.Kind() == reflect.String {
			return CacheConfig{Enabled: true, Dir: data.(string)}, nil
		}
		return data, nil
	}
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToCacheConfigHookFunc(),
		Result:     &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Cache.Dir == "" {
		config.Cache.Dir = cacheBase()
	}
	return &config, nil
}
