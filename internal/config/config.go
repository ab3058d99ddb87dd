package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Provider struct {
	Type    string        `mapstructure:"type"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PairConfig struct {
	Model string `mapstructure:"model"`
}

type HTTP struct {
	Listen string `mapstructure:"listen"`
}

type License struct {
	ActivationCodes   []string `mapstructure:"activation_codes"`
	BootstrapPassword string   `mapstructure:"bootstrap_password"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	DataDir     string                `mapstructure:"data_dir"`
	DefaultPair string                `mapstructure:"default_pair"`
	Provider    Provider              `mapstructure:"provider"`
	Pairs       map[string]PairConfig `mapstructure:"pairs"`
	HTTP        HTTP                  `mapstructure:"http"`
	License     License               `mapstructure:"license"`
	Logging     Logging               `mapstructure:"logging"`
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".translationmdexe"
	}
	return filepath.Join(home, ".translationmdexe")
}

// Load reads configuration from the given file (optional), the data
// directory and the environment. Environment variables use the
// TRANSLATIONMDEXE_ prefix with underscores, e.g.
// TRANSLATIONMDEXE_PROVIDER_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("default_pair", "fr-en")
	v.SetDefault("provider.type", "ollama")
	v.SetDefault("provider.model", "llama3.1:8b")
	v.SetDefault("provider.timeout", "60s")
	v.SetDefault("http.listen", "127.0.0.1:8787")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix("TRANSLATIONMDEXE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about, so keys
	// without defaults need an explicit binding to reach Unmarshal
	for _, key := range []string{
		"provider.base_url",
		"provider.api_key",
		"license.activation_codes",
		"license.bootstrap_password",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data_dir"))
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// ModelFor returns the model for a language pair, falling back to the
// provider default.
func (c *Config) ModelFor(pair string) string {
	if pc, ok := c.Pairs[pair]; ok && pc.Model != "" {
		return pc.Model
	}
	return c.Provider.Model
}

func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "translationmdexe.db")
}
