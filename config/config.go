package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"gmgn-swap/pkg/client"
	"gmgn-swap/pkg/credentials"
	"gmgn-swap/pkg/gateway"
	"gmgn-swap/pkg/types"
)

const (
	EnvPrefix      = "GMGN_SWAP"
	ConfigFileName = ".gmgn-swap"
)

// Config holds the application configuration
type Config struct {
	BaseURL      string
	KlineBaseURL string

	// Key material. PrivateKey takes precedence over PrivateKeyFile.
	PrivateKey     string
	PrivateKeyFile string
	AESKey         string

	DefaultFee   decimal.Decimal
	Partner      string
	PollInterval time.Duration
	PollTimeout  time.Duration
	HTTPTimeout  time.Duration
	UserAgent    string

	LogLevel  string
	LogPretty bool
}

// Load reads configuration from defaults, an optional config file and
// GMGN_SWAP_* environment variables, in increasing precedence. An empty
// configFile searches $HOME and the working directory for .gmgn-swap.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}

	v.SetDefault("base_url", client.DefaultRouterURL)
	v.SetDefault("kline_base_url", client.DefaultKlineURL)
	v.SetDefault("private_key", "")
	v.SetDefault("private_key_file", "")
	v.SetDefault("aes_key", "")
	v.SetDefault("default_fee", types.DefaultFee.String())
	v.SetDefault("partner", "")
	v.SetDefault("poll_interval", client.DefaultPollInterval)
	v.SetDefault("poll_timeout", client.DefaultPollTimeout)
	v.SetDefault("http_timeout", gateway.DefaultTimeout)
	v.SetDefault("user_agent", gateway.DefaultUserAgent)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	fee, err := decimal.NewFromString(strings.TrimSpace(v.GetString("default_fee")))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid default_fee %q", v.GetString("default_fee"))
	}

	cfg := &Config{
		BaseURL:        v.GetString("base_url"),
		KlineBaseURL:   v.GetString("kline_base_url"),
		PrivateKey:     v.GetString("private_key"),
		PrivateKeyFile: v.GetString("private_key_file"),
		AESKey:         v.GetString("aes_key"),
		DefaultFee:     fee,
		Partner:        v.GetString("partner"),
		PollInterval:   v.GetDuration("poll_interval"),
		PollTimeout:    v.GetDuration("poll_timeout"),
		HTTPTimeout:    v.GetDuration("http_timeout"),
		UserAgent:      v.GetString("user_agent"),
		LogLevel:       v.GetString("log_level"),
		LogPretty:      v.GetBool("log_pretty"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url must not be empty")
	}
	if strings.TrimSpace(c.KlineBaseURL) == "" {
		return errors.New("kline_base_url must not be empty")
	}
	if c.PollInterval <= 0 {
		return errors.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.PollTimeout <= 0 {
		return errors.Errorf("poll_timeout must be positive, got %s", c.PollTimeout)
	}
	if c.HTTPTimeout <= 0 {
		return errors.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.DefaultFee.IsNegative() || c.DefaultFee.GreaterThan(types.MaxFee) {
		return errors.Errorf("default_fee must be between 0 and %s SOL, got %s", types.MaxFee, c.DefaultFee)
	}
	return nil
}

// HasKey reports whether any private key source is configured
func (c *Config) HasKey() bool {
	return c.PrivateKey != "" || c.PrivateKeyFile != ""
}

// Secret returns the configured at-rest secret, reading the key file when
// no inline key is set.
func (c *Config) Secret() (string, error) {
	if c.PrivateKey != "" {
		return c.PrivateKey, nil
	}
	if c.PrivateKeyFile == "" {
		return "", fmt.Errorf("private key not found. Please set %s_PRIVATE_KEY or %s_PRIVATE_KEY_FILE, or add private_key_file to %s.yaml", EnvPrefix, EnvPrefix, ConfigFileName)
	}
	return credentials.ReadSecretFile(expandHome(c.PrivateKeyFile))
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
