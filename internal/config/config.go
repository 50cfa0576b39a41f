package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	File      string `mapstructure:"file"`
	Provider  string `mapstructure:"provider"`
	DSN       string `mapstructure:"db"`
	Group     string `mapstructure:"group"`
	Backend   string `mapstructure:"backend"`
	Sudo      bool   `mapstructure:"sudo"`
	Binary    string `mapstructure:"binary"`
	Chain     string `mapstructure:"chain"`
	Service   string `mapstructure:"service"`
	ListOnly  bool   `mapstructure:"list-only"`
	DryRun    bool   `mapstructure:"dry-run"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	LogFile   string `mapstructure:"log-file"`
}

// Load merges defaults, an optional .env file, CIDRBLOCK_* environment
// variables, an optional config file and the command-line flags, in
// increasing order of precedence.
func Load(configPath, envFile string, flags *pflag.FlagSet) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	}

	v := viper.New()

	// Every key needs a default so AutomaticEnv can resolve it without flags.
	v.SetDefault("file", "")
	v.SetDefault("db", "")
	v.SetDefault("group", "")
	v.SetDefault("binary", "")
	v.SetDefault("service", "")
	v.SetDefault("list-only", false)
	v.SetDefault("dry-run", false)
	v.SetDefault("log-file", "")
	v.SetDefault("provider", "list")
	v.SetDefault("backend", "ufw")
	v.SetDefault("sudo", true)
	v.SetDefault("chain", "INPUT")
	v.SetDefault("log-level", "INFO")
	v.SetDefault("log-format", "json")

	v.SetEnvPrefix("CIDRBLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case "list", "fortigate":
	case "mariadb":
		if c.DSN == "" {
			return fmt.Errorf("database connection string must be provided for mariadb provider")
		}
	default:
		return fmt.Errorf("unknown input provider: %s", c.Provider)
	}

	switch strings.ToLower(c.Backend) {
	case "ufw", "iptables", "dry-run", "dryrun":
	default:
		return fmt.Errorf("unknown firewall backend: %s", c.Backend)
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format: %s", c.LogFormat)
	}
	return nil
}
