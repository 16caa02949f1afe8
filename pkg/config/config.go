package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Optional API settings
	APIHost   string `mapstructure:"api_host"`
	APIPort   int    `mapstructure:"api_port"`
	APIPrefix string `mapstructure:"api_prefix"`

	// Storage backend: "json" or "sqlite"
	Storage string `mapstructure:"storage"`
	DBFile  string `mapstructure:"db_file"` // JSON document
	DBPath  string `mapstructure:"db_path"` // SQLite database

	// Optional CORS settings
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Optional logging settings
	LogFile   string `mapstructure:"log_file"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Metrics bool `mapstructure:"metrics"`
	Tracing bool `mapstructure:"tracing"`

	// Static paths
	ConfigPath string
}

const (
	DefaultConfigPath = "clientbook.yml"
	DefaultAPIHost    = "0.0.0.0"
	DefaultAPIPort    = 3000
	DefaultAPIPrefix  = "/api/clients"
	DefaultStorage    = StorageJSON
	DefaultDBFile     = "./db.json"
	DefaultDBPath     = "./clientbook.sqlite3"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	EnvPrefix         = "CLIENTBOOK"

	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Load reads configuration from defaults, an optional YAML file, a .env file
// and the environment, in increasing priority. An explicitly named config file
// must exist; the default one may be absent.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set defaults
	v.SetDefault("api_host", DefaultAPIHost)
	v.SetDefault("api_port", DefaultAPIPort)
	v.SetDefault("api_prefix", DefaultAPIPrefix)
	v.SetDefault("storage", DefaultStorage)
	v.SetDefault("db_file", DefaultDBFile)
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("metrics", true)
	v.SetDefault("tracing", false)

	// Allow environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed variables understood by earlier deployments
	_ = v.BindEnv("api_port", EnvPrefix+"_API_PORT", "PORT")
	_ = v.BindEnv("db_file", EnvPrefix+"_DB_FILE", "DB_FILE")

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		configPath = ""
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigPath = configPath
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	cfg.Storage = strings.ToLower(cfg.Storage)

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Storage != StorageJSON && c.Storage != StorageSQLite {
		return fmt.Errorf("storage must be '%s' or '%s'", StorageJSON, StorageSQLite)
	}

	if c.Storage == StorageJSON && c.DBFile == "" {
		return fmt.Errorf("db_file is required for json storage")
	}

	if c.Storage == StorageSQLite && c.DBPath == "" {
		return fmt.Errorf("db_path is required for sqlite storage")
	}

	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("api_port must be between 1 and 65535, got %d", c.APIPort)
	}

	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("api_prefix must start with '/', got %q", c.APIPrefix)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be 'text' or 'json'")
	}

	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

func (c *Config) IsDevMode() bool {
	return os.Getenv(EnvPrefix+"_DEV_MODE") == "1"
}
