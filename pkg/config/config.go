package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config holds all configuration for the service
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Sheets    SheetsConfig
	Database  DatabaseConfig
	RabbitMQ  RabbitMQConfig
	JWT       JWTConfig
	Inventory InventoryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// StoreConfig selects the table store backend
type StoreConfig struct {
	// Backend is one of "sheets", "postgres", "memory"
	Backend  string        `mapstructure:"backend"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// SheetsConfig holds Google Sheets backend configuration
type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	CredentialsJSON string `mapstructure:"credentials_json"`
	StockTab        string `mapstructure:"stock_tab"`
	DrugsTab        string `mapstructure:"drugs_tab"`
	LocationsTab    string `mapstructure:"locations_tab"`
	UsersTab        string `mapstructure:"users_tab"`
}

// DatabaseConfig holds Postgres backend configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RabbitMQConfig holds RabbitMQ connection configuration.
// An empty URL disables event publishing entirely.
type RabbitMQConfig struct {
	URL            string        `mapstructure:"url"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	MaxRetries     int           `mapstructure:"max_retries"`
	PrefetchCount  int           `mapstructure:"prefetch_count"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string        `mapstructure:"secret"`
	AccessExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer        string        `mapstructure:"issuer"`
}

// InventoryConfig holds lifecycle policy knobs.
//
// ReceiveDefaultBUDDays is the shelf life applied at receive time when the
// drug master's BUD field has no parseable day count. ThawDefaultColdDays
// plays the same role for the thaw operation's cold shelf life.
type InventoryConfig struct {
	ReceiveDefaultBUDDays int `mapstructure:"receive_default_bud_days"`
	ThawDefaultColdDays   int `mapstructure:"thaw_default_cold_days"`
	ExpiryAlertDays       int `mapstructure:"expiry_alert_days"`
}

// Load loads configuration from environment and config files
func Load(serviceName string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EXTEMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(serviceName)
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/extemp")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithValidation loads configuration and validates it for the current
// environment. Use in main() for fail-fast behavior.
func LoadWithValidation(serviceName string) (*Config, error) {
	cfg, err := Load(serviceName)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required configuration for the selected backend and
// environment.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sheets":
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("EXTEMP_SHEETS_SPREADSHEET_ID required for sheets backend")
		}
		if c.Sheets.CredentialsFile == "" && c.Sheets.CredentialsJSON == "" {
			return errors.New("EXTEMP_SHEETS_CREDENTIALS_FILE or EXTEMP_SHEETS_CREDENTIALS_JSON required for sheets backend")
		}
	case "postgres":
		if c.Database.Host == "" {
			return errors.New("EXTEMP_DATABASE_HOST required for postgres backend")
		}
	case "memory":
		// no external configuration
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Server.Environment == EnvProduction || c.Server.Environment == EnvStaging {
		if c.JWT.Secret == "" || c.JWT.Secret == "dev-secret-change-in-production" {
			return errors.New("EXTEMP_JWT_SECRET must be set to a secure value in " + c.Server.Environment)
		}
		if c.Store.Backend == "memory" {
			return errors.New("memory store backend not allowed in " + c.Server.Environment)
		}
	}

	if c.Inventory.ReceiveDefaultBUDDays < 0 || c.Inventory.ThawDefaultColdDays < 0 {
		return errors.New("inventory shelf-life defaults must be non-negative")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.environment", EnvDevelopment)

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.cache_ttl", 60*time.Second)

	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.credentials_json", "")
	v.SetDefault("sheets.stock_tab", "Stock")
	v.SetDefault("sheets.drugs_tab", "Drugs")
	v.SetDefault("sheets.locations_tab", "Locations")
	v.SetDefault("sheets.users_tab", "Users")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "extemp")
	v.SetDefault("database.password", "devpassword")
	v.SetDefault("database.database", "extemp_inventory")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.reconnect_delay", 5*time.Second)
	v.SetDefault("rabbitmq.max_retries", 5)
	v.SetDefault("rabbitmq.prefetch_count", 10)

	v.SetDefault("jwt.secret", "dev-secret-change-in-production")
	v.SetDefault("jwt.access_expiry", 15*time.Minute)
	v.SetDefault("jwt.refresh_expiry", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "extemp-inventory")

	v.SetDefault("inventory.receive_default_bud_days", 30)
	v.SetDefault("inventory.thaw_default_cold_days", 7)
	v.SetDefault("inventory.expiry_alert_days", 10)
}
