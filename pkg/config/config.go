package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Storage and ledger drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverEthereum = "ethereum"
)

// Config represents the sale server configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Storage       StorageConfig       `yaml:"storage"`
	Ledger        LedgerConfig        `yaml:"ledger"`
	Ethereum      EthereumConfig      `yaml:"ethereum"`
	Sale          SaleConfig          `yaml:"sale"`
	Auth          AuthConfig          `yaml:"auth"`
	Notifications NotificationsConfig `yaml:"notifications"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"primary_sale"`
	SSLMode  string `yaml:"ssl_mode" default:"disable"`
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// StorageConfig selects where the controller state lives.
type StorageConfig struct {
	Driver string `yaml:"driver" default:"memory" validate:"oneof=memory postgres"`
}

// LedgerConfig selects the asset ledger admissions are issued on.
type LedgerConfig struct {
	Driver string `yaml:"driver" default:"memory" validate:"oneof=memory ethereum"`
	// Allowlist restricts in-memory issuance to these recipients when non-empty.
	Allowlist []string `yaml:"allowlist" validate:"dive,eth_addr"`
}

// EthereumConfig contains Ethereum client settings
type EthereumConfig struct {
	RPCURL           string        `yaml:"rpc_url"`
	ChainID          int64         `yaml:"chain_id" default:"31337"`
	TokenContract    string        `yaml:"token_contract" validate:"omitempty,eth_addr"`
	MinterPrivateKey string        `yaml:"minter_private_key"`
	GasLimit         uint64        `yaml:"gas_limit" default:"300000"`
	MaxGasPrice      string        `yaml:"max_gas_price"`
	ReceiptTimeout   time.Duration `yaml:"receipt_timeout" default:"2m"`
}

// SaleConfig contains controller bootstrap settings
type SaleConfig struct {
	// Administrator is granted the administrator role when the store is first initialized.
	Administrator string `yaml:"administrator" validate:"required,eth_addr"`
}

// AdministratorAddress returns the configured administrator.
func (c *SaleConfig) AdministratorAddress() common.Address {
	return common.HexToAddress(c.Administrator)
}

// AuthConfig contains request authentication settings
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	JWTIssuer       string        `yaml:"jwt_issuer" default:"primary-sale"`
	JWTTTL          time.Duration `yaml:"jwt_ttl" default:"1h"`
	SignatureMaxAge time.Duration `yaml:"signature_max_age" default:"5m"`
}

// NotificationsConfig contains notification fan-out settings
type NotificationsConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains Redis stream publisher settings. An empty URL disables it.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	Stream       string        `yaml:"stream" default:"sale-events"`
	MaxLen       int64         `yaml:"max_len" default:"10000"`
	PoolSize     int           `yaml:"pool_size" default:"10"`
	MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"3s"`
}

// RateLimitConfig limits admission requests per client address.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second" default:"5"`
	Burst     int     `yaml:"burst" default:"10"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load loads configuration from file. ${VAR} references in the file are
// expanded from the environment before parsing.
func Load(configPath string) (*Config, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML configuration, applies defaults and validates the result.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints and the cross-field requirements of the
// selected drivers.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if c.Storage.Driver == DriverPostgres && c.Database.Host == "" {
		return fmt.Errorf("database.host is required for the postgres storage driver")
	}
	if c.Ledger.Driver == DriverEthereum {
		if c.Ethereum.RPCURL == "" {
			return fmt.Errorf("ethereum.rpc_url is required for the ethereum ledger driver")
		}
		if c.Ethereum.TokenContract == "" {
			return fmt.Errorf("ethereum.token_contract is required for the ethereum ledger driver")
		}
		if c.Ethereum.MinterPrivateKey == "" {
			return fmt.Errorf("ethereum.minter_private_key is required for the ethereum ledger driver")
		}
	}
	if c.RateLimit.PerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	return nil
}
