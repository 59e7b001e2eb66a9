package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration. It is built once at startup and
// passed explicitly into constructors; nothing reads the environment after
// Load returns.
type Config struct {
	Server      ServerConfig      `env-prefix:"SERVER_"`
	Database    DatabaseConfig    `env-prefix:"DB_"`
	Logger      LoggerConfig      `env-prefix:"LOG_"`
	Auth        AuthConfig        ``
	MercadoPago MercadoPagoConfig `env-prefix:"MERCADO_PAGO_"`
	MelhorEnvio MelhorEnvioConfig `env-prefix:"MELHOR_ENVIO_"`
	Sender      SenderConfig      `env-prefix:"MELHOR_ENVIO_SENDER_"`
	Pickup      PickupConfig      `env-prefix:"STORE_PICKUP_"`
	Site        SiteConfig        ``
	Redis       RedisConfig       `env-prefix:"REDIS_"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string `env:"HOST" env-default:"0.0.0.0"`
	Port int    `env:"PORT" env-default:"8080"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `env:"HOST" env-default:"localhost"`
	Port            int    `env:"PORT" env-default:"5432"`
	User            string `env:"USER" env-default:"postgres"`
	Password        string `env:"PASSWORD" env-default:""`
	Database        string `env:"NAME" env-default:"storefront"`
	MaxConnections  int    `env:"MAX_CONNECTIONS" env-default:"25"`
	MinConnections  int    `env:"MIN_CONNECTIONS" env-default:"5"`
	MaxConnLifetime int    `env:"MAX_CONN_LIFETIME" env-default:"300"` // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `env:"LEVEL" env-default:"info"`
	Format string `env:"FORMAT" env-default:"json"` // "json" or "console"
}

// AuthConfig holds the API key protecting the admin back-office routes.
type AuthConfig struct {
	APIKey string `env:"API_KEY" env-default:""`
}

// MercadoPagoConfig holds payment-processor configuration.
type MercadoPagoConfig struct {
	AccessToken string `env:"ACCESS_TOKEN" env-default:""`
	BaseURL     string `env:"BASE_URL" env-default:"https://api.mercadopago.com"`
	// WebhookURL overrides the notification URL sent with every payment.
	WebhookURL          string `env:"WEBHOOK_URL" env-default:""`
	StatementDescriptor string `env:"STATEMENT_DESCRIPTOR" env-default:"ATLANTICA MODAS"`
}

// MelhorEnvioConfig holds carrier-aggregator configuration.
type MelhorEnvioConfig struct {
	Token     string `env:"API_TOKEN" env-default:""`
	BaseURL   string `env:"BASE_URL" env-default:"https://www.melhorenvio.com.br"`
	UserAgent string `env:"USER_AGENT" env-default:"Atlantica Modas (contato@atlanticamodas.com.br)"`
	Platform  string `env:"PLATFORM" env-default:"Atlantica Modas"`
}

// SenderConfig is the fixed store-origin identity stamped on every shipping
// label.
type SenderConfig struct {
	Name                 string `env:"NAME" env-default:""`
	Phone                string `env:"PHONE" env-default:""`
	Email                string `env:"EMAIL" env-default:""`
	Document             string `env:"DOCUMENT" env-default:""`
	CompanyDocument      string `env:"COMPANY_DOCUMENT" env-default:""`
	StateRegister        string `env:"STATE_REGISTER" env-default:""`
	EconomicActivityCode string `env:"CNAE" env-default:""`
	Street               string `env:"STREET" env-default:""`
	Number               string `env:"NUMBER" env-default:""`
	Complement           string `env:"COMPLEMENT" env-default:""`
	District             string `env:"DISTRICT" env-default:""`
	City                 string `env:"CITY" env-default:""`
	State                string `env:"STATE" env-default:""`
	PostalCode           string `env:"POSTAL_CODE" env-default:""`
	Country              string `env:"COUNTRY" env-default:"BR"`
}

// PickupConfig describes the synthetic in-store pickup shipping option.
type PickupConfig struct {
	Name    string `env:"NAME" env-default:"Retirada na loja"`
	Address string `env:"ADDRESS" env-default:""`
}

// SiteConfig holds the public site base URL used for payment return pages.
type SiteConfig struct {
	BaseURL string `env:"PUBLIC_SITE_URL" env-default:""`
}

// RedisConfig holds the optional webhook-dedup store configuration.
type RedisConfig struct {
	Enabled bool   `env:"ENABLED" env-default:"false"`
	Addr    string `env:"ADDR" env-default:"localhost:6379"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration. Missing provider credentials fail
// here, at startup, rather than degrading silently at the first checkout.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if c.MercadoPago.AccessToken == "" {
		return fmt.Errorf("Mercado Pago access token is required")
	}

	if c.MelhorEnvio.Token == "" {
		return fmt.Errorf("Melhor Envio API token is required")
	}

	if c.Site.BaseURL == "" {
		return fmt.Errorf("public site URL is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
