package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

// GatewayConfig is the merchant-facing settings surface of the Mondido
// checkout gateway. Persisted overrides are merged into these defaults once
// at startup; the struct is immutable for the lifetime of a request.
type GatewayConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Title           string   `mapstructure:"title"`
	Description     string   `mapstructure:"description"`
	MerchantID      string   `mapstructure:"merchant_id"`
	Secret          string   `mapstructure:"secret"`
	Password        string   `mapstructure:"password"`
	TestMode        bool     `mapstructure:"testmode"`
	Authorize       bool     `mapstructure:"authorize"`
	TaxStatus       string   `mapstructure:"tax_status"`
	TaxClass        string   `mapstructure:"tax_class"`
	Logos           []string `mapstructure:"logos"`
	OrderButtonText string   `mapstructure:"order_button_text"`
	CartButton      bool     `mapstructure:"cart_button"`
	ProductButton   bool     `mapstructure:"product_button"`
	InstantCheckout bool     `mapstructure:"instant_checkout"`
	Currency        string   `mapstructure:"currency"`
	APIBaseURL      string   `mapstructure:"api_base_url"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	// GatewayID keys the callback endpoint and tags orders placed through
	// this gateway.
	GatewayID = "mondido_checkout"

	TaxStatusNone    = "none"
	TaxStatusTaxable = "taxable"
)

// DefaultGatewayConfig declares the gateway defaults in one place; loading
// merges persisted overrides into these rather than checking field existence
// per call site.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Enabled:         false,
		Title:           "Mondido Checkout",
		Description:     "",
		TestMode:        false,
		Authorize:       false,
		TaxStatus:       TaxStatusNone,
		TaxClass:        "standard",
		OrderButtonText: "Pay with Mondido",
		CartButton:      true,
		ProductButton:   true,
		InstantCheckout: false,
		Currency:        "SEK",
		APIBaseURL:      "https://api.mondido.com",
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds a config purely from environment variables for
// container deployments.
func LoadConfigFromEnv() *Config {
	defaults := DefaultGatewayConfig()

	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:           getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("SERVER_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          getEnv("DB_SOURCE", ""),
		},
		Gateway: GatewayConfig{
			Enabled:         getEnvAsBool("GATEWAY_ENABLED", defaults.Enabled),
			Title:           getEnv("GATEWAY_TITLE", defaults.Title),
			Description:     getEnv("GATEWAY_DESCRIPTION", defaults.Description),
			MerchantID:      getEnv("GATEWAY_MERCHANT_ID", ""),
			Secret:          getEnv("GATEWAY_SECRET", ""),
			Password:        getEnv("GATEWAY_PASSWORD", ""),
			TestMode:        getEnvAsBool("GATEWAY_TESTMODE", defaults.TestMode),
			Authorize:       getEnvAsBool("GATEWAY_AUTHORIZE", defaults.Authorize),
			TaxStatus:       getEnv("GATEWAY_TAX_STATUS", defaults.TaxStatus),
			TaxClass:        getEnv("GATEWAY_TAX_CLASS", defaults.TaxClass),
			OrderButtonText: getEnv("GATEWAY_ORDER_BUTTON_TEXT", defaults.OrderButtonText),
			CartButton:      getEnvAsBool("GATEWAY_CART_BUTTON", defaults.CartButton),
			ProductButton:   getEnvAsBool("GATEWAY_PRODUCT_BUTTON", defaults.ProductButton),
			InstantCheckout: getEnvAsBool("GATEWAY_INSTANT_CHECKOUT", defaults.InstantCheckout),
			Currency:        getEnv("GATEWAY_CURRENCY", defaults.Currency),
			APIBaseURL:      getEnv("GATEWAY_API_BASE_URL", defaults.APIBaseURL),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ApplyGatewayDefaults fills zero-valued display settings with the declared
// defaults after unmarshalling persisted overrides.
func (c *Config) ApplyGatewayDefaults() {
	defaults := DefaultGatewayConfig()

	if c.Gateway.Title == "" {
		c.Gateway.Title = defaults.Title
	}
	if c.Gateway.TaxStatus == "" {
		c.Gateway.TaxStatus = defaults.TaxStatus
	}
	if c.Gateway.TaxClass == "" {
		c.Gateway.TaxClass = defaults.TaxClass
	}
	if c.Gateway.OrderButtonText == "" {
		c.Gateway.OrderButtonText = defaults.OrderButtonText
	}
	if c.Gateway.Currency == "" {
		c.Gateway.Currency = defaults.Currency
	}
	if c.Gateway.APIBaseURL == "" {
		c.Gateway.APIBaseURL = defaults.APIBaseURL
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Gateway.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("gateway config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url %s: %w", c.BaseURL, err)
	}
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

// Validate checks structural settings only. Unset merchant credentials are
// permitted: the remote API rejects them, not us.
func (c *GatewayConfig) Validate() error {
	if c.TaxStatus != TaxStatusNone && c.TaxStatus != TaxStatusTaxable {
		return fmt.Errorf("tax_status must be %q or %q", TaxStatusNone, TaxStatusTaxable)
	}
	if c.APIBaseURL == "" {
		return errors.New("api_base_url is required")
	}
	if _, err := url.Parse(c.APIBaseURL); err != nil {
		return fmt.Errorf("invalid api_base_url %s: %w", c.APIBaseURL, err)
	}
	return nil
}
