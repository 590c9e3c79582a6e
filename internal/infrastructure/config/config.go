// Package config loads wizardd settings from an optional YAML file, a .env
// file and WIZARD_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/pkg/kafka"
	"github.com/ctateo21/homelead/pkg/observability"
	"github.com/ctateo21/homelead/pkg/postgres"
	"github.com/ctateo21/homelead/pkg/tlsutil"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreBadger   = "badger"
	StoreMemory   = "memory"
)

// Config holds all configuration for the wizard service.
type Config struct {
	ServiceName string          `mapstructure:"service_name"`
	GRPC        GRPCConfig      `mapstructure:"grpc"`
	HTTP        HTTPConfig      `mapstructure:"http"`
	DB          DatabaseConfig  `mapstructure:"db"`
	Store       StoreConfig     `mapstructure:"store"`
	Kafka       KafkaConfig     `mapstructure:"kafka"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Log         LogConfig       `mapstructure:"log"`
	TLS         TLSConfig       `mapstructure:"tls"`
	Calc        CalcConfig      `mapstructure:"calc"`
	Geocode     GeocodeConfig   `mapstructure:"geocode"`
	Writer      WriterConfig    `mapstructure:"writer"`
	Sinks       SinksConfig     `mapstructure:"sinks"`
}

type GRPCConfig struct {
	Port       int  `mapstructure:"port"`
	Reflection bool `mapstructure:"reflection"`
}

// HTTPConfig configures the REST listener.
type HTTPConfig struct {
	CORSOrigins []string `mapstructure:"cors_origins"`
	Port        int      `mapstructure:"port"`
	RateRPS     float64  `mapstructure:"rate_rps"`
	RateBurst   int      `mapstructure:"rate_burst"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Port     int    `mapstructure:"port"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// StoreConfig selects the step repository.
type StoreConfig struct {
	Backend   string `mapstructure:"backend"`
	BadgerDir string `mapstructure:"badger_dir"`
}

// KafkaConfig holds broker addresses and topic names.
type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	EventsTopic string   `mapstructure:"events_topic"`
	LeadsTopic  string   `mapstructure:"leads_topic"`
	Group       string   `mapstructure:"group"`
	Enabled     bool     `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TLSConfig struct {
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
	CAFile   string `mapstructure:"ca_file"`
}

// CalcConfig carries the calculator defaults as decimal strings so YAML and
// env values keep their exact precision.
type CalcConfig struct {
	DefaultRatePct     string `mapstructure:"default_rate_pct"`
	ClosingCostPct     string `mapstructure:"closing_cost_pct"`
	InsurancePct       string `mapstructure:"insurance_pct"`
	MillageRate        string `mapstructure:"millage_rate"`
	HomesteadExemption string `mapstructure:"homestead_exemption"`
	DefaultTermYears   int    `mapstructure:"default_term_years"`
}

// GeocodeConfig configures the address lookup client. An empty BaseURL
// selects the offline stub.
type GeocodeConfig struct {
	BaseURL string  `mapstructure:"base_url"`
	APIKey  string  `mapstructure:"api_key"`
	RPS     float64 `mapstructure:"rps"`
}

// WriterConfig tunes the asynchronous step writer.
type WriterConfig struct {
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	MaxRetries  int           `mapstructure:"max_retries"`
	BaseBackoff time.Duration `mapstructure:"base_backoff"`
}

// SinksConfig holds CRM endpoints. An empty URL makes the sink log leads
// instead of posting them.
type SinksConfig struct {
	AriveURL        string `mapstructure:"arive_url"`
	NetCalcSheetURL string `mapstructure:"netcalcsheet_url"`
	CanopyURL       string `mapstructure:"canopy_url"`
}

// Load reads configuration. configFile may be empty; a missing .env file is
// not an error.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("WIZARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := service.DefaultCalculatorConfig()

	v.SetDefault("service_name", "wizard-service")
	v.SetDefault("grpc.port", 50051)
	v.SetDefault("grpc.reflection", false)
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.rate_rps", 20.0)
	v.SetDefault("http.rate_burst", 40)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "homelead")
	v.SetDefault("db.password", "homelead")
	v.SetDefault("db.name", "wizard")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("store.backend", StoreMemory)
	v.SetDefault("store.badger_dir", filepath.Join(xdg.DataHome, "homelead"))
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.events_topic", "wizard.events")
	v.SetDefault("kafka.leads_topic", "wizard.leads")
	v.SetDefault("kafka.group", "wizard-lead-forwarder")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
	v.SetDefault("tls.ca_file", "")
	v.SetDefault("calc.default_rate_pct", def.DefaultRatePct.String())
	v.SetDefault("calc.default_term_years", def.DefaultTermYears)
	v.SetDefault("calc.closing_cost_pct", def.ClosingCostPct.String())
	v.SetDefault("calc.insurance_pct", def.InsurancePct.String())
	v.SetDefault("calc.millage_rate", def.MillageRate.String())
	v.SetDefault("calc.homestead_exemption", def.HomesteadExemption.String())
	v.SetDefault("geocode.base_url", "")
	v.SetDefault("geocode.api_key", "")
	v.SetDefault("geocode.rps", 5.0)
	v.SetDefault("writer.workers", 4)
	v.SetDefault("writer.queue_size", 256)
	v.SetDefault("writer.max_retries", 5)
	v.SetDefault("writer.base_backoff", 100*time.Millisecond)
	v.SetDefault("sinks.arive_url", "")
	v.SetDefault("sinks.netcalcsheet_url", "")
	v.SetDefault("sinks.canopy_url", "")
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StorePostgres, StoreBadger, StoreMemory:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if _, err := c.CalculatorConfig(); err != nil {
		return err
	}
	if c.Writer.Workers <= 0 {
		return fmt.Errorf("config: writer.workers must be positive, got %d", c.Writer.Workers)
	}
	return nil
}

// GRPCAddr returns the gRPC listen address.
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPC.Port)
}

// HTTPAddr returns the HTTP listen address.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}

// Postgres maps the DB section onto the pool config.
func (c *Config) Postgres() postgres.Config {
	return postgres.Config{
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		User:     c.DB.User,
		Password: c.DB.Password,
		Database: c.DB.Name,
		SSLMode:  c.DB.SSLMode,
		MaxConns: c.DB.MaxConns,
	}
}

func (c *Config) KafkaClient() kafka.Config {
	return kafka.Config{
		Brokers:       c.Kafka.Brokers,
		ClientID:      c.ServiceName,
		ConsumerGroup: c.Kafka.Group,
	}
}

func (c *Config) Logging() observability.LogConfig {
	return observability.LogConfig{
		Level:   c.Log.Level,
		Format:  c.Log.Format,
		Service: c.ServiceName,
	}
}

func (c *Config) Tracing() observability.TracingConfig {
	return observability.TracingConfig{
		ServiceName: c.ServiceName,
		Endpoint:    c.Telemetry.OTLPEndpoint,
		Insecure:    c.Telemetry.Insecure,
	}
}

func (c *Config) TLSFiles() tlsutil.Config {
	return tlsutil.Config{
		CertFile: c.TLS.CertFile,
		KeyFile:  c.TLS.KeyFile,
		CAFile:   c.TLS.CAFile,
	}
}

// CalculatorConfig parses the Calc section.
func (c *Config) CalculatorConfig() (service.CalculatorConfig, error) {
	out := service.CalculatorConfig{DefaultTermYears: c.Calc.DefaultTermYears}
	fields := []struct {
		dst  *decimal.Decimal
		name string
		raw  string
	}{
		{&out.DefaultRatePct, "calc.default_rate_pct", c.Calc.DefaultRatePct},
		{&out.ClosingCostPct, "calc.closing_cost_pct", c.Calc.ClosingCostPct},
		{&out.InsurancePct, "calc.insurance_pct", c.Calc.InsurancePct},
		{&out.MillageRate, "calc.millage_rate", c.Calc.MillageRate},
		{&out.HomesteadExemption, "calc.homestead_exemption", c.Calc.HomesteadExemption},
	}

	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return service.CalculatorConfig{}, fmt.Errorf("config: %s: %w", f.name, err)
		}
		*f.dst = d
	}
	if out.DefaultTermYears <= 0 {
		return service.CalculatorConfig{}, fmt.Errorf("config: calc.default_term_years must be positive")
	}
	return out, nil
}
