package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	ETL        ETLConfig        `yaml:"etl" mapstructure:"etl"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	Username     string  `yaml:"username" mapstructure:"username"`
	KeyPath      string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL     string  `yaml:"login_url" mapstructure:"login_url"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// ETLConfig configures the extraction run.
type ETLConfig struct {
	DaysBack             int `yaml:"days_back" mapstructure:"days_back"`
	Concurrency          int `yaml:"concurrency" mapstructure:"concurrency"`
	HighQualityThreshold int `yaml:"high_quality_threshold" mapstructure:"high_quality_threshold"`
}

// ValidationConfig configures the local validation rules.
type ValidationConfig struct {
	DefaultRegion   string   `yaml:"default_region" mapstructure:"default_region"`
	RequiredFields  []string `yaml:"required_fields" mapstructure:"required_fields"`
	ImportantFields []string `yaml:"important_fields" mapstructure:"important_fields"`
	CommonDomains   []string `yaml:"common_domains" mapstructure:"common_domains"`
	// IndicatorsPath points at a YAML file of fraud indicator overrides.
	IndicatorsPath string `yaml:"indicators_path" mapstructure:"indicators_path"`
}

// ServerConfig configures the reporting API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.rate_limit_rps", 10)
	v.SetDefault("etl.days_back", 30)
	v.SetDefault("etl.concurrency", 8)
	v.SetDefault("etl.high_quality_threshold", 7)
	v.SetDefault("validation.default_region", "US")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields the given mode depends on. Modes map to the
// top-level commands: "etl", "serve", and "export" need a database; "etl"
// additionally needs Salesforce credentials unless running parse-only.
func (c *Config) Validate(mode string) error {
	var problems []string

	needDB := func() {
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
		if c.Store.Driver != "postgres" && c.Store.Driver != "sqlite" {
			problems = append(problems, "store.driver must be postgres or sqlite")
		}
	}

	needSF := func() {
		if c.Salesforce.ClientID == "" {
			problems = append(problems, "salesforce.client_id is required")
		}
		if c.Salesforce.Username == "" {
			problems = append(problems, "salesforce.username is required")
		}
		if c.Salesforce.KeyPath == "" {
			problems = append(problems, "salesforce.key_path is required")
		}
	}

	switch mode {
	case "etl":
		needDB()
		needSF()
	case "etl-local", "export", "runs":
		needDB()
	case "serve":
		needDB()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "validate":
		// Runs entirely offline against a CSV.
	case "validate-sf":
		// Pulls leads from Salesforce but never touches the store.
		needSF()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if mode == "etl" || mode == "etl-local" {
		if c.ETL.Concurrency < 1 || c.ETL.Concurrency > 64 {
			problems = append(problems, "etl.concurrency must be between 1 and 64")
		}
		if c.ETL.DaysBack < 0 {
			problems = append(problems, "etl.days_back must be >= 0")
		}
		if c.ETL.HighQualityThreshold < 1 || c.ETL.HighQualityThreshold > 10 {
			problems = append(problems, "etl.high_quality_threshold must be between 1 and 10")
		}
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
