package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	GinMode     string   `mapstructure:"ginMode"`
	Env         string   `mapstructure:"env"`
	CORSOrigins []string `mapstructure:"corsOrigins"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslMode"`
}

// DSN prefers an explicit URL and otherwise assembles a key/value DSN from the
// individual connection settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type WorkflowConfig struct {
	LockClosed bool `mapstructure:"lockClosed"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

var envBindings = map[string]string{
	"server.port":         "PORT",
	"server.ginMode":      "GIN_MODE",
	"server.env":          "ENV",
	"server.corsOrigins":  "CORS_ORIGIN",
	"database.driver":     "DB_DRIVER",
	"database.url":        "DATABASE_URL",
	"database.host":       "DB_HOST",
	"database.user":       "DB_USER",
	"database.password":   "DB_PASSWORD",
	"database.name":       "DB_NAME",
	"database.port":       "DB_PORT",
	"database.sslMode":    "DB_SSLMODE",
	"jwt.secret":          "JWT_SECRET",
	"log.level":           "LOG_LEVEL",
	"log.file":            "LOG_FILE",
	"redis.addr":          "REDIS_ADDR",
	"redis.password":      "REDIS_PASSWORD",
	"redis.db":            "REDIS_DB",
	"redis.channel":       "EVENTS_CHANNEL",
	"workflow.lockClosed": "WORKFLOW_LOCK_CLOSED",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.ginMode", "debug")
	v.SetDefault("server.env", "local")
	v.SetDefault("server.corsOrigins", []string{"http://localhost:5173"})
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("redis.channel", "complaints.events")
	v.SetDefault("workflow.lockClosed", false)
}

// Load reads .env (if present), then <path>/config.yaml (if present), and
// lets environment variables override both.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Server.CORSOrigins = splitOrigins(cfg.Server.CORSOrigins)

	return &cfg, nil
}

// splitOrigins accepts both a YAML list and a comma separated CORS_ORIGIN value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
