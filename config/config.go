package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
}

type ServerConfig struct {
	Address  string `mapstructure:"address"`
	HTTPPort string `mapstructure:"http_port"`
}

type DatabaseConfig struct {
	// "mysql" | "postgres" | "sqlite"
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	// gorm logger: silent | error | warn | info
	LogLevel string `mapstructure:"log_level"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
	File   string `mapstructure:"file"`
}

// IdentityConfig — внешний провайдер (WordPress JWT Auth).
type IdentityConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BaseURL      string        `mapstructure:"base_url"`
	TokenPath    string        `mapstructure:"token_path"`
	UserInfoPath string        `mapstructure:"user_info_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryCount   int           `mapstructure:"retry_count"`
}

// SchedulingConfig задаёт политики удаления для владельцев задач.
type SchedulingConfig struct {
	// cascade | orphan | restrict
	ScheduleDeletePolicy string `mapstructure:"schedule_delete_policy"`
	// cascade | restrict
	DeviceDeletePolicy string `mapstructure:"device_delete_policy"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8080")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	v.SetDefault("identity.enabled", true)
	v.SetDefault("identity.base_url", "https://petsfans.ru")
	v.SetDefault("identity.token_path", "/wp-json/jwt-auth/v1/token")
	v.SetDefault("identity.user_info_path", "/wp-json/wp/v2/users/me")
	v.SetDefault("identity.timeout", 10*time.Second)
	v.SetDefault("identity.retry_count", 2)

	v.SetDefault("scheduling.schedule_delete_policy", "cascade")
	v.SetDefault("scheduling.device_delete_policy", "cascade")
}

// Load читает конфиг из файла (если задан) и переменных окружения FEEDHUB_*.
// Пример: FEEDHUB_DATABASE_DSN, FEEDHUB_SERVER_HTTP_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("feedhub")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("feedhub")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/feedhub")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Scheduling.ScheduleDeletePolicy {
	case "cascade", "orphan", "restrict":
	default:
		return fmt.Errorf("scheduling.schedule_delete_policy: unsupported value %q", c.Scheduling.ScheduleDeletePolicy)
	}
	switch c.Scheduling.DeviceDeletePolicy {
	case "cascade", "restrict":
	default:
		return fmt.Errorf("scheduling.device_delete_policy: unsupported value %q", c.Scheduling.DeviceDeletePolicy)
	}
	if c.Identity.Enabled && c.Identity.BaseURL == "" {
		return errors.New("identity.base_url is required when identity is enabled")
	}
	return nil
}
