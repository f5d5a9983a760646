// Package config загружает настройки клиента: значения по умолчанию,
// YAML-файл, переменные окружения JOBTRAIL_* и флаги командной строки.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iudanet/jobtrail/internal/logging"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "JOBTRAIL"

type Config struct {
	Gateway GatewayConfig  `mapstructure:"gateway"`
	Storage StorageConfig  `mapstructure:"storage"`
	Geocode GeocodeConfig  `mapstructure:"geocode"`
	Sync    SyncConfig     `mapstructure:"sync"`
	Home    HomeConfig     `mapstructure:"home"`
	User    UserConfig     `mapstructure:"user"`
	Log     logging.Config `mapstructure:"log"`
}

type GatewayConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Token   string        `mapstructure:"token"` // Token JWT пользователя
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type GeocodeConfig struct {
	URL         string        `mapstructure:"url"`
	UserAgent   string        `mapstructure:"user_agent"`
	MinInterval time.Duration `mapstructure:"min_interval"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	CacheSize   int           `mapstructure:"cache_size"`
}

type SyncConfig struct {
	OnlineCheckInterval time.Duration `mapstructure:"online_check_interval"`
	Offline             bool          `mapstructure:"offline"` // Offline не обращаться к серверу
}

type HomeConfig struct {
	Latitude    float64 `mapstructure:"latitude"`
	Longitude   float64 `mapstructure:"longitude"`
	RadiusMiles float64 `mapstructure:"radius_miles"`
}

// IsSet reports whether home coordinates were configured
func (h HomeConfig) IsSet() bool {
	return h.Latitude != 0 || h.Longitude != 0
}

type UserConfig struct {
	ID string `mapstructure:"id"`
}

// FlagKeys maps persistent flag names to config keys
var FlagKeys = map[string]string{
	"server":    "gateway.url",
	"db":        "storage.path",
	"offline":   "sync.offline",
	"log-level": "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.url", "http://localhost:8080")
	v.SetDefault("gateway.api_key", "")
	v.SetDefault("gateway.token", "")
	v.SetDefault("gateway.timeout", "30s")
	v.SetDefault("storage.path", "jobtrail.db")
	v.SetDefault("geocode.url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "jobtrail/1.0")
	v.SetDefault("geocode.min_interval", "1s")
	v.SetDefault("geocode.cache_ttl", "168h")
	v.SetDefault("geocode.cache_size", 1000)
	v.SetDefault("sync.online_check_interval", "30s")
	v.SetDefault("sync.offline", false)
	v.SetDefault("home.latitude", 0.0)
	v.SetDefault("home.longitude", 0.0)
	v.SetDefault("home.radius_miles", 25.0)
	v.SetDefault("user.id", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatText)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
}

// Load reads the configuration. An empty path skips the config file.
// Flags that were set on the command line override every other source.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would break the client at runtime
func (c Config) Validate() error {
	var errs []error
	if c.Gateway.URL == "" {
		errs = append(errs, errors.New("gateway.url is required"))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if c.Geocode.MinInterval < 0 {
		errs = append(errs, errors.New("geocode.min_interval must not be negative"))
	}
	if c.Geocode.CacheSize <= 0 {
		errs = append(errs, errors.New("geocode.cache_size must be positive"))
	}
	if c.Home.Latitude < -90 || c.Home.Latitude > 90 || c.Home.Longitude < -180 || c.Home.Longitude > 180 {
		errs = append(errs, errors.New("home coordinates are out of range"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// UserID returns user.id, falling back to the sub claim of the gateway
// token. The token signature is checked by the backend, not here.
func (c Config) UserID() (string, error) {
	if c.User.ID != "" {
		return c.User.ID, nil
	}
	if c.Gateway.Token == "" {
		return "", errors.New("user is not configured: set user.id or gateway.token")
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Gateway.Token, &claims); err != nil {
		return "", fmt.Errorf("failed to parse gateway token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("gateway token has no sub claim")
	}
	return claims.Subject, nil
}
