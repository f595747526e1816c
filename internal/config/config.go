package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvFile is read before the environment, without overriding variables
// that are already set.
const EnvFile = ".env.epo"

type Config struct {
	Log       Log       `mapstructure:"log"       validate:"required"`
	Telemetry Telemetry `mapstructure:"telemetry" validate:"required"`
	OPS       OPS       `mapstructure:"ops"       validate:"required"`
	Server    Server    `mapstructure:"server"    validate:"required"`
	Cache     Cache     `mapstructure:"cache"`
	Throttle  Throttle  `mapstructure:"throttle"`
}

type Log struct {
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogDir   string `mapstructure:"log_dir"`
}

type Telemetry struct {
	Enabled     bool              `mapstructure:"enabled"`
	Exporter    string            `mapstructure:"exporter"     validate:"omitempty,oneof=otlp stdout none"`
	Endpoint    string            `mapstructure:"endpoint"`
	Protocol    string            `mapstructure:"protocol"     validate:"omitempty,oneof=grpc http"`
	Insecure    bool              `mapstructure:"insecure"`
	Headers     map[string]string `mapstructure:"headers"`
	ServiceName string            `mapstructure:"service_name"`
}

// OPS holds the EPO Open Patent Services credentials. Key and secret may be
// empty; requests then fail with an authentication error.
type OPS struct {
	Key              string        `mapstructure:"key"`
	Secret           string        `mapstructure:"secret"`
	BaseURL          string        `mapstructure:"base_url"          validate:"required,url"`
	Timeout          time.Duration `mapstructure:"timeout"           validate:"required,gt=0"`
	AttachMiddleware bool          `mapstructure:"attach_middleware"`
}

type Server struct {
	Host      string `mapstructure:"host"      validate:"required"`
	Port      int    `mapstructure:"port"      validate:"min=1,max=65535"`
	Transport string `mapstructure:"transport" validate:"required,oneof=stdio http sse"`
	Path      string `mapstructure:"path"      validate:"required,startswith=/"`
}

type Cache struct {
	Enabled  bool          `mapstructure:"enabled"`
	Backend  string        `mapstructure:"backend"   validate:"oneof=sqlite redis"`
	Path     string        `mapstructure:"path"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"       validate:"gte=0"`
}

type Throttle struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"min=1"`
}

// Addr is the listen address of the http and sse transports.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// legacyEnv maps keys to the unprefixed variable names earlier deployments used.
var legacyEnv = map[string]string{
	"server.host":   "SERVER_HOST",
	"server.port":   "SERVER_PORT",
	"cache.enabled": "CACHE_ENABLED",
	"cache.path":    "CACHE_PATH",
}

// Load reads configuration from defaults, the optional file, the environment
// and flags, in increasing precedence. Only flags named after a dotted key
// (e.g. "server.transport", "log.log-level") are bound.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("env file %s: %w", EnvFile, err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix("EPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, "EPO_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if bindErr != nil || !strings.Contains(f.Name, ".") {
				return
			}
			bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
		if bindErr != nil {
			return Config{}, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	// Flexible file loading
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.epo-mcp")
		v.AddConfigPath("/etc/epo-mcp")
		v.SetConfigType("yaml")
	}

	// Defaults
	v.SetDefault("log.log_level", "info")
	v.SetDefault("log.log_dir", "logs")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", "none")
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.protocol", "grpc")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.service_name", "epo-mcp")
	v.SetDefault("ops.key", "")
	v.SetDefault("ops.secret", "")
	v.SetDefault("ops.base_url", "https://ops.epo.org/3.2")
	v.SetDefault("ops.timeout", time.Duration(30)*time.Second)
	v.SetDefault("ops.attach_middleware", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.path", "/mcp")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("cache.path", "/var/tmp/epo-ops-server/cache.db")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("throttle.requests_per_minute", 30)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config read error: %w", err)
		}
		// Not found is ok, use defaults/env
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal error: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("validation failed: %w", err)
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.Exporter == "otlp" && cfg.Telemetry.Endpoint == "" {
		return Config{}, fmt.Errorf("telemetry.endpoint is required when using otlp exporter")
	}
	if cfg.Cache.Enabled {
		switch {
		case cfg.Cache.Backend == "sqlite" && cfg.Cache.Path == "":
			return Config{}, fmt.Errorf("cache.path is required for the sqlite cache")
		case cfg.Cache.Backend == "redis" && cfg.Cache.RedisURL == "":
			return Config{}, fmt.Errorf("cache.redis_url is required for the redis cache")
		}
	}
	return cfg, nil
}
