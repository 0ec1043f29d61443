package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Config struct {
	Mode        string   `mapstructure:"mode"`
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	LogLevel    string   `mapstructure:"log_level"`
	Secret      string   `mapstructure:"secret"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`

	DefaultCapacity  int  `mapstructure:"default_capacity"`
	MaxCapacity      int  `mapstructure:"max_capacity"`
	RoomIDLength     int  `mapstructure:"room_id_length"`
	HostReassignment bool `mapstructure:"host_reassignment"`

	ReaperInterval  time.Duration `mapstructure:"reaper_interval"`
	ReaperRetention time.Duration `mapstructure:"reaper_retention"`

	SignalRate         float64 `mapstructure:"signal_rate"`
	SignalBurst        int     `mapstructure:"signal_burst"`
	MaxPayloadBytes    int     `mapstructure:"max_payload_bytes"`
	BackpressurePolicy string  `mapstructure:"backpressure_policy"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	ICEServers []ICEServer `mapstructure:"ice_servers"`
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "")
	v.SetDefault("cors_origins", []string{"*"})

	v.SetDefault("read_limit", 64*1024)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)

	v.SetDefault("default_capacity", 20)
	v.SetDefault("max_capacity", 100)
	v.SetDefault("room_id_length", 10)
	v.SetDefault("host_reassignment", true)

	v.SetDefault("reaper_interval", "5m")
	v.SetDefault("reaper_retention", "5m")

	v.SetDefault("signal_rate", 50.0)
	v.SetDefault("signal_burst", 100)
	v.SetDefault("max_payload_bytes", 48*1024)
	v.SetDefault("backpressure_policy", "kick")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
}

// Load reads file, or config/config.<CONFIG_ENV>.yaml when file is empty.
// Only the implicit file may be absent, in which case defaults apply.
// RENDEZVOUS_*
// environment variables. PORT and HOST are honoured as well.
// v may carry flag bindings; nil means a fresh instance.
func Load(v *viper.Viper, file string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetConfigType("yaml")

	explicit := file != ""
	if !explicit {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		file = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(file)

	setDefaults(v)

	v.SetEnvPrefix("RENDEZVOUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("port", "RENDEZVOUS_PORT", "PORT")
	_ = v.BindEnv("host", "RENDEZVOUS_HOST", "HOST")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
		log.Warn().Str("module", "config").Str("file", file).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", file).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Str("addr", cfg.Addr()).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DefaultCapacity < 1 {
		errs = append(errs, errors.New("default_capacity must be positive"))
	}
	if c.MaxCapacity < c.DefaultCapacity {
		errs = append(errs, errors.New("max_capacity must not be below default_capacity"))
	}
	if c.RoomIDLength < 6 {
		errs = append(errs, errors.New("room_id_length must be at least 6"))
	}
	if c.ReaperInterval <= 0 || c.ReaperRetention < 0 {
		errs = append(errs, errors.New("reaper_interval must be positive and reaper_retention non-negative"))
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		errs = append(errs, errors.New("ping_period must be positive and shorter than pong_wait"))
	}
	if c.WriteWait <= 0 {
		errs = append(errs, errors.New("write_wait must be positive"))
	}
	if c.SendBuffer < 1 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.SignalRate <= 0 || c.SignalBurst < 1 {
		errs = append(errs, errors.New("signal_rate and signal_burst must be positive"))
	}
	if c.MaxPayloadBytes < 1 || int64(c.MaxPayloadBytes) > c.ReadLimit {
		errs = append(errs, errors.New("max_payload_bytes must be positive and within read_limit"))
	}
	for _, o := range c.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Errorf("cors origin %q must be * or an http(s) origin", o))
		}
	}
	switch c.BackpressurePolicy {
	case "kick", "drop":
	default:
		errs = append(errs, fmt.Errorf("unknown backpressure_policy %q", c.BackpressurePolicy))
	}
	return errors.Join(errs...)
}
