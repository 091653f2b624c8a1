package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cache store kinds accepted by CACHE_STORE.
const (
	StoreMemcached = "memcached"
	StoreRedis     = "redis"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"
	StoreNone      = "none"
)

type Config struct {
	Env               string        `yaml:"env" validate:"required,oneof=development production test"`
	LogLevel          string        `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	Port              int           `yaml:"port" validate:"gt=0,lte=65535"`
	StaticDir         string        `yaml:"static_dir"`
	MarkComputedTiles bool          `yaml:"mark_computed_tiles"`
	Cache             CacheConfig   `yaml:"cache"`
	Transit           TransitConfig `yaml:"transit"`
}

type CacheConfig struct {
	Store        string `yaml:"store" validate:"omitempty,oneof=memcached redis postgres memory none"`
	TTLSeconds   int    `yaml:"ttl_seconds" validate:"gt=0"`
	MemcachedURL string `yaml:"memcached_url"`
	RedisURL     string `yaml:"redis_url" validate:"omitempty,url"`
	DatabaseURL  string `yaml:"database_url"`
	MemorySize   int    `yaml:"memory_size" validate:"gte=0"`
}

type TransitConfig struct {
	Timezone         string      `yaml:"timezone" validate:"required"`
	Timeout          string      `yaml:"timeout" validate:"required"`
	VRRTripURL       string      `yaml:"vrr_trip_url" validate:"required,url"`
	VRRStopFinderURL string      `yaml:"vrr_stop_finder_url" validate:"required,url"`
	OTPURL           string      `yaml:"otp_url" validate:"omitempty,url"`
	HAFAS            HAFASConfig `yaml:"hafas"`
}

type HAFASConfig struct {
	URL        string `yaml:"url" validate:"omitempty,url"`
	Salt       string `yaml:"salt"`
	ClientID   string `yaml:"client_id"`
	ClientType string `yaml:"client_type"`
	ClientName string `yaml:"client_name"`
	AuthAID    string `yaml:"aid" validate:"required_with=URL"`
	Version    string `yaml:"version"`
	Ext        string `yaml:"ext"`
}

func Default() Config {
	return Config{
		Env:      "development",
		LogLevel: "info",
		Port:     8080,
		Cache: CacheConfig{
			TTLSeconds: 7 * 24 * 60 * 60,
		},
		Transit: TransitConfig{
			Timezone:         "Europe/Berlin",
			Timeout:          "20s",
			VRRTripURL:       "http://openservice-test.vrr.de/static03/XML_TRIP_REQUEST2",
			VRRStopFinderURL: "http://www.vrr.de/vrr-efa/XML_STOPFINDER_REQUEST",
			OTPURL:           "http://localhost:8080/otp/routers/default/index/graphql",
		},
	}
}

// Get returns the environment variable key, or fallback when it is unset
// or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv loads .env into the process environment when present.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE and the environment, in increasing precedence.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Cache.Store == "" {
		cfg.Cache.Store = inferStore(cfg.Cache)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.TransitTimeout(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.Cache.Store {
	case StoreMemcached:
		if c.Cache.MemcachedURL == "" {
			return errors.New("invalid config: MEMCACHED_URL is required for the memcached store")
		}
	case StoreRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("invalid config: REDIS_URL is required for the redis store")
		}
	case StorePostgres:
		if c.Cache.DatabaseURL == "" {
			return errors.New("invalid config: DATABASE_URL is required for the postgres store")
		}
	}
	return nil
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Transit.Timezone)
}

func (c Config) TransitTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Transit.Timeout)
	if err != nil {
		return 0, fmt.Errorf("transit timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("transit timeout %s must be positive", d)
	}
	return d, nil
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// inferStore picks a store from whichever connection URL is configured.
func inferStore(c CacheConfig) string {
	switch {
	case c.MemcachedURL != "":
		return StoreMemcached
	case c.RedisURL != "":
		return StoreRedis
	case c.DatabaseURL != "":
		return StorePostgres
	}
	return StoreNone
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"APP_ENV":             &cfg.Env,
		"LOG_LEVEL":           &cfg.LogLevel,
		"STATIC_DIR":          &cfg.StaticDir,
		"CACHE_STORE":         &cfg.Cache.Store,
		"MEMCACHED_URL":       &cfg.Cache.MemcachedURL,
		"REDIS_URL":           &cfg.Cache.RedisURL,
		"DATABASE_URL":        &cfg.Cache.DatabaseURL,
		"TRANSIT_TIMEZONE":    &cfg.Transit.Timezone,
		"TRANSIT_TIMEOUT":     &cfg.Transit.Timeout,
		"VRR_TRIP_URL":        &cfg.Transit.VRRTripURL,
		"VRR_STOP_FINDER_URL": &cfg.Transit.VRRStopFinderURL,
		"OTP_URL":             &cfg.Transit.OTPURL,
		"HAFAS_URL":           &cfg.Transit.HAFAS.URL,
		"HAFAS_SALT":          &cfg.Transit.HAFAS.Salt,
		"HAFAS_CLIENT_ID":     &cfg.Transit.HAFAS.ClientID,
		"HAFAS_CLIENT_TYPE":   &cfg.Transit.HAFAS.ClientType,
		"HAFAS_CLIENT_NAME":   &cfg.Transit.HAFAS.ClientName,
		"HAFAS_AID":           &cfg.Transit.HAFAS.AuthAID,
		"HAFAS_VERSION":       &cfg.Transit.HAFAS.Version,
		"HAFAS_EXT":           &cfg.Transit.HAFAS.Ext,
	}
	for key, dst := range str {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PORT":              &cfg.Port,
		"CACHE_TTL_SECONDS": &cfg.Cache.TTLSeconds,
		"MEMORY_CACHE_SIZE": &cfg.Cache.MemorySize,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv("MARK_COMPUTED_TILES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MARK_COMPUTED_TILES: %w", err)
		}
		cfg.MarkComputedTiles = b
	}

	return nil
}
