package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type AppConfig struct {
	// Stations to poll.
	StationIDs []int  `validate:"required,min=1,dive,gt=0"`
	APIToken   string `validate:"required"`

	// ForecastHours is the default number of hourly forecast entries.
	ForecastHours int `validate:"gte=1,lte=240"`
	// Elevation overrides the station metadata elevation (0 = use metadata).
	Elevation float64

	PollInterval time.Duration `validate:"min=1s"`
	HTTPTimeout  time.Duration `validate:"min=1s"`

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // max readings per station (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of readings (0 = unlimited)

	ForecastCacheMaxAge time.Duration `validate:"gte=0"`
	StationCacheMaxAge  time.Duration `validate:"gte=0"`

	// Outbound request pacing.
	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"gte=1"`

	Port      string `validate:"required,numeric"`
	LogLevel  string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `validate:"oneof=text json"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("forecast_hours", 48)
	v.SetDefault("elevation", 0)
	v.SetDefault("poll_interval", "1m")
	v.SetDefault("http_timeout", "10s")

	v.SetDefault("store_max_history", 1440) // 24h at one-minute polling
	v.SetDefault("store_max_age", "24h")

	v.SetDefault("forecast_cache_max_age", "30m")
	v.SetDefault("station_cache_max_age", "24h")

	v.SetDefault("rate_limit_rps", 1)
	v.SetDefault("rate_limit_burst", 5)

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads configuration from .env, the optional CONFIG_FILE and the
// environment, in increasing order of precedence, and validates it.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	ids, err := parseStationIDs(v.GetStringSlice("station_id"))
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		StationIDs:          ids,
		APIToken:            strings.TrimSpace(v.GetString("api_token")),
		ForecastHours:       v.GetInt("forecast_hours"),
		Elevation:           v.GetFloat64("elevation"),
		PollInterval:        v.GetDuration("poll_interval"),
		HTTPTimeout:         v.GetDuration("http_timeout"),
		StoreMaxHistory:     v.GetInt("store_max_history"),
		StoreMaxAge:         v.GetDuration("store_max_age"),
		ForecastCacheMaxAge: v.GetDuration("forecast_cache_max_age"),
		StationCacheMaxAge:  v.GetDuration("station_cache_max_age"),
		RateLimitRPS:        v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:      v.GetInt("rate_limit_burst"),
		Port:                v.GetString("port"),
		LogLevel:            strings.ToLower(v.GetString("log_level")),
		LogFormat:           strings.ToLower(v.GetString("log_format")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parseStationIDs accepts "1001,1002" from the environment as well as a list
// from a config file.
func parseStationIDs(values []string) ([]int, error) {
	var ids []int
	seen := make(map[int]bool)
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid STATION_ID %q: %w", part, err)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
