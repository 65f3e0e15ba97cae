package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pmmstack/pmm-engine/internal/engine"
	"github.com/pmmstack/pmm-engine/internal/models"
)

// Config captures the settings required to boot the monitoring engine.
type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Logging   LoggingConfig       `yaml:"logging"`
	Retention RetentionConfig     `yaml:"retention"`
	Detection DetectionConfig     `yaml:"detection"`
	Bands     []models.MetricBand `yaml:"bands"`
	SLA       engine.SLATargets   `yaml:"sla"`
	Cache     CacheConfig         `yaml:"cache"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// RetentionConfig bounds the in-memory record stores.
type RetentionConfig struct {
	MetricWindow  time.Duration `yaml:"metricWindow"`
	AlertWindow   time.Duration `yaml:"alertWindow"`
	SnapshotLimit int           `yaml:"snapshotLimit"`
	ActivityLimit int           `yaml:"activityLimit"`
}

// DetectionConfig tunes the signal detection algorithms and scheduling.
type DetectionConfig struct {
	AnomalyZScore    float64       `yaml:"anomalyZScore"`
	TrendChangePct   float64       `yaml:"trendChangePct"`
	PatternRunLength int           `yaml:"patternRunLength"`
	Window           time.Duration `yaml:"window"`
	Interval         time.Duration `yaml:"interval"`
	OnIngest         bool          `yaml:"onIngest"`
}

// CacheConfig controls Redis-backed caching of aggregate queries.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	AnalyticsTTL time.Duration `yaml:"analyticsTTL"`
	SLATTL       time.Duration `yaml:"slaTTL"`
}

// Load initialises Config from a YAML file plus environment overrides. A
// .env file in the working directory is honoured when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("PMM_ENGINE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validateBands(cfg.Bands); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    15 * time.Second,
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Retention: RetentionConfig{
			MetricWindow:  24 * time.Hour,
			AlertWindow:   24 * time.Hour,
			SnapshotLimit: 1000,
			ActivityLimit: 10000,
		},
		Detection: DetectionConfig{
			AnomalyZScore:    2.0,
			TrendChangePct:   0.15,
			PatternRunLength: 4,
			Window:           time.Hour,
			Interval:         time.Minute,
			OnIngest:         false,
		},
		Bands: defaultBands(),
		SLA:   engine.DefaultSLATargets(),
		Cache: CacheConfig{
			Enabled:      false,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
			AnalyticsTTL: 30 * time.Second,
			SLATTL:       30 * time.Second,
		},
	}
}

func defaultBands() []models.MetricBand {
	return []models.MetricBand{
		{MetricName: "response_accuracy", Target: 0.95, AlertThreshold: 0.90, CriticalThreshold: 0.85, Direction: models.HigherIsBetter},
		{MetricName: "hallucination_rate", Target: 0.01, AlertThreshold: 0.05, CriticalThreshold: 0.10, Direction: models.LowerIsBetter},
		{MetricName: "user_satisfaction", Target: 4.0, AlertThreshold: 3.0, CriticalThreshold: 2.0, Direction: models.HigherIsBetter},
		{MetricName: "error_rate", Target: 0.5, AlertThreshold: 1.0, CriticalThreshold: 5.0, Direction: models.LowerIsBetter},
		{MetricName: "response_time", Target: 200, AlertThreshold: 500, CriticalThreshold: 2000, Direction: models.LowerIsBetter},
	}
}

func validateBands(bands []models.MetricBand) error {
	for _, b := range bands {
		if b.MetricName == "" {
			return fmt.Errorf("band with empty metric name")
		}
		switch b.Direction {
		case models.HigherIsBetter, models.LowerIsBetter:
		default:
			return fmt.Errorf("band %s: unknown direction %q", b.MetricName, b.Direction)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PMM_ENGINE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("PMM_ENGINE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("PMM_ENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PMM_ENGINE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("PMM_ENGINE_METRIC_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retention.MetricWindow = d
		}
	}
	if v := os.Getenv("PMM_ENGINE_DETECTION_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Detection.Window = d
		}
	}
	if v := os.Getenv("PMM_ENGINE_DETECTION_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Detection.Interval = d
		}
	}
	if v := os.Getenv("PMM_ENGINE_DETECTION_ON_INGEST"); v != "" {
		cfg.Detection.OnIngest = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("PMM_ENGINE_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("PMM_ENGINE_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("PMM_ENGINE_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("PMM_ENGINE_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("PMM_ENGINE_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("PMM_ENGINE_CACHE_ANALYTICS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.AnalyticsTTL = d
		}
	}
	if v := os.Getenv("PMM_ENGINE_CACHE_SLA_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.SLATTL = d
		}
	}
}
