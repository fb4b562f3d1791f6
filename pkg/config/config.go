package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"frustration-engine/pkg/errors"
)

// Config is the root engine configuration, populated from environment
// variables with an optional .env file.
type Config struct {
	HTTP       HTTPConfig
	Classifier ClassifierConfig
	Monitor    MonitorConfig
	AMQP       AMQPConfig
	Logging    LoggingConfig
}

// HTTPConfig configures the HTTP surface (websocket meters, metrics, health).
type HTTPConfig struct {
	ListenAddr     string
	MetricsEnabled bool
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// ClassifierConfig configures fusion weights and the intervention threshold.
type ClassifierConfig struct {
	TextWeight            float64
	TimingWeight          float64
	ProsodyWeight         float64
	InterventionThreshold float64
	// PatternTablePath points to an optional YAML overlay extending the
	// built-in locale pattern tables
	PatternTablePath string
}

// MonitorConfig configures the realtime prosody monitor cadence.
type MonitorConfig struct {
	SampleRate      int
	ProbeInterval   time.Duration
	AnalysisWindow  time.Duration
	RetainSeconds   float64
	TrimSeconds     float64
	SmoothingFactor float64
}

// AMQPConfig configures the optional classification event publisher.
type AMQPConfig struct {
	URL        string
	QueueName  string
	RoutingKey string
	Durable    bool
}

// LoggingConfig configures logrus output.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load reads configuration from the environment, loading a .env file first
// if one is present. Missing variables fall back to defaults; Load fails
// only on values that cannot express a working engine.
func Load(logger *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	} else {
		logger.Debug("No .env file found, using environment variables only")
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			ListenAddr:     getEnv("HTTP_LISTEN_ADDR", ":8080"),
			MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
			ReadTimeout:    getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		},
		Classifier: ClassifierConfig{
			TextWeight:            getEnvFloat("FUSION_TEXT_WEIGHT", 0.4),
			TimingWeight:          getEnvFloat("FUSION_TIMING_WEIGHT", 0.3),
			ProsodyWeight:         getEnvFloat("FUSION_PROSODY_WEIGHT", 0.3),
			InterventionThreshold: getEnvFloat("INTERVENTION_THRESHOLD", 0.6),
			PatternTablePath:      getEnv("PATTERN_TABLE_PATH", ""),
		},
		Monitor: MonitorConfig{
			SampleRate:      getEnvInt("MONITOR_SAMPLE_RATE", 16000),
			ProbeInterval:   getEnvDuration("MONITOR_PROBE_INTERVAL", 100*time.Millisecond),
			AnalysisWindow:  getEnvDuration("MONITOR_ANALYSIS_WINDOW", 2*time.Second),
			RetainSeconds:   getEnvFloat("MONITOR_RETAIN_SECONDS", 10),
			TrimSeconds:     getEnvFloat("MONITOR_TRIM_SECONDS", 2),
			SmoothingFactor: getEnvFloat("MONITOR_SMOOTHING_FACTOR", 0.3),
		},
		AMQP: AMQPConfig{
			URL:        getEnv("AMQP_URL", ""),
			QueueName:  getEnv("AMQP_QUEUE_NAME", "frustration_events"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", ""),
			Durable:    getEnvBool("AMQP_DURABLE", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	w := c.Classifier
	if w.TextWeight < 0 || w.TimingWeight < 0 || w.ProsodyWeight < 0 {
		return errors.New("fusion weights must be non-negative")
	}
	if w.TextWeight+w.TimingWeight+w.ProsodyWeight <= 0 {
		return errors.New("at least one fusion weight must be positive")
	}
	if w.InterventionThreshold <= 0 || w.InterventionThreshold > 1 {
		return errors.New("intervention threshold must be in (0, 1]")
	}
	if c.Monitor.SampleRate <= 0 {
		return errors.New("monitor sample rate must be positive")
	}
	if c.Monitor.ProbeInterval <= 0 || c.Monitor.AnalysisWindow <= 0 {
		return errors.New("monitor intervals must be positive")
	}
	if c.Monitor.AnalysisWindow < c.Monitor.ProbeInterval {
		return errors.New("analysis window must not be shorter than the probe interval")
	}
	if c.Monitor.SmoothingFactor <= 0 || c.Monitor.SmoothingFactor > 1 {
		return errors.New("smoothing factor must be in (0, 1]")
	}
	if c.Monitor.TrimSeconds > c.Monitor.RetainSeconds {
		return errors.New("trim seconds must not exceed retain seconds")
	}
	if c.HTTP.ListenAddr == "" {
		return errors.New("HTTP listen address must not be empty")
	}
	if c.Classifier.PatternTablePath != "" {
		if _, err := os.Stat(c.Classifier.PatternTablePath); err != nil {
			return errors.Wrap(err, "pattern table overlay not readable",
				map[string]interface{}{"path": c.Classifier.PatternTablePath})
		}
	}
	return nil
}

// LogLevel parses the configured level, defaulting to info.
func (c *LoggingConfig) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "yes", "1", "on":
		return true
	case "false", "no", "0", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
