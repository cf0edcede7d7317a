package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Reference location and sampling geometry.
	TargetLat    float64
	TargetLon    float64
	NeighborStep int

	// Product selection and acquisition window.
	Satellite    string
	Product      string
	DataVariable string
	WindowStart  time.Time
	WindowEnd    time.Time

	// Acquisition fetch.
	FetchTimeout time.Duration
	ScratchDir   string

	// Sink and service surface.
	KafkaBrokers    []string
	KafkaSinkTopic  string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. The acquisition window (WINDOW_START/WINDOW_END) is required.
func Load() (*Config, error) {
	targetLat, err := parseFloatEnv("TARGET_LAT", 29.7604)
	if err != nil {
		return nil, err
	}
	targetLon, err := parseFloatEnv("TARGET_LON", -95.3698)
	if err != nil {
		return nil, err
	}
	step, err := parseIntEnv("NEIGHBOR_STEP", 1)
	if err != nil {
		return nil, err
	}

	windowStart, err := parseTimeEnv("WINDOW_START")
	if err != nil {
		return nil, err
	}
	windowEnd, err := parseTimeEnv("WINDOW_END")
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDurationEnv("FETCH_TIMEOUT", "2m")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TargetLat:    targetLat,
		TargetLon:    targetLon,
		NeighborStep: step,

		Satellite:    envOrDefault("SATELLITE", "goes19"),
		Product:      envOrDefault("PRODUCT", "ABI-L2-TPWC"),
		DataVariable: envOrDefault("DATA_VARIABLE", "TPW"),
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,

		FetchTimeout: fetchTimeout,
		ScratchDir:   envOrDefault("SCRATCH_DIR", os.TempDir()),

		KafkaBrokers:    splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  envOrDefault("KAFKA_SINK_TOPIC", "sonify-channel-sets"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.TargetLat < -90 || cfg.TargetLat > 90 {
		return nil, fmt.Errorf("TARGET_LAT %v out of [-90,90]", cfg.TargetLat)
	}
	if cfg.TargetLon < -180 || cfg.TargetLon > 180 {
		return nil, fmt.Errorf("TARGET_LON %v out of [-180,180]", cfg.TargetLon)
	}
	if cfg.NeighborStep < 1 {
		return nil, fmt.Errorf("NEIGHBOR_STEP must be >= 1, got %d", cfg.NeighborStep)
	}
	if cfg.WindowStart.IsZero() || cfg.WindowEnd.IsZero() {
		return nil, errors.New("WINDOW_START and WINDOW_END are required (RFC 3339)")
	}
	if !cfg.WindowEnd.After(cfg.WindowStart) {
		return nil, errors.New("WINDOW_END must be after WINDOW_START")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.Satellite == "" || cfg.Product == "" || cfg.DataVariable == "" {
		return nil, errors.New("SATELLITE, PRODUCT, and DATA_VARIABLE must be non-empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitBrokers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloatEnv(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseIntEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseTimeEnv(key string) (time.Time, error) {
	s := os.Getenv(key)
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return ts.UTC(), nil
}
