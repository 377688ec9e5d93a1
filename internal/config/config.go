package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Config holds the node's fixed build-time configuration. Every field has a
// default; environment variables override them for bench testing without a
// rebuild.
type Config struct {
	AppEnv   string
	LogLevel slog.Level

	// IdentURL is the naming-service endpoint queried once at boot with the
	// device MAC. UploadURL is the collector's data endpoint.
	IdentURL  string
	UploadURL string
	Password  string
	MACAddr   string

	SamplePeriod time.Duration
	BatchSize    int
	BacklogLimit int

	// StatusScheme selects how probe outcomes are blinked: "morse" or "pattern".
	StatusScheme string
	VersionGlyph rune
	LEDPin       string

	SensorDriver  string
	BME280Address uint16

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string

	MetricsAddr string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	identURL := strings.TrimSpace(os.Getenv("IDENT_URL"))
	if identURL == "" {
		identURL = "http://localhost:15000/sensorname"
	}

	uploadURL := strings.TrimSpace(os.Getenv("UPLOAD_URL"))
	if uploadURL == "" {
		uploadURL = "http://localhost:15000/data"
	}

	password := strings.TrimSpace(os.Getenv("UPLOAD_PASSWORD"))
	if password == "" {
		return Config{}, fmt.Errorf("UPLOAD_PASSWORD must be set; the collector rejects unauthenticated uploads")
	}

	macAddr := strings.TrimSpace(os.Getenv("DEVICE_MAC"))

	samplePeriodStr := strings.TrimSpace(os.Getenv("SAMPLE_PERIOD"))
	if samplePeriodStr == "" {
		samplePeriodStr = "60s"
	}
	samplePeriod, err := time.ParseDuration(samplePeriodStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SAMPLE_PERIOD %q: %w", samplePeriodStr, err)
	}
	if samplePeriod <= 0 {
		return Config{}, fmt.Errorf("SAMPLE_PERIOD must be positive, got %v", samplePeriod)
	}

	batchSizeStr := strings.TrimSpace(os.Getenv("BATCH_SIZE"))
	if batchSizeStr == "" {
		batchSizeStr = "1"
	}
	batchSize, err := strconv.Atoi(batchSizeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BATCH_SIZE %q: %w", batchSizeStr, err)
	}
	if batchSize < 1 {
		return Config{}, fmt.Errorf("BATCH_SIZE must be at least 1, got %d", batchSize)
	}

	backlogLimitStr := strings.TrimSpace(os.Getenv("BACKLOG_LIMIT"))
	if backlogLimitStr == "" {
		backlogLimitStr = "11"
	}
	backlogLimit, err := strconv.Atoi(backlogLimitStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BACKLOG_LIMIT %q: %w", backlogLimitStr, err)
	}
	if backlogLimit < batchSize {
		return Config{}, fmt.Errorf("BACKLOG_LIMIT (%d) must be at least BATCH_SIZE (%d)", backlogLimit, batchSize)
	}

	statusScheme := strings.TrimSpace(os.Getenv("STATUS_SCHEME"))
	if statusScheme == "" {
		statusScheme = "morse"
	}
	switch statusScheme {
	case "morse", "pattern":
	default:
		return Config{}, fmt.Errorf("invalid STATUS_SCHEME %q (allowed: morse, pattern)", statusScheme)
	}

	versionGlyphStr := strings.TrimSpace(os.Getenv("STATUS_VERSION_GLYPH"))
	if versionGlyphStr == "" {
		versionGlyphStr = "v"
	}
	if utf8.RuneCountInString(versionGlyphStr) != 1 {
		return Config{}, fmt.Errorf("invalid STATUS_VERSION_GLYPH %q (must be a single character)", versionGlyphStr)
	}
	versionGlyph, _ := utf8.DecodeRuneInString(versionGlyphStr)

	ledPin := strings.TrimSpace(os.Getenv("LED_PIN"))

	sensorDriver := strings.TrimSpace(os.Getenv("SENSOR_DRIVER"))
	if sensorDriver == "" {
		sensorDriver = "sim"
	}
	switch sensorDriver {
	case "sim", "bme280":
	default:
		return Config{}, fmt.Errorf("invalid SENSOR_DRIVER %q (allowed: sim, bme280)", sensorDriver)
	}

	bme280AddressStr := strings.TrimSpace(os.Getenv("BME280_ADDRESS"))
	if bme280AddressStr == "" {
		bme280AddressStr = "0x76"
	}
	bme280Address, err := strconv.ParseUint(bme280AddressStr, 0, 16)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BME280_ADDRESS %q: %w", bme280AddressStr, err)
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "sensornode"
	}

	metricsAddr := strings.TrimSpace(os.Getenv("METRICS_ADDR"))

	return Config{
		AppEnv:        appEnv,
		LogLevel:      level,
		IdentURL:      identURL,
		UploadURL:     uploadURL,
		Password:      password,
		MACAddr:       macAddr,
		SamplePeriod:  samplePeriod,
		BatchSize:     batchSize,
		BacklogLimit:  backlogLimit,
		StatusScheme:  statusScheme,
		VersionGlyph:  versionGlyph,
		LEDPin:        ledPin,
		SensorDriver:  sensorDriver,
		BME280Address: uint16(bme280Address),
		MQTTBroker:    mqttBroker,
		MQTTPort:      mqttPort,
		MQTTClientID:  mqttClientID,
		MetricsAddr:   metricsAddr,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
