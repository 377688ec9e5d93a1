package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jelson/sensornode/internal/config"
	"github.com/jelson/sensornode/internal/device"
	"github.com/jelson/sensornode/internal/feed"
	"github.com/jelson/sensornode/internal/logging"
	sensordrv "github.com/jelson/sensornode/internal/sensor"
	statussignal "github.com/jelson/sensornode/internal/signal"
	"github.com/jelson/sensornode/internal/timesync"
)

var version = "dev"
var appName = "sensornode"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"period", cfg.SamplePeriod,
		"scheme", cfg.StatusScheme,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

func run(ctx context.Context, cfg config.Config) error {
	log := slog.Default()
	clock := device.SystemClock()

	metrics := device.NewMetrics()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, metrics, log)
	}

	dev := device.NewDevice(nil, cfg.BacklogLimit, metrics, log)

	mac := cfg.MACAddr
	if mac == "" {
		mac = localMAC()
	}

	resolver := device.NewResolver(dev, cfg.IdentURL, mac, cfg.SamplePeriod, clock, log)
	identity, err := resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	dev.AdoptIdentity(identity)

	line, err := openLine(cfg, log)
	if err != nil {
		return err
	}

	var signaler statussignal.Signaler
	switch cfg.StatusScheme {
	case "pattern":
		signaler = statussignal.NewPatternSignaler(line, clock, log)
	default:
		signaler = statussignal.NewMorseSignaler(line, clock, cfg.VersionGlyph, log)
	}

	reader, err := openSensor(cfg, log)
	if err != nil {
		return err
	}

	var liveFeed device.Feed
	if cfg.MQTTBroker != "" {
		pub := feed.NewPublisher(cfg.MQTTBroker, cfg.MQTTPort, cfg.MQTTClientID, log)
		defer pub.Close()
		liveFeed = pub
	}

	sched := device.NewScheduler(dev, device.SchedulerOptions{
		TimeSource: timesync.System{},
		Sensor:     reader,
		Uploader:   device.NewUploader(dev, cfg.UploadURL, cfg.Password, log),
		Signaler:   signaler,
		Feed:       liveFeed,
		Clock:      clock,
		Period:     cfg.SamplePeriod,
		BatchSize:  cfg.BatchSize,
	}, log)

	return sched.Run(ctx)
}

func openLine(cfg config.Config, log *slog.Logger) (statussignal.Line, error) {
	if cfg.LEDPin == "" {
		log.Info("no LED pin configured, status signaling disabled")
		return statussignal.NullLine{}, nil
	}
	return statussignal.OpenGPIOLine(cfg.LEDPin, log)
}

func openSensor(cfg config.Config, log *slog.Logger) (device.SensorReader, error) {
	switch cfg.SensorDriver {
	case "bme280":
		return sensordrv.OpenBME280(cfg.BME280Address, log)
	default:
		log.Info("using simulated sensor")
		return &sensordrv.Sim{}, nil
	}
}

func serveMetrics(addr string, metrics *device.Metrics, log *slog.Logger) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.Collectors()...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.Info("metrics listener starting", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics listener failed", "error", err)
	}
}

// localMAC picks the hardware address of the first non-loopback interface, the
// same identity the naming service keys on.
func localMAC() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "00:00:00:00:00:00"
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		return iface.HardwareAddr.String()
	}
	return "00:00:00:00:00:00"
}
