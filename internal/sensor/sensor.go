// Package sensor provides the temperature/humidity drivers the node can be
// built with. Drivers report NaN for readings they cannot produce; the engine
// treats that as the bad-read signal and drops the sample.
package sensor

import (
	"fmt"
	"log/slog"
	"math"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// BME280 reads a Bosch BME280/BMP280 over I²C.
type BME280 struct {
	dev *bmxx80.Dev
	bus i2c.BusCloser
	log *slog.Logger
}

func OpenBME280(addr uint16, log *slog.Logger) (*BME280, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open("") // default bus, usually /dev/i2c-1
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		if closeErr := bus.Close(); closeErr != nil {
			log.Warn("close i2c bus", "error", closeErr)
		}
		return nil, fmt.Errorf("bme280 at 0x%02x: %w", addr, err)
	}
	return &BME280{dev: dev, bus: bus, log: log}, nil
}

func (b *BME280) Read() (float64, float64) {
	var env physic.Env
	if err := b.dev.Sense(&env); err != nil {
		b.log.Warn("sensor read failed", "error", err)
		return math.NaN(), math.NaN()
	}

	// env.Humidity is fixed point at 0.00001 %rH per unit.
	return env.Temperature.Celsius(), float64(env.Humidity) / 100000.0
}

func (b *BME280) Close() error {
	if err := b.dev.Halt(); err != nil {
		b.log.Warn("halt sensor", "error", err)
	}
	return b.bus.Close()
}

// Sim produces a slow drift around room conditions. Used on machines without
// the sensor attached.
type Sim struct {
	n int
}

func (s *Sim) Read() (float64, float64) {
	s.n++
	t := float64(s.n) / 10
	return 21 + 2*math.Sin(t), 45 + 5*math.Cos(t)
}
