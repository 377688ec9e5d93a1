package signal

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// GPIOLine drives the status LED through a periph.io GPIO pin.
type GPIOLine struct {
	pin gpio.PinOut
	log *slog.Logger
}

func OpenGPIOLine(name string, log *slog.Logger) (*GPIOLine, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return &GPIOLine{pin: pin, log: log}, nil
}

func (g *GPIOLine) Set(on bool) {
	if err := g.pin.Out(gpio.Level(on)); err != nil {
		// A broken LED must never take the probe loop down with it.
		g.log.Warn("gpio write failed", "pin", g.pin.Name(), "error", err)
	}
}

// NullLine discards writes; used when no LED pin is configured.
type NullLine struct{}

func (NullLine) Set(bool) {}
