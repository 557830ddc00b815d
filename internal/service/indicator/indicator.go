package indicator

import (
	"fmt"
	"io"
	"os"

	drepo "TrafficLight/internal/domain/repository"
	applogger "TrafficLight/pkg/logger"
)

// Driver is an indicator that holds resources until closed.
type Driver interface {
	drepo.Indicator
	io.Closer
}

// Open returns the driver named by name: "console" or "gpio".
func Open(name string, pins PinConfig, logger *applogger.Logger, opts ...GPIOOption) (Driver, error) {
	switch name {
	case "", "console":
		return NewConsole(os.Stdout), nil
	case "gpio":
		return OpenGPIO(pins, logger, opts...)
	default:
		return nil, fmt.Errorf("unknown indicator driver %q", name)
	}
}
