package indicator

import (
	"fmt"
	"sync"
	"time"

	"TrafficLight/internal/domain/models"
	drepo "TrafficLight/internal/domain/repository"
	applogger "TrafficLight/pkg/logger"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pin is the output side of a GPIO line.
type Pin interface {
	Out(l gpio.Level) error
}

// PinConfig names the GPIO lines (e.g. "GPIO17") driving each LED and the buzzer.
type PinConfig struct {
	Blue   string
	Green  string
	Yellow string
	Red    string
	Buzzer string
}

// GPIO drives one LED per color bucket plus a buzzer.
// Failure mode blinks all LEDs until the next RenderState.
type GPIO struct {
	mu     sync.Mutex
	leds   map[models.Bucket]Pin
	order  []models.Bucket
	buzzer Pin
	blink  time.Duration
	tone   time.Duration
	stop   chan struct{}
	done   chan struct{}
	logger *applogger.Logger
}

// GPIOOption configures GPIO.
type GPIOOption func(*GPIO)

// WithBlinkInterval sets the failure blink half-period.
func WithBlinkInterval(d time.Duration) GPIOOption {
	return func(g *GPIO) {
		if d > 0 {
			g.blink = d
		}
	}
}

// WithToneDuration sets how long the buzzer sounds per beep.
func WithToneDuration(d time.Duration) GPIOOption {
	return func(g *GPIO) {
		if d > 0 {
			g.tone = d
		}
	}
}

// OpenGPIO initializes the host drivers and resolves the configured pins.
func OpenGPIO(cfg PinConfig, logger *applogger.Logger, opts ...GPIOOption) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	byName := func(name string) (Pin, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("gpio pin %q not found", name)
		}
		return p, nil
	}

	pins := map[models.Bucket]string{
		models.BucketBlue:   cfg.Blue,
		models.BucketGreen:  cfg.Green,
		models.BucketYellow: cfg.Yellow,
		models.BucketRed:    cfg.Red,
	}
	leds := make(map[models.Bucket]Pin, len(pins))
	for bucket, name := range pins {
		p, err := byName(name)
		if err != nil {
			return nil, err
		}
		leds[bucket] = p
	}
	buzzer, err := byName(cfg.Buzzer)
	if err != nil {
		return nil, err
	}
	return NewGPIO(leds, buzzer, logger, opts...), nil
}

// NewGPIO builds an indicator from already resolved pins.
func NewGPIO(leds map[models.Bucket]Pin, buzzer Pin, logger *applogger.Logger, opts ...GPIOOption) *GPIO {
	g := &GPIO{
		leds:   leds,
		order:  []models.Bucket{models.BucketBlue, models.BucketGreen, models.BucketYellow, models.BucketRed},
		buzzer: buzzer,
		blink:  500 * time.Millisecond,
		tone:   150 * time.Millisecond,
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RenderState lights only the LED of bucket.
func (g *GPIO) RenderState(bucket models.Bucket) {
	g.stopBlink()
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, b := range g.order {
		g.out(g.leds[b], gpio.Level(b == bucket))
	}
}

// RenderFailure starts blinking all LEDs. Calling it again while blinking is a no-op.
func (g *GPIO) RenderFailure() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stop != nil {
		return
	}
	g.stop = make(chan struct{})
	g.done = make(chan struct{})
	go g.blinkAll(g.stop, g.done)
}

func (g *GPIO) SoundOK()    { g.beep(1) }
func (g *GPIO) SoundError() { g.beep(3) }

// SelfTestStart sweeps through every LED and sounds one tone.
func (g *GPIO) SelfTestStart() {
	g.stopBlink()
	g.mu.Lock()
	for _, b := range g.order {
		g.out(g.leds[b], gpio.High)
		time.Sleep(g.tone)
		g.out(g.leds[b], gpio.Low)
	}
	g.mu.Unlock()
	g.beep(1)
}

func (g *GPIO) SelfTestPass() { g.beep(1) }
func (g *GPIO) SelfTestFail() { g.beep(2) }

// Close stops blinking and switches every line off.
func (g *GPIO) Close() error {
	g.stopBlink()
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, b := range g.order {
		g.out(g.leds[b], gpio.Low)
	}
	g.out(g.buzzer, gpio.Low)
	return nil
}

func (g *GPIO) blinkAll(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(g.blink)
	defer t.Stop()

	for l := gpio.High; ; l = !l {
		g.mu.Lock()
		for _, b := range g.order {
			g.out(g.leds[b], l)
		}
		g.mu.Unlock()

		select {
		case <-stop:
			return
		case <-t.C:
		}
	}
}

func (g *GPIO) stopBlink() {
	g.mu.Lock()
	stop, done := g.stop, g.done
	g.stop, g.done = nil, nil
	g.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (g *GPIO) beep(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := 0; i < n; i++ {
		g.out(g.buzzer, gpio.High)
		time.Sleep(g.tone)
		g.out(g.buzzer, gpio.Low)
		if i < n-1 {
			time.Sleep(g.tone)
		}
	}
}

func (g *GPIO) out(p Pin, l gpio.Level) {
	if p == nil {
		return
	}
	if err := p.Out(l); err != nil {
		g.logger.Warn("gpio write failed", applogger.Error(err), applogger.Bool("level", bool(l)))
	}
}

var _ drepo.Indicator = (*GPIO)(nil)
