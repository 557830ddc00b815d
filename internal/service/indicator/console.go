package indicator

import (
	"fmt"
	"io"
	"os"
	"sync"

	"TrafficLight/internal/domain/models"
	drepo "TrafficLight/internal/domain/repository"
)

// Console prints indicator output instead of driving hardware.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a console indicator writing to out (stdout when nil).
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *Console) RenderState(bucket models.Bucket) {
	c.println(fmt.Sprintf("[LED] %s solid", bucket))
}

func (c *Console) RenderFailure() { c.println("[LED] ERROR: blink all") }
func (c *Console) SoundOK()       { c.println("[BUZZER] ok tone") }
func (c *Console) SoundError()    { c.println("[BUZZER] error tone") }
func (c *Console) SelfTestStart() { c.println("[SELF-TEST] LED sweep + tone") }
func (c *Console) SelfTestPass()  { c.println("[SELF-TEST] PASS") }
func (c *Console) SelfTestFail()  { c.println("[SELF-TEST] FAIL") }

// Close is a no-op.
func (c *Console) Close() error { return nil }

var _ drepo.Indicator = (*Console)(nil)
