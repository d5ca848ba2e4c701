package intel

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/activecm/iptrack/address"
)

// Tracer runs the platform's path tracing utility
type Tracer struct {
	// Command overrides the executable, the platform default is used when
	// empty
	Command string

	MaxHops int
	PerHop  time.Duration
}

// NewTracer returns a Tracer for the given hop budget
func NewTracer(command string, maxHops int, perHop time.Duration) *Tracer {
	return &Tracer{Command: command, MaxHops: maxHops, PerHop: perHop}
}

// Deadline is the overall time allowed for one trace
func (t *Tracer) Deadline() time.Duration {
	return time.Duration(t.MaxHops)*t.PerHop*3 + 5*time.Second
}

func (t *Tracer) command(addr address.Address) (string, []string) {
	name := t.Command
	windows := runtime.GOOS == "windows"
	if name == "" {
		name = "traceroute"
		if windows {
			name = "tracert"
		}
	}

	if windows {
		waitMS := strconv.Itoa(int(t.PerHop / time.Millisecond))
		return name, []string{"-h", strconv.Itoa(t.MaxHops), "-w", waitMS, addr.String()}
	}
	// traceroute takes whole seconds and rejects a zero wait
	waitSec := int(t.PerHop / time.Second)
	if waitSec < 1 {
		waitSec = 1
	}
	return name, []string{"-m", strconv.Itoa(t.MaxHops), "-w", strconv.Itoa(waitSec), addr.String()}
}

// Trace returns the combined output of the utility as opaque text
func (t *Tracer) Trace(ctx context.Context, addr address.Address) (string, error) {
	name, args := t.command(addr)
	path, err := exec.LookPath(name)
	if err != nil {
		return "", ErrToolUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, t.Deadline())
	defer cancel()

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return string(out), ErrTimeout
	}
	if err != nil {
		var exitErr *exec.ExitError
		// traceroute exits non-zero when the target is unreachable, the
		// output is still worth showing
		if errors.As(err, &exitErr) && len(out) > 0 {
			return string(out), nil
		}
		return string(out), err
	}
	return string(out), nil
}
