package intel

import (
	"context"
	"errors"
	"io/ioutil"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerDeadline(t *testing.T) {
	tracer := NewTracer("", 30, 3*time.Second)
	assert.Equal(t, 30*3*time.Second*3+5*time.Second, tracer.Deadline())
}

func TestTracerCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix flags")
	}
	name, args := NewTracer("", 12, 2*time.Second).command(mustAddr(t, "1.1.1.1"))
	assert.Equal(t, "traceroute", name)
	assert.Equal(t, []string{"-m", "12", "-w", "2", "1.1.1.1"}, args)
}

func TestTracerCommandSubSecondWait(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix flags")
	}
	_, args := NewTracer("", 12, 500*time.Millisecond).command(mustAddr(t, "1.1.1.1"))
	assert.Equal(t, []string{"-m", "12", "-w", "1", "1.1.1.1"}, args)

	_, args = NewTracer("", 12, 0).command(mustAddr(t, "1.1.1.1"))
	assert.Equal(t, []string{"-m", "12", "-w", "1", "1.1.1.1"}, args)
}

func TestTracerCapturesOutput(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}
	out, err := NewTracer("echo", 5, time.Second).Trace(context.Background(), mustAddr(t, "1.1.1.1"))
	require.NoError(t, err)
	assert.Contains(t, out, "-m 5 -w 1 1.1.1.1")
}

func TestTracerToolUnavailable(t *testing.T) {
	tracer := NewTracer("definitely-not-a-traceroute-binary", 5, time.Second)
	_, err := tracer.Trace(context.Background(), mustAddr(t, "1.1.1.1"))
	assert.True(t, errors.Is(err, ErrToolUnavailable))
}

func TestTracerTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	script := filepath.Join(t.TempDir(), "slowtrace")
	require.NoError(t, ioutil.WriteFile(script, []byte("#!/bin/sh\nexec sleep 5\n"), 0755))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewTracer(script, 1, time.Second).Trace(ctx, mustAddr(t, "1.1.1.1"))
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, time.Since(start) < 3*time.Second)
}
