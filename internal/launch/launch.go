// Package launch spawns the platform URL handler to deliver a scheme URL to
// the Things application. This is the single external call a write tool
// makes per invocation.
package launch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnsupportedPlatform is returned when the host OS has no known URL
// handler binary.
var ErrUnsupportedPlatform = errors.New("no URL handler for platform")

const defaultTimeout = 10 * time.Second

// Launcher delivers a URL to the operating system's scheme handler.
type Launcher interface {
	Open(ctx context.Context, rawURL string) error
}

// Opener shells out to the OS URL handler (open on macOS, xdg-open on
// Linux desktops).
type Opener struct {
	timeout time.Duration
	log     *zap.Logger
}

// NewOpener builds an Opener. A zero timeout falls back to the default;
// a nil logger is replaced with a no-op one.
func NewOpener(timeout time.Duration, log *zap.Logger) *Opener {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Opener{timeout: timeout, log: log}
}

// Open invokes the platform URL handler with the given URL and waits for it
// to exit. stderr is folded into the returned error.
func (o *Opener) Open(ctx context.Context, rawURL string) error {
	name, args := handlerCommand(runtime.GOOS)
	if name == "" {
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, runtime.GOOS)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, append(args, rawURL)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("url handler timed out after %s", o.timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("url handler failed: %w: %s", err, msg)
		}
		return fmt.Errorf("url handler failed: %w", err)
	}

	o.log.Debug("url dispatched",
		zap.String("handler", name),
		zap.Duration("took", time.Since(start)))
	return nil
}

// handlerCommand picks the URL handler binary for the host OS.
// -g keeps Things from stealing focus on every call.
func handlerCommand(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{"-g"}
	case "linux":
		return "xdg-open", nil
	default:
		return "", nil
	}
}
