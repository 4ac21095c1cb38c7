// Package notify tells a socket.io server that a template directory was
// rendered, so dev servers can reload.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/mondir/internal/ctxlog"
)

const (
	// EventRendered is emitted once per successful render.
	EventRendered = "mondir:rendered"
	// EventAck is the event a server may answer with when WaitAck is set.
	EventAck = "mondir:ack"

	DefaultTimeout = 5 * time.Second
)

// Config describes where notifications go.
type Config struct {
	URL       string
	Namespace string
	Timeout   time.Duration
	// WaitAck makes Send wait for EventAck before returning.
	WaitAck            bool
	InsecureSkipVerify bool
}

// Payload is the body of EventRendered.
type Payload struct {
	TemplateDir string
	OutputDir   string
	// Files are the written output paths, relative to OutputDir.
	Files []string
}

func (p Payload) data() map[string]any {
	files := make([]any, len(p.Files))
	for i, f := range p.Files {
		files[i] = f
	}
	return map[string]any{
		"template_dir": p.TemplateDir,
		"output_dir":   p.OutputDir,
		"files":        files,
	}
}

// Send connects to cfg.URL, emits payload and disconnects.
func Send(ctx context.Context, cfg Config, payload Payload) error {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "event", EventRendered)
	logger.Debug("Sending render notification.")

	parsed, err := parseURL(cfg.URL)
	if err != nil {
		return err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := socket.DefaultOptions()
	opts.SetPath(parsed.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), opts)
	io := manager.Socket(namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client.")
		io.Disconnect()
	}()

	var connected atomic.Bool
	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	io.On(types.EventName("connect"), func(...any) {
		connected.Store(true)
		data := payload.data()
		logger.Debug("Connected, emitting event.", "sid", io.Id(), "data", data)
		io.Emit(EventRendered, data)
		if !cfg.WaitAck {
			finish(nil)
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				finish(fmt.Errorf("connecting to %s: %w", cfg.URL, err))
				return
			}
		}
		finish(fmt.Errorf("connecting to %s failed", cfg.URL))
	})
	if cfg.WaitAck {
		io.On(types.EventName(EventAck), func(...any) {
			logger.Debug("Render notification acknowledged.")
			finish(nil)
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if connected.Load() {
			return fmt.Errorf("timed out after %s waiting for %q", timeout, EventAck)
		}
		return fmt.Errorf("timed out after %s connecting to %s", timeout, cfg.URL)
	case err := <-done:
		return err
	}
}

func parseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.New("notify URL is empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid notify URL: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("invalid notify URL %q: scheme must be http, https, ws or wss", raw)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid notify URL %q: missing host", raw)
	}
	return parsed, nil
}
