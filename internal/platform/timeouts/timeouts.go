// Package timeouts defines the default collaborator deadlines.
// Config values override them at wiring time.
package timeouts

import (
	"context"
	"time"
)

// Command bounds a whole command from classification to reply.
const Command = 30 * time.Second

// Storage bounds a single repository call.
const Storage = 5 * time.Second

// Render bounds rendering one chart.
const Render = 10 * time.Second

// Mail bounds one mail delivery.
const Mail = 15 * time.Second

// Shutdown limits graceful server shutdown.
const Shutdown = 10 * time.Second

type Config struct {
	Command time.Duration
	Storage time.Duration
	Render  time.Duration
	Mail    time.Duration
}

// Defaults fills zero durations with the package constants.
func (c Config) Defaults() Config {
	if c.Command <= 0 {
		c.Command = Command
	}
	if c.Storage <= 0 {
		c.Storage = Storage
	}
	if c.Render <= 0 {
		c.Render = Render
	}
	if c.Mail <= 0 {
		c.Mail = Mail
	}
	return c
}

// Bound derives a context that ends after d, or never when d is not positive.
func Bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
