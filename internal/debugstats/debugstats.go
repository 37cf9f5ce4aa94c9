// Package debugstats renders the periodic RAM/CPU line shown in the
// player's debug overlay.
package debugstats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CristiGvl/picoTVKit/internal/memory"
	"github.com/dustin/go-humanize"
)

// DefaultInterval is the overlay refresh period.
const DefaultInterval = 5 * time.Second

// MemoryQuerier returns a snapshot or nil when statistics are unavailable.
type MemoryQuerier interface {
	Stats(ctx context.Context) *memory.Stats
}

// LoadReader returns the CPU load as a fraction in [0, 1].
type LoadReader interface {
	GetLoad(ctx context.Context) (float64, error)
}

// Config configures a Provider.
type Config struct {
	Interval time.Duration
	Logger   *slog.Logger
}

func (c *Config) defaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Provider samples memory and CPU statistics and formats them for display.
type Provider struct {
	cfg    Config
	memory MemoryQuerier
	cpu    LoadReader
}

// New creates a Provider.
func New(mem MemoryQuerier, cpu LoadReader, cfg Config) *Provider {
	cfg.defaults()
	return &Provider{cfg: cfg, memory: mem, cpu: cpu}
}

// Sample returns the overlay text. ok is false when memory statistics are
// unavailable, in which case nothing should be displayed.
func (p *Provider) Sample(ctx context.Context) (text string, ok bool) {
	stats := p.memory.Stats(ctx)
	if stats == nil {
		return "", false
	}

	cpuLine := "CPU load: n/a"
	if load, err := p.cpu.GetLoad(ctx); err == nil {
		cpuLine = fmt.Sprintf("CPU load: %d%%", int(load*100))
	} else {
		p.cfg.Logger.Debug("debugstats: cpu load unavailable", "error", err)
	}

	return fmt.Sprintf("RAM Stats: use: %s, free: %s, total: %s\n%s",
		humanize.IBytes(stats.Used),
		humanize.IBytes(stats.Free),
		humanize.IBytes(stats.Total),
		cpuLine,
	), true
}

// Run samples every interval and passes each text to onUpdate until ctx is
// done. Intervals without memory statistics are skipped.
func (p *Provider) Run(ctx context.Context, onUpdate func(string)) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			text, ok := p.Sample(ctx)
			if !ok {
				continue
			}
			p.cfg.Logger.Debug(text)
			onUpdate(text)
		}
	}
}
