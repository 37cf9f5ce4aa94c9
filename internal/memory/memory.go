package memory

import (
	"context"
	"log/slog"
)

// Stats is a snapshot of system memory. All fields are byte counts.
// Used + Free is expected to be at most Total but this is not enforced.
type Stats struct {
	Used  uint64 `json:"used_bytes"`
	Free  uint64 `json:"free_bytes"`
	Total uint64 `json:"total_bytes"`
}

// Source queries the operating system for raw memory statistics.
type Source interface {
	Read(ctx context.Context) (*Stats, error)
}

// NewSource creates a memory source for the current platform
func NewSource() Source {
	return newPlatformSource()
}

// Provider answers memory queries against a Source. It keeps no state
// between calls: every query goes to the source.
type Provider struct {
	source Source
	logger *slog.Logger
}

// NewProvider creates a Provider. A nil logger uses slog.Default.
func NewProvider(source Source, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{source: source, logger: logger}
}

// Stats returns a fresh snapshot, or nil when statistics are unavailable.
// A nil result must not be read as zero memory.
func (p *Provider) Stats(ctx context.Context) *Stats {
	s, err := p.source.Read(ctx)
	if err != nil {
		p.logger.Debug("memory: stats unavailable", "error", err)
		return nil
	}
	// A zero total means the platform call produced nothing usable.
	if s == nil || s.Total == 0 {
		p.logger.Debug("memory: stats unavailable", "error", "empty result")
		return nil
	}
	snapshot := *s
	return &snapshot
}
