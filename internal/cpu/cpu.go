package cpu

import (
	"context"
	"time"
)

// DefaultSampleInterval is how long a load measurement observes the CPU.
const DefaultSampleInterval = time.Second

// Info represents CPU information
type Info struct {
	Model   string  `json:"model"`
	Cores   int     `json:"cores"`
	Threads int     `json:"threads"`
	Load    float64 `json:"load"`
}

// Reader interface for CPU monitoring
type Reader interface {
	GetInfo(ctx context.Context) (*Info, error)
	// GetLoad returns the system-wide load as a fraction in [0, 1].
	GetLoad(ctx context.Context) (float64, error)
}

// NewReader creates a new CPU reader for the current platform
func NewReader() Reader {
	return newPlatformReader(DefaultSampleInterval)
}

// NewReaderWithInterval is NewReader with a custom sampling window.
func NewReaderWithInterval(interval time.Duration) Reader {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return newPlatformReader(interval)
}

func clampLoad(percent float64) float64 {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 1
	}
	return percent / 100
}
