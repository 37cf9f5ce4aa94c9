//go:build !windows

package cpu

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// PsutilReader measures CPU load through gopsutil
type PsutilReader struct {
	interval time.Duration
}

func newPlatformReader(interval time.Duration) Reader {
	return &PsutilReader{interval: interval}
}

// GetInfo returns CPU information
func (r *PsutilReader) GetInfo(ctx context.Context) (*Info, error) {
	return readInfo(ctx, r)
}

// GetLoad returns the CPU load fraction
func (r *PsutilReader) GetLoad(ctx context.Context) (float64, error) {
	percentages, err := cpu.PercentWithContext(ctx, r.interval, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, fmt.Errorf("cpu: no load samples")
	}
	return clampLoad(percentages[0]), nil
}

func readInfo(ctx context.Context, r Reader) (*Info, error) {
	cpuInfo, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(cpuInfo) == 0 {
		return nil, fmt.Errorf("cpu: no processors reported")
	}

	threads, err := cpu.CountsWithContext(ctx, true)
	if err != nil || threads == 0 {
		threads = len(cpuInfo)
	}
	cores, err := cpu.CountsWithContext(ctx, false)
	if err != nil || cores == 0 || cores > threads {
		cores = threads
	}

	load, err := r.GetLoad(ctx)
	if err != nil {
		load = 0 // fallback to 0 if we can't get usage
	}

	return &Info{
		Model:   cpuInfo[0].ModelName,
		Cores:   cores,
		Threads: threads,
		Load:    load,
	}, nil
}
