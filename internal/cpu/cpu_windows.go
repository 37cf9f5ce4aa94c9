//go:build windows

package cpu

import (
	"context"
	"fmt"
	"time"

	"github.com/StackExchange/wmi"
	"github.com/shirou/gopsutil/v3/cpu"
)

// WindowsReader measures CPU load through gopsutil and falls back to WMI
type WindowsReader struct {
	interval time.Duration
}

type win32Processor struct {
	Name           string
	LoadPercentage uint16
}

func newPlatformReader(interval time.Duration) Reader {
	return &WindowsReader{interval: interval}
}

// GetInfo returns CPU information
func (r *WindowsReader) GetInfo(ctx context.Context) (*Info, error) {
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
	cores := int(cpuInfo[0].Cores)
	if cores == 0 || cores > threads {
		cores = threads
	}

	load, err := r.GetLoad(ctx)
	if err != nil {
		load = 0
	}

	return &Info{
		Model:   cpuInfo[0].ModelName,
		Cores:   cores,
		Threads: threads,
		Load:    load,
	}, nil
}

// GetLoad returns the CPU load fraction
func (r *WindowsReader) GetLoad(ctx context.Context) (float64, error) {
	percentages, err := cpu.PercentWithContext(ctx, r.interval, false)
	if err == nil && len(percentages) > 0 {
		return clampLoad(percentages[0]), nil
	}

	var processors []win32Processor
	if wmiErr := wmi.Query("SELECT Name, LoadPercentage FROM Win32_Processor", &processors); wmiErr != nil {
		return 0, fmt.Errorf("cpu: %v; wmi fallback: %w", err, wmiErr)
	}
	if len(processors) == 0 {
		return 0, fmt.Errorf("cpu: Win32_Processor returned no rows")
	}

	var sum float64
	for _, p := range processors {
		sum += float64(p.LoadPercentage)
	}
	return clampLoad(sum / float64(len(processors))), nil
}
