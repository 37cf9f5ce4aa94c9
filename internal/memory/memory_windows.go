//go:build windows

package memory

import (
	"context"
	"fmt"

	"github.com/StackExchange/wmi"
	"github.com/shirou/gopsutil/v3/mem"
)

// WindowsSource reads memory through GlobalMemoryStatusEx and falls back to WMI
type WindowsSource struct{}

// Win32_OperatingSystem reports sizes in kilobytes.
type win32OperatingSystem struct {
	FreePhysicalMemory     uint64
	TotalVisibleMemorySize uint64
}

func newPlatformSource() Source {
	return &WindowsSource{}
}

// Read returns memory statistics
func (s *WindowsSource) Read(ctx context.Context) (*Stats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil {
		return &Stats{
			Used:  vm.Used,
			Free:  vm.Available,
			Total: vm.Total,
		}, nil
	}

	stats, wmiErr := s.readWMI()
	if wmiErr != nil {
		return nil, fmt.Errorf("memory: %v; wmi fallback: %w", err, wmiErr)
	}
	return stats, nil
}

func (s *WindowsSource) readWMI() (*Stats, error) {
	var systems []win32OperatingSystem
	if err := wmi.Query("SELECT FreePhysicalMemory, TotalVisibleMemorySize FROM Win32_OperatingSystem", &systems); err != nil {
		return nil, err
	}
	if len(systems) == 0 {
		return nil, fmt.Errorf("memory: Win32_OperatingSystem returned no rows")
	}

	total := systems[0].TotalVisibleMemorySize * 1024
	free := systems[0].FreePhysicalMemory * 1024
	if free > total {
		return nil, fmt.Errorf("memory: inconsistent WMI sizes (free %d > total %d)", free, total)
	}

	return &Stats{
		Used:  total - free,
		Free:  free,
		Total: total,
	}, nil
}
