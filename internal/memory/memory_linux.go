//go:build linux

package memory

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"
)

// LinuxSource reads /proc/meminfo through gopsutil
type LinuxSource struct{}

func newPlatformSource() Source {
	return &LinuxSource{}
}

// Read returns used, free and total bytes. Used excludes buffers and page
// cache, so Used + Free stays below Total.
func (s *LinuxSource) Read(ctx context.Context) (*Stats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Used:  vm.Used,
		Free:  vm.Free,
		Total: vm.Total,
	}, nil
}
