//go:build darwin

package memory

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"
)

// DarwinSource reads VM statistics through gopsutil
type DarwinSource struct{}

func newPlatformSource() Source {
	return &DarwinSource{}
}

// Read counts active, inactive and wired pages as used and free pages as free.
func (s *DarwinSource) Read(ctx context.Context) (*Stats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Used:  vm.Active + vm.Inactive + vm.Wired,
		Free:  vm.Free,
		Total: vm.Total,
	}, nil
}
