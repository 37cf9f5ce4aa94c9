//go:build !linux && !windows && !darwin

package memory

import (
	"context"
	"errors"
)

// UnsupportedSource is a fallback for unsupported platforms
type UnsupportedSource struct{}

func newPlatformSource() Source {
	return &UnsupportedSource{}
}

// Read always fails on unsupported platforms
func (s *UnsupportedSource) Read(ctx context.Context) (*Stats, error) {
	return nil, errors.New("memory statistics not supported on this platform")
}
