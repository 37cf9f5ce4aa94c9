package platform

import (
	"fmt"
	"runtime"
)

// SupportedOS represents supported operating systems
type SupportedOS string

const (
	Linux   SupportedOS = "linux"
	Windows SupportedOS = "windows"
	Darwin  SupportedOS = "darwin"
)

var supported = []SupportedOS{Linux, Windows, Darwin}

// GetOS returns the current operating system
func GetOS() SupportedOS {
	return SupportedOS(runtime.GOOS)
}

// IsSupported reports whether os has native memory and CPU statistics.
func IsSupported(os SupportedOS) bool {
	for _, s := range supported {
		if os == s {
			return true
		}
	}
	return false
}

// ValidateSupport returns an error if the current OS is not supported
func ValidateSupport() error {
	if !IsSupported(GetOS()) {
		return fmt.Errorf("unsupported operating system: %s. Supported: linux, windows, darwin", runtime.GOOS)
	}
	return nil
}
