package dsm

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Architecture identifies a NAS CPU architecture for which upstream
// publishes package artifacts.
type Architecture string

// Supported architectures. Anything else is a fatal precondition failure
// for the whole run, checked before any network activity.
const (
	ArchX8664   Architecture = "x86_64"
	ArchX86     Architecture = "x86"
	ArchARMv7hf Architecture = "armv7hf"
	ArchAArch64 Architecture = "aarch64"
)

// ErrUnsupportedArchitecture is returned for architectures upstream does
// not build packages for.
var ErrUnsupportedArchitecture = errors.New("unsupported architecture")

// ParseArchitecture validates a user- or config-supplied architecture string.
func ParseArchitecture(s string) (Architecture, error) {
	switch Architecture(strings.ToLower(strings.TrimSpace(s))) {
	case ArchX8664:
		return ArchX8664, nil
	case ArchX86:
		return ArchX86, nil
	case ArchARMv7hf:
		return ArchARMv7hf, nil
	case ArchAArch64:
		return ArchAArch64, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedArchitecture, s)
	}
}

// DetectArchitecture maps the running process architecture to the upstream
// naming scheme. Used when the config does not pin one.
func DetectArchitecture() (Architecture, error) {
	switch runtime.GOARCH {
	case "amd64":
		return ArchX8664, nil
	case "386":
		return ArchX86, nil
	case "arm":
		return ArchARMv7hf, nil
	case "arm64":
		return ArchAArch64, nil
	default:
		return "", fmt.Errorf("%w: GOARCH %q", ErrUnsupportedArchitecture, runtime.GOARCH)
	}
}
