// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// BinaryName is the name of the controller binary.
const BinaryName = "reservoir"

var (
	// Version is the release tag, set at build time.
	Version = "UNKNOWN"
	// BuildDate is the build timestamp, set at build time.
	BuildDate = "UNKNOWN"
)

// VersionString returns the version, platform and build date.
func VersionString() string {
	return fmt.Sprintf("%s (%s/%s). Build date: %s", Version, runtime.GOOS, runtime.GOARCH, BuildDate)
}
