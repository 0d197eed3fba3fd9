// Package version exposes the module version embedded by the Go toolchain.
package version

import "runtime/debug"

// Get returns the module version from build info, or "unknown" when the
// binary was built without module support.
func Get() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}
