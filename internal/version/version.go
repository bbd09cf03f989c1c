// Package version provides the version of the application.
package version

import "runtime/debug"

// Version is the current interchat version. Overridden at build time via
// ldflags on tagged releases.
var Version = "unknown"

func init() {
	if Version != "unknown" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}
