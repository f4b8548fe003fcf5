// Package version reports the laneboard build version.
package version

import "runtime/debug"

// Version is overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/laneboard/pkg/version.Version=v1.2.3"
var Version = "v0.1.0-dev"

// String returns Version, or the module version recorded by `go install`
// when no ldflags override was given.
func String() string {
	if Version != "v0.1.0-dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
