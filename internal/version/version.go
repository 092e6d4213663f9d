// Package version exposes build metadata injected at link time.
package version

import "time"

// Populated by the release build via
// -ldflags "-X .../internal/version.Version=... " and friends.
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
)

// Info is the resolved build metadata.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
}

// Resolve returns the injected metadata, substituting a UTC timestamp
// for the version on untagged development builds.
func Resolve() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
	if info.Version == "" {
		info.Version = info.BuildTime
	}
	if info.Version == "" {
		info.Version = "dev-" + time.Now().UTC().Format("20060102T150405Z")
	}
	return info
}
