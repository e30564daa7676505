package cli

import "github.com/willibrandon/vcxstrip/cmd/vcxstrip/version"

// BuiltBy names the builder (set by main)
var BuiltBy = "unknown"

// GetVersion returns formatted version information
func GetVersion() string {
	return version.Version
}

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return "vcxstrip version " + version.Version + "\n" +
		"commit: " + version.Commit + "\n" +
		"built: " + version.Date + "\n" +
		"built by: " + BuiltBy + "\n" +
		"go: " + version.GoVersion
}
