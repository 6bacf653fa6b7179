package buildinfo

import "runtime/debug"

// version is set with -ldflags "-X github.com/offlinefirst/screenshotter/internal/buildinfo.version=v1.2.3".
var version = "dev"

// Version returns the release tag, the module version recorded by go install,
// or the short VCS revision of a local build.
func Version() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return "dev-" + setting.Value[:7]
		}
	}
	return "dev"
}
