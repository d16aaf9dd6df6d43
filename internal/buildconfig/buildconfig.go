package buildconfig

// Injected at build time:
//
//	go build -ldflags "-X .../internal/buildconfig.version=v1.2.3 -X .../internal/buildconfig.commit=$(git rev-parse --short HEAD)"
var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the build version, "dev" for untagged builds.
func Version() string {
	return version
}

// Commit returns the git commit hash.
func Commit() string {
	return commit
}

// VersionInfo bundles both for structured output.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
	}
}
