// Package buildinfo carries version metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/modoterra/catlog/internal/buildinfo.Version=v0.3.0"
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the metadata for `catlog version`.
func String() string {
	return Version + " (" + Commit + ") built " + Date
}
