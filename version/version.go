// Package version holds build metadata, set at link time:
//
//	go build -ldflags "-X github.com/actionsum/meetnotes/version.Version=1.2.0"
package version

var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)
