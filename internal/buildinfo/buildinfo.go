// Package buildinfo carries values stamped at link time, e.g.
//
//	go build -ldflags "-X github.com/SscSPs/mbg_dapur_ledger/internal/buildinfo.Version=v1.2.0"
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
