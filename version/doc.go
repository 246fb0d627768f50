// Package version reports the graphx build version.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/graphx/version.Version=1.0.0" ./cmd/graphx
package version
