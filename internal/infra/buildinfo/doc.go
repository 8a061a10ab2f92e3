// Package buildinfo exposes version information injected at build time:
//
//	go build -ldflags "-X github.com/yndnr/tracklog-go/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/tracklog-go/internal/infra/buildinfo.Commit=abc123"
//
// When Commit is not injected it falls back to the VCS revision recorded by
// the Go toolchain.
package buildinfo
