// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

// Stamped at build time via -ldflags; see .dagger/build.go.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
