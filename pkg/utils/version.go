// Package utils holds small one-off helpers shared across recall that are
// too slight to warrant packages of their own.
package utils

// Build identity, stamped via -ldflags at release time. The zero values
// mark a from-source development build.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
