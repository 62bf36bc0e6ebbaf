//go:build spandebug

package span

// debugChecks validates every set produced by Add and Remove.
const debugChecks = true
