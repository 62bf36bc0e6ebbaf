//go:build !spandebug

package span

const debugChecks = false
