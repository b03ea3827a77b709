// Package procname holds the two process-wide identity globals the rest of
// scopedrun reads when composing error messages: the argv[0] the process
// was actually invoked with, and the (possibly rewritten) program name used
// in diagnostics. Kept as its own tiny package so both errctl and procutil
// can read Prgname without creating an import cycle between them.
package procname

import "path/filepath"

// OrigArgv0 is argv[0] as the process received it, set once at startup by
// the CLI entry point.
var OrigArgv0 string

var prgname string

// Prgname returns the name used to prefix diagnostics, falling back to the
// base name of OrigArgv0 if SetPrgname was never called.
func Prgname() string {
	if prgname != "" {
		return prgname
	}
	if OrigArgv0 != "" {
		return filepath.Base(OrigArgv0)
	}
	return "scopedrun"
}

// SetPrgname overrides the name used to prefix diagnostics.
func SetPrgname(s string) {
	prgname = s
}
