package admin

import (
	"fmt"
	"os"
	"strings"
)

// pprofHandlers lists the profiles served by default. Each can be toggled
// with PPROF_<NAME>=yes|no. Profiles only go on the admin port since heap
// dumps can hold PIN hashes.
var pprofHandlers = map[string]bool{
	"allocs":       true,
	"block":        true,
	"cmdline":      true,
	"goroutine":    true,
	"heap":         true,
	"mutex":        true,
	"profile":      true,
	"threadcreate": false,
	"trace":        false,
}

// checkEnabled reads PPROF_<NAME>. "yes" and "no" win over zero.
func checkEnabled(name string, zero bool) bool {
	v := os.Getenv(fmt.Sprintf("PPROF_%s", strings.ToUpper(name)))
	switch strings.ToLower(v) {
	case "yes":
		return true
	case "no":
		return false
	}
	return zero
}
