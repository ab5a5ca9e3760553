// Package version reports the forge build identity.
package version

import "fmt"

// Version is the release train; Commit and BuildDate are stamped at build
// time via -ldflags.
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// String renders the full build identity, e.g. "forge dev (a1b2c3d, 2026-03-01)".
func String() string {
	s := "forge " + Version
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		if BuildDate != "" {
			s += fmt.Sprintf(" (%s, %s)", c, BuildDate)
		} else {
			s += fmt.Sprintf(" (%s)", c)
		}
	}
	return s
}
