package cli

import (
	"os"

	"golang.org/x/term"
)

// colorEnabled reports whether human output may use ANSI colors.
func colorEnabled() bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("LORASCHED_NO_COLOR"); ok {
		return false
	}
	return hasTTY()
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
