// Command framepace simulates and probes adaptive frame pacing.
//
// Usage:
//
//	framepace simulate --frames 600 --scenario spike --plot pacing.png
//	framepace watch --scenario wave
//	framepace probe --backend noop
//	framepace drivers
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
