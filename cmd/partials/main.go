// Command partials inspects shapes, generalized indices and encoded proofs.
package main

import (
	"os"
)

func main() {
	rc := newRootCommand(os.Stdout, os.Stderr)
	if err := rc.Execute(); err != nil {
		// Cobra has already printed the error.
		os.Exit(1)
	}
}
