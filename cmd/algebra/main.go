// Command algebra runs calculator requests from the command line.
//
//	algebra simplify "2x + 3x"
//	algebra solve --steps "x^2 - 5x + 6 = 0"
//	algebra evaluate "2x^2 + 2y @ x=5, y=3"
//	algebra batch requests.yaml --workers 8
package main

import (
	"errors"
	"fmt"
	"os"
)

// errReported marks a failure the command has already printed.
var errReported = errors.New("reported")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
