// Command processor runs the financial statement pipeline from the command
// line: it extracts uploaded workbooks into runs, prints their analyses and
// renders reports without starting the HTTP server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
