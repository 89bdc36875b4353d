// Command delta-chat sends one message to the Delta documentation chat API
// and prints the streamed answer as markdown.
package main

import (
	"fmt"
	"os"
)

// main is the program entry point.
func main() {
	cmd := newRootCmd(defaultDeps())
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
