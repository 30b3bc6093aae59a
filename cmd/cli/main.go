// gcstw - JVM GC stop-the-world time accumulator
//
// gcstw reads a garbage-collection log and prints the total time application
// threads were stopped for garbage collection.
package main

import (
	"os"

	"github.com/ccollicutt/gcstw/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
