// Command sample prints a random sample of its input lines, or deals them
// out to several files.
package main

import (
	"os"

	"github.com/deepaksharma/sample/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], cli.Streams{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}))
}
