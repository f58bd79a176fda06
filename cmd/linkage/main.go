// Command linkage resolves transaction records into entity groups.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/linkage/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cli.GetExitCode(err))
}
