// Command sovlcorectl inspects and manipulates a sovlcore config file
// from the command line: load it through the schema registry and
// config manager, print or set individual keys, and freeze/unfreeze it.
//
// Grounded on cmd/configvalidator's cobra root-plus-subcommand shape
// from the teacher repo, and on its own viper wiring for
// SOVL_CONFIG_FILE / --config path resolution.
package main

import (
	"fmt"
	"os"

	"github.com/yourorg/sovlcore/cmd/sovlcorectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
