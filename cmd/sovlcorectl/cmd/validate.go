package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every currently-set key against the schema registry",
	Long: `Loads the config file and re-validates every key it already
contains against the schema registry. Exit code is 1 if any key fails.`,
	RunE: func(c *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}

		snap := m.State()
		keys := make([]string, 0, len(snap.Config))
		for k := range snap.Config {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		failures := m.ValidateKeys(keys)
		if len(failures) == 0 {
			fmt.Println("valid")
			return nil
		}

		failedKeys := make([]string, 0, len(failures))
		for k := range failures {
			failedKeys = append(failedKeys, k)
		}
		sort.Strings(failedKeys)

		for _, k := range failedKeys {
			fmt.Fprintf(os.Stderr, "%s: %v\n", k, failures[k])
		}
		os.Exit(1)
		return nil
	},
}
