package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var dumpSection string

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the whole config, or one section, as JSON",
	RunE: func(c *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if dumpSection != "" {
			section, ok := m.GetSection(dumpSection)
			if !ok {
				return enc.Encode(map[string]any{})
			}
			return enc.Encode(section)
		}
		return enc.Encode(m.State().Config)
	},
}

func init() {
	dumpCmd.Flags().StringVar(&dumpSection, "section", "", "only dump this top-level section")
}
