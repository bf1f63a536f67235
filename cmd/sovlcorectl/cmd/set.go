package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Validate and persist a single key/value pair",
	Long: `The value is parsed as JSON when possible (true, 42, 3.14, "str",
[1,2]), so quote string values that look like other types. A value that
fails to parse as JSON is stored as a raw string.`,
	Args: cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}

		key, raw := args[0], args[1]
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}

		if !m.Update(context.Background(), key, value) {
			return fmt.Errorf("update rejected for %q (invalid value or manager frozen)", key)
		}
		fmt.Printf("%s = %v\n", key, value)
		return nil
	},
}
