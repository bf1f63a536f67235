package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var freezeCmd = &cobra.Command{
	Use:   "freeze",
	Short: "Mark the config file read-only for future sovlcorectl commands",
	RunE: func(c *cobra.Command, args []string) error {
		path := resolvePath()
		if err := os.WriteFile(frozenMarkerPath(path), []byte{}, 0o644); err != nil {
			return fmt.Errorf("writing freeze marker: %w", err)
		}
		fmt.Println("frozen")
		return nil
	},
}

var unfreezeCmd = &cobra.Command{
	Use:   "unfreeze",
	Short: "Clear a previous freeze on the config file",
	RunE: func(c *cobra.Command, args []string) error {
		path := resolvePath()
		if err := os.Remove(frozenMarkerPath(path)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing freeze marker: %w", err)
		}
		fmt.Println("unfrozen")
		return nil
	},
}
