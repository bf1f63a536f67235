package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourorg/sovlcore/internal/configmanager"
	"github.com/yourorg/sovlcore/internal/schema"
	"github.com/yourorg/sovlcore/pkg/logger"
)

var (
	cfgFile  string
	compress bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "sovlcorectl",
	Short: "Inspect and manage a sovlcore config file",
	Long: `sovlcorectl loads a config file through the schema registry and
config manager, the same path the runtime itself uses, so validation
errors and structured-tree layout match exactly what the running system
would see.

The config file path is resolved, in order: --config flag,
SOVL_CONFIG_FILE environment variable, ./sovl_config.json.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file (default $SOVL_CONFIG_FILE or ./sovl_config.json)")
	rootCmd.PersistentFlags().BoolVar(&compress, "compress", false, "gzip the file on save")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(freezeCmd)
	rootCmd.AddCommand(unfreezeCmd)
	rootCmd.AddCommand(validateCmd)
}

// resolvePath applies the --config / SOVL_CONFIG_FILE / default
// precedence via viper.
func resolvePath() string {
	v := viper.New()
	v.SetEnvPrefix("SOVL")
	v.BindEnv("CONFIG_FILE")
	v.SetDefault("CONFIG_FILE", "sovl_config.json")

	if cfgFile != "" {
		return cfgFile
	}
	return v.GetString("CONFIG_FILE")
}

// newManager builds a Manager registered with the full default schema
// and loads it from the resolved config path.
func newManager() (*configmanager.Manager, error) {
	registry := schema.NewRegistry()
	if err := registry.Register(schema.DefaultDescriptors()...); err != nil {
		return nil, fmt.Errorf("registering default schema: %w", err)
	}

	path := resolvePath()
	cliLogger := logger.NewLogger(logger.Config{
		Level:  logLevel,
		Format: "text",
		Output: "stderr",
	})
	m := configmanager.New(registry, configmanager.Options{
		Path:     path,
		Compress: compress,
		Logger:   cliLogger,
	})
	m.Load(context.Background())
	if frozenMarkerExists(path) {
		m.Freeze()
	}
	return m, nil
}

// frozenMarkerPath names the sidecar file used to persist the frozen
// flag across invocations, since the file backend only ever persists
// the flat config map itself.
func frozenMarkerPath(configPath string) string {
	return configPath + ".frozen"
}

func frozenMarkerExists(configPath string) bool {
	_, err := os.Stat(frozenMarkerPath(configPath))
	return err == nil
}
