package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/config"
	"alfredoptarigan/ats-checker/internal/logger"
)

const app = "ats-checker"

// Actual version can be specified in build command.
var version = "dev"

var (
	debugFlag bool
	jsonFlag  bool

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "ats-checker scores resumes against job descriptions for ATS compatibility",
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s version: %s\n", app, version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "verbose/debug output (overrides LOG_DEBUG)")
	rootCmd.PersistentFlags().BoolVarP(&jsonFlag, "json", "j", false, "json format for logging (overrides LOG_JSON)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger) {
	cfg := config.Load()

	if debugFlag {
		cfg.Log.Debug = true
	}
	if jsonFlag {
		cfg.Log.JSON = true
	}

	return cfg, logger.New(cfg.Log.JSON, cfg.Log.Debug, cfg.Server.Env)
}
