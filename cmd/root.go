package cmd

import (
	"fmt"
	"os"

	"twmods/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "twmods",
	Short: "Total War mod list comparison service",
	Long: `twmods ingests .twmods mod-list manifests, enriches them with Steam
Workshop metadata through a durable cache, and produces a deduplicated
multi-file comparison with paginated rendering and CSV/JSON export.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with debug level gives readable ISO8601 output for
		// a CLI failure report.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
