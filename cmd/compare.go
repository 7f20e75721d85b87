package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"twmods/core/config"
	"twmods/core/database"
	"twmods/core/logger"
	"twmods/feature/comparison"
	"twmods/feature/workshop"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the compare command
	csvOutPath  string
	jsonOutPath string
	allPages    bool
)

// compareCmd compares local manifest files without running the server.
var compareCmd = &cobra.Command{
	Use:   "compare FILE...",
	Short: "Compare local .twmods manifest files",
	Long: `Compare one or more local .twmods manifest files.

Parses each file, enriches the mods with Steam Workshop metadata (using the
same durable cache as the server), and prints the comparison table.

Examples:
  # Compare two manifests
  twmods compare before.twmods after.twmods

  # Print every page and write both exports
  twmods compare --all-pages --csv out.csv --json out.json a.twmods b.twmods`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&csvOutPath, "csv", "", "Write the full table as CSV to this path")
	compareCmd.Flags().StringVar(&jsonOutPath, "json", "", "Write the full table as JSON to this path")
	compareCmd.Flags().BoolVar(&allPages, "all-pages", false, "Print every page instead of only the first")

	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Connect to the cache database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to cache database: %w", err)
	}

	cache, err := workshop.NewCache(db, l)
	if err != nil {
		return fmt.Errorf("failed to initialize workshop cache: %w", err)
	}
	defer cache.Close()

	client := workshop.NewClient(cfg.Workshop, l)
	sessions := comparison.NewSessionStore()
	service := comparison.NewService(cache, client, nil, "", sessions, l, cfg.Server.MaxUploadBytes())

	files := make([]comparison.NamedFile, 0, len(args))
	for _, arg := range args {
		content, err := os.ReadFile(arg)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", arg, err)
		}
		files = append(files, comparison.NamedFile{
			Name:    filepath.Base(arg),
			Content: string(content),
		})
	}

	const cliUser = "cli"
	resp, err := service.Compare(ctx, files, cliUser)
	if err != nil {
		return err
	}

	fmt.Println(resp.SummaryText)
	fmt.Println()
	fmt.Println(resp.Page.Content)

	if allPages {
		page := resp.Page
		for page.PageNumber < page.TotalPages {
			page, err = sessions.Navigate(resp.SessionID, cliUser, comparison.ActionNext)
			if err != nil {
				return err
			}
			fmt.Println(page.Content)
		}
	}

	if csvOutPath != "" {
		if err := os.WriteFile(csvOutPath, []byte(resp.CSVExport), 0o644); err != nil {
			return fmt.Errorf("failed to write CSV export: %w", err)
		}
		l.Info("Wrote CSV export", zap.String("path", csvOutPath))
	}

	if jsonOutPath != "" {
		if err := os.WriteFile(jsonOutPath, []byte(resp.JSONExport), 0o644); err != nil {
			return fmt.Errorf("failed to write JSON export: %w", err)
		}
		l.Info("Wrote JSON export", zap.String("path", jsonOutPath))
	}

	return nil
}
