package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"newsbrief/internal/app"
	"newsbrief/internal/config"
	"newsbrief/internal/logging"
)

var (
	cfgPath  string
	testMode bool
)

var rootCmd = &cobra.Command{
	Use:   "newsbrief",
	Short: "Collects, scores, and mails a curated news digest",
	Long: `newsbrief collects items from configured RSS feeds and websites,
scores them for topical relevance, curates the best ones into an HTML
digest, and emails it to the active subscribers.

Example usage:
  newsbrief run             # one full run: collect, curate, deliver
  newsbrief run --test      # produce only the reviewable digest file
  newsbrief preview         # alias for run --test
  newsbrief schedule        # keep running on the configured cron expression`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one pipeline run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), testMode)
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Produce the digest file without delivering anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), true)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on the configured cron expression",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(cfgPath)
		logger := logging.New(cfg.Logging.Level)
		application := app.New(cfg, logger)
		return application.RunScheduled(cmd.Context())
	},
}

func runOnce(ctx context.Context, test bool) error {
	cfg := config.Load(cfgPath)
	logger := logging.New(cfg.Logging.Level)
	application := app.New(cfg, logger)

	result, err := application.RunOnce(ctx, test)
	if err != nil {
		return err
	}

	fmt.Printf("collected %d items, curated %d, digest at %s\n",
		result.Collected, result.Curated, result.DigestPath)
	if test {
		fmt.Println("test mode: nothing was sent")
	} else {
		fmt.Printf("delivered to %d recipients\n", result.Recipients)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default from NEWSBRIEF_CONFIG)")
	runCmd.Flags().BoolVar(&testMode, "test", false, "suppress delivery and logging, keep only the digest file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
