package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/seosmith/internal/config"
	"github.com/amosWeiskopf/seosmith/pkg/crawler"
	"github.com/amosWeiskopf/seosmith/pkg/reporter"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "seosmith",
	Short: "SEOSmith - concurrent SEO crawler and analyzer",
	Long: `SEOSmith crawls a website concurrently, extracts SEO signals
(titles, meta and OG tags, headings, links, images, keyword n-grams)
and aggregates them into a deduplicated site-level report, honoring
robots.txt and per-host crawl-delay.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [URL]",
	Short: "Crawl a site and produce an SEO report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startURL := args[0]

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cmd, cfg)

		logger := newLogger(cfg.LogLevel)

		c, err := crawler.New(startURL, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create crawler: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		result, err := c.Crawl(ctx)
		if err != nil {
			return fmt.Errorf("crawl failed: %w", err)
		}

		rendered, err := reporter.Render(result, cfg.OutputFormat)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}

		if output, _ := cmd.Flags().GetString("output"); output != "" {
			if err := os.WriteFile(output, []byte(rendered), 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			logger.Info().Str("path", output).Msg("report saved")
			return nil
		}
		fmt.Println(rendered)
		return nil
	},
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("follow-links") {
		cfg.FollowLinks, _ = cmd.Flags().GetBool("follow-links")
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("sitemap") {
		cfg.Sitemap, _ = cmd.Flags().GetString("sitemap")
	}
	if cmd.Flags().Changed("output-format") {
		cfg.OutputFormat, _ = cmd.Flags().GetString("output-format")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}

func init() {
	analyzeCmd.Flags().BoolP("follow-links", "l", false, "Follow internal links beyond the seed")
	analyzeCmd.Flags().Int("max-depth", 3, "Maximum link-following depth")
	analyzeCmd.Flags().Int("concurrency", 20, "Concurrent fetch slots")
	analyzeCmd.Flags().Int("workers", 0, "Analysis workers (default: host core count)")
	analyzeCmd.Flags().StringP("sitemap", "s", "", "Sitemap URL (XML urlset or newline-delimited text) to seed the crawl")
	analyzeCmd.Flags().StringP("output-format", "f", "json", "Output format (json, html)")
	analyzeCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	analyzeCmd.Flags().Duration("timeout", 0, "Overall crawl deadline (0 = none)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.PersistentFlags().String("config", "", "Config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
