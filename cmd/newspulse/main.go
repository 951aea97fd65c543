// NewsPulse: news sentiment reports for companies
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/newspulse/api"
	"github.com/seenimoa/newspulse/internal/companies"
	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/internal/engine"
	"github.com/seenimoa/newspulse/internal/logger"
	"github.com/seenimoa/newspulse/internal/report"
	"github.com/seenimoa/newspulse/internal/scheduler"
	"github.com/seenimoa/newspulse/internal/speech"
	"github.com/seenimoa/newspulse/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newspulse",
	Short: "NewsPulse: news sentiment reports for companies",
	Long: `NewsPulse fetches recent news about a company, classifies each article's
sentiment, extracts topics, compares coverage across articles and produces
a report with a spoken verdict.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(serveCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("NewsPulse %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  NewsPulse System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):    %s\n", time.Now().UTC().Format("02 Jan 2006, 15:04"))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    News Feed:     %s (max %d articles)\n", cfg.News.FeedURL, cfg.News.MaxArticles)
		fmt.Printf("    Companies:     %s\n", cfg.Companies.File)
		fmt.Printf("    Storage:       %s\n", cfg.Storage.Driver)
		fmt.Printf("    Redis Cache:   %t (%s)\n", cfg.Cache.Enabled, cfg.Cache.RedisAddr)
		fmt.Printf("    Speech:        %s\n", cfg.Speech.Language)
		fmt.Printf("    Schedule:      %s (%s)\n", cfg.Schedule.Cron, cfg.Schedule.Timezone)
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Println()

		if list, err := companies.Load(cfg.Companies.File); err != nil {
			fmt.Printf("  Company list:  ❌ %v\n", err)
		} else {
			fmt.Printf("  Company list:  %d companies\n", len(list))
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			fmt.Printf("  Reports:       ❌ %v\n", err)
		} else {
			defer a.Close()
			stored, err := a.store.List(cmd.Context())
			if err != nil {
				fmt.Printf("  Reports:       ❌ %v\n", err)
			} else {
				fmt.Printf("  Reports:       %d stored\n", len(stored))
			}
		}
		fmt.Println()

		fmt.Println("  Credentials:")
		for _, k := range config.CheckCredentials(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [company]",
	Short: "Analyze recent news about a company",
	Long: `Fetch recent news about a company (or read articles from a JSON file
with --input) and print the sentiment report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		company := args[0]
		input, _ := cmd.Flags().GetString("input")
		formatStr, _ := cmd.Flags().GetString("format")
		save, _ := cmd.Flags().GetBool("save")

		format, err := report.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var articles []models.ArticleInput
		if input != "" {
			articles, err = readArticles(input)
		} else {
			articles, err = a.source.FetchArticles(ctx, company, cfg.News.MaxArticles)
		}
		if err != nil {
			return err
		}

		var rep *models.Report
		if save {
			a.dropStaleAudio()
			if rep, err = a.runner.Analyze(ctx, company, articles); err != nil {
				return err
			}
		} else {
			rep = engine.Analyze(company, articles)
		}

		return report.Render(os.Stdout, rep, format, report.Options{})
	},
}

func init() {
	analyzeCmd.Flags().String("input", "", "read articles from a JSON file instead of fetching news")
	analyzeCmd.Flags().String("format", "text", "output format: json, yaml, text or html")
	analyzeCmd.Flags().Bool("save", false, "store the report")
}

// readArticles loads a JSON array of {title, content} objects, or an object
// with an "articles" field holding one.
func readArticles(path string) ([]models.ArticleInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}
	var articles []models.ArticleInput
	if err := json.Unmarshal(data, &articles); err == nil {
		return articles, nil
	}
	var wrapped struct {
		Articles []models.ArticleInput `json:"articles"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse articles %s: %w", path, err)
	}
	return wrapped.Articles, nil
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build and store reports for every company in the list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		a.dropStaleAudio()

		sum, err := a.runAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Processed %d, skipped %d, failed %d in %s\n",
			len(sum.Processed), len(sum.Skipped), len(sum.Failed), sum.Duration.Round(time.Millisecond))
		return nil
	},
}

// --- Schedule Command ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the batch pipeline on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		now, _ := cmd.Flags().GetBool("now")

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		a.dropStaleAudio()

		sched, err := a.startScheduler(ctx)
		if err != nil {
			return err
		}
		if now {
			if _, err := a.runAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.WithError(err).Error("initial run failed")
			}
		}

		<-ctx.Done()
		stopCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
		defer stop()
		return sched.Stop(stopCtx)
	},
}

func init() {
	scheduleCmd.Flags().Bool("now", false, "also run once immediately")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		withSchedule, _ := cmd.Flags().GetBool("schedule")

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := api.NewServer(api.Deps{
			Config: cfg,
			Store:  a.store,
			Runner: a.runner,
			Speech: speech.New(cfg.Speech, a.log),
			Log:    a.log,
		})

		var sched *scheduler.Scheduler
		if withSchedule {
			if sched, err = a.startScheduler(ctx); err != nil {
				return err
			}
		}

		fmt.Printf("🌐 Starting NewsPulse API server on %s\n", cfg.API.Addr())
		serveErr := srv.ListenAndServe(ctx, cfg.API.Addr())

		if sched != nil {
			stopCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
			defer stop()
			if err := sched.Stop(stopCtx); err != nil {
				a.log.WithError(err).Warn("scheduler did not stop cleanly")
			}
		}
		return serveErr
	},
}

func init() {
	serveCmd.Flags().Bool("schedule", false, "also run the batch pipeline on the configured cron schedule")
}
