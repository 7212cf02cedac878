package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"examples-db/internal/compare"
	"examples-db/internal/config"
	"examples-db/internal/logging"
	"examples-db/internal/pipeline"
	"examples-db/internal/watch"
)

var (
	configPath string
	verbose    bool
	noProgress bool
	logger     *zap.Logger
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var rootCmd = &cobra.Command{
	Use:   "examples-db",
	Short: "Generate the examples database from the examples directory",
	Long: `examples-db reads a directory of example games, infers tags, licenses and
authors from the folder layout and its metadata files, and writes the JSON
database consumed by the editor: one record per example, the short headers
list and the tag filters.

Any data error (invalid JSON, unknown license, missing README...) aborts the
run before anything is written.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGenerate,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the database (default command)",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show how the database would change, without writing it",
	Long: `Regenerates the catalog in memory and compares it with the manifest of the
database directory. Exits with status 1 when the database is out of date.`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the database whenever the examples directory changes",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "examples-db.yaml", "Config file path")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	flags.String("examples", "", "Examples directory (overrides examples_dir)")
	viper.BindPFlag("examples_dir", flags.Lookup("examples"))
	flags.String("database", "", "Database output directory (overrides database_dir)")
	viper.BindPFlag("database_dir", flags.Lookup("database"))
	flags.IntP("concurrency", "w", 0, "Number of files read concurrently (overrides concurrency)")
	viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	flags.String("sqlite", "", "Also export the catalog to this SQLite file")
	viper.BindPFlag("sqlite", flags.Lookup("sqlite"))

	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before regenerating")
	viper.BindPFlag("debounce", watchCmd.Flags().Lookup("debounce"))

	viper.SetEnvPrefix("EXAMPLES_DB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(generateCmd, diffCmd, watchCmd)
}

// loadOptions merges the config file with flags and EXAMPLES_DB_* variables.
func loadOptions() (pipeline.Options, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("failed to load config: %w", err)
	}

	if viper.IsSet("examples_dir") {
		cfg.ExamplesDir = viper.GetString("examples_dir")
	}
	if viper.IsSet("database_dir") {
		cfg.DatabaseDir = viper.GetString("database_dir")
	}
	if viper.IsSet("concurrency") {
		cfg.Concurrency = viper.GetInt("concurrency")
	}

	return pipeline.Options{
		Config:       cfg,
		Logger:       logger,
		ShowProgress: !noProgress,
		SQLitePath:   viper.GetString("sqlite"),
	}, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	report, err := pipeline.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Database generated\n")
	fmt.Printf("  Examples: %d\n", report.Examples)
	fmt.Printf("  Tags: %d\n", report.Tags)
	fmt.Printf("  Output: %s\n", opts.Config.DatabaseDir)
	printSummary(report.Diff)
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	opts.ShowProgress = false

	result, err := pipeline.Diff(cmd.Context(), opts)
	if err != nil {
		return err
	}

	fmt.Println(compare.FormatReport(result))
	if result.HasChanges() {
		return &exitError{code: 1}
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	opts.ShowProgress = false

	rebuild := func(ctx context.Context) error {
		report, err := pipeline.Run(ctx, opts)
		if err != nil {
			return err
		}
		logger.Info("database regenerated",
			zap.Int("examples", report.Examples),
			zap.Int("added", len(report.Diff.Added)),
			zap.Int("modified", len(report.Diff.Modified)),
			zap.Int("deleted", len(report.Diff.Deleted)))
		return nil
	}

	if err := rebuild(cmd.Context()); err != nil {
		logger.Error("initial generation failed", zap.Error(err))
	}

	w, err := watch.New(opts.Config.ExamplesDir, viper.GetDuration("debounce"), rebuild, logger)
	if err != nil {
		return err
	}
	logger.Info("watching for changes", zap.String("dir", opts.Config.ExamplesDir))

	if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printSummary(diff *compare.Result) {
	if !diff.HasChanges() {
		fmt.Println("  Database was already up to date")
		return
	}
	fmt.Printf("  Changes: %d added, %d modified, %d deleted\n",
		len(diff.Added), len(diff.Modified), len(diff.Deleted))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}

	var abort *pipeline.AbortError
	if errors.As(err, &abort) {
		fmt.Fprintf(os.Stderr, "There were errors while building the examples database (%s):\n", abort.Stage)
		for _, e := range abort.Errors {
			fmt.Fprintf(os.Stderr, "  - %v\n", e)
		}
		fmt.Fprintln(os.Stderr, "Aborting because of these errors.")
		os.Exit(2)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
