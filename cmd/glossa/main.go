package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jward/glossa"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "glossa",
	Short:         "Canonical language metadata graph",
	Long:          "Glossa merges language metadata from multiple catalogs into a canonical graph of languoids, scripts, and regions, stored as a SQLite artifact for code lookup, conversion, and traversal queries.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "glossa.db", "graph artifact path")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(guessCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(descendantsCmd)
	rootCmd.AddCommand(scriptsCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statsCmd)
}

var (
	flagSources    []string
	flagPriorities string
	flagParallel   int
	flagVerbose    bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the graph artifact from source files",
	Long:  "Ingests one JSON-lines file per source, resolves entity identities across sources, merges fields by source priority, and writes the graph artifact.",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringArrayVar(&flagSources, "source", nil, "source input as tag=path (repeatable, e.g. --source glottolog=glottolog.jsonl)")
	buildCmd.Flags().StringVar(&flagPriorities, "priorities", "", "YAML priority table (default: built-in)")
	buildCmd.Flags().IntVar(&flagParallel, "parallel", 0, "merge worker count (default: one per CPU)")
	buildCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "log build progress to stderr")
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()

	if len(flagSources) == 0 {
		return fmt.Errorf("at least one --source tag=path is required")
	}

	builder := glossa.NewBuilder()

	if flagPriorities != "" {
		pri, err := glossa.LoadPriorities(flagPriorities)
		if err != nil {
			return err
		}
		builder.WithPriorities(pri)
	}
	if flagParallel > 0 {
		builder.WithParallel(flagParallel)
	}
	if flagVerbose {
		cfg := zap.NewDevelopmentConfig()
		log, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer log.Sync()
		builder.WithLogger(log)
	}

	for _, spec := range flagSources {
		tag, path, found := strings.Cut(spec, "=")
		if !found || tag == "" || path == "" {
			return fmt.Errorf("invalid --source %q: expected tag=path", spec)
		}
		builder.AddSource(glossa.NewJSONLAdapter(tag, path))
	}

	db, err := builder.Build(context.Background())
	if err != nil {
		return err
	}
	if err := db.Save(flagDB); err != nil {
		return err
	}

	stats := db.Stats()
	report := db.Report()
	fmt.Fprintf(os.Stderr, "Built %d languoids, %d scripts, %d regions in %s\n",
		stats.Languoids, stats.Scripts, stats.Regions,
		time.Since(start).Round(time.Millisecond))
	if len(report.Conflicts) > 0 || len(report.Dangling) > 0 || report.Malformed > 0 {
		fmt.Fprintf(os.Stderr, "Report: %d conflicts, %d dangling refs, %d malformed records (see 'glossa report')\n",
			len(report.Conflicts), len(report.Dangling), report.Malformed)
	}
	fmt.Fprintf(os.Stderr, "Artifact: %s\n", flagDB)

	return nil
}

// loadDatabase opens the artifact from the --db flag path.
func loadDatabase() (*glossa.Database, error) {
	if _, err := os.Stat(flagDB); os.IsNotExist(err) {
		return nil, fmt.Errorf("artifact not found: %s (run 'glossa build' first)", flagDB)
	}
	return glossa.Load(context.Background(), flagDB)
}
