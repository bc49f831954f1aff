package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jobdeck/importer/internal/config"
	"github.com/jobdeck/importer/internal/importer"
	"github.com/jobdeck/importer/internal/logging"
	"github.com/jobdeck/importer/internal/validate"
)

// Exit codes: 1 for fatal run errors, 2 when the file imported but
// validation found blocking errors.
const (
	exitFatal      = 1
	exitValidation = 2
)

func main() {
	file := flag.String("file", "", "path to the CSV file to import")
	jsonOut := flag.Bool("json", false, "print the full result as JSON")
	skipDedupe := flag.Bool("skip-dedupe", false, "skip duplicate detection")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: importer -file <path> [-json] [-skip-dedupe]")
		os.Exit(exitFatal)
	}

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(exitFatal)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"batch_size", cfg.Import.BatchSize,
		"group_threshold", cfg.Dedupe.GroupThreshold,
		"merge_threshold", cfg.Dedupe.MergeThreshold,
	)

	data, err := os.ReadFile(*file)
	if err != nil {
		slog.Error("failed to read input file", "file", *file, "error", err)
		os.Exit(exitFatal)
	}

	// Cancel the run on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := importer.Options{SkipDedupe: *skipDedupe}
	if !*jsonOut {
		opts.Progress = printProgress
	}

	res, err := importer.New(cfg).Run(ctx, data, opts)
	if err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(exitFatal)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			slog.Error("failed to encode result", "error", err)
			os.Exit(exitFatal)
		}
	} else {
		printSummary(res)
	}

	if hasErrors(res.Issues) {
		os.Exit(exitValidation)
	}
}

func printProgress(p importer.Progress) {
	if p.Total > 0 {
		fmt.Fprintf(os.Stderr, "[%3d%%] %s: %s (%d/%d)\n", p.Percent, p.Stage, p.Message, p.Current, p.Total)
		return
	}
	fmt.Fprintf(os.Stderr, "[%3d%%] %s: %s\n", p.Percent, p.Stage, p.Message)
}

func printSummary(res *importer.Result) {
	s := res.Summary
	fmt.Printf("Imported %d of %d rows (%d skipped, %d duplicates flagged, %d issues auto-corrected)\n",
		s.SuccessfulImports, s.TotalRows, s.SkippedRows, s.DuplicatesFound, s.IssuesResolved)

	if res.Mapping.Template != "" {
		fmt.Printf("Matched template: %s\n", res.Mapping.Template)
	}

	for _, issue := range res.Issues {
		marker := "warning"
		if issue.Severity == validate.SeverityError {
			marker = "ERROR"
		}
		fmt.Printf("  %s: %s\n", marker, issue)
	}

	for _, g := range res.Groups {
		fmt.Printf("Duplicate group %s (confidence %.2f, suggested: %s)\n",
			g.ID, g.Confidence, g.SuggestedResolution)
		for _, reason := range g.MatchReasons {
			fmt.Printf("  - %s\n", reason)
		}
	}

	for _, s := range res.Summary.Suggestions {
		fmt.Printf("Suggestion: %s\n", s)
	}
}

func hasErrors(issues []validate.Issue) bool {
	for _, i := range issues {
		if i.Severity == validate.SeverityError {
			return true
		}
	}
	return false
}
