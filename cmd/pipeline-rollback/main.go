// Command pipeline-rollback manages the latest deployed commit pointer of an
// S3-backed artifact store behind an AWS CodePipeline pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin/v2"

	rollback "github.com/input-output-hk/pipeline-rollback"
	rberrors "github.com/input-output-hk/pipeline-rollback/errors"
	"github.com/input-output-hk/pipeline-rollback/internal/awsretry"
)

var (
	pipelineName = kingpin.Flag("pipeline-name", "CodePipeline pipeline that owns the deploy bucket.").
			Required().Envar("ROLLBACK_PIPELINE_NAME").String()
	commit = kingpin.Flag("commit", "Commit to repoint the latest prefix to.").String()
	region = kingpin.Flag("region", "AWS region override.").String()
	list   = kingpin.Flag("list", "Print the deployed commit history and exit.").Bool()
	dryRun = kingpin.Flag("dry-run", "Print the rollback plan without mutating the store.").Bool()
	debug  = kingpin.Flag("debug", "Enable debug logging.").Bool()
)

func main() {
	kingpin.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(*debug)

	if err := run(ctx, logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, logger *slog.Logger) error {
	if !*list && *commit == "" {
		return fmt.Errorf("either --list or --commit is required")
	}

	opts := []rollback.Option{
		rollback.WithLogger(logger),
		rollback.WithRetryer(awsretry.New(awsretry.DefaultMaxAttempts)),
	}
	if *region != "" {
		opts = append(opts, rollback.WithRegion(*region))
	}

	tool, err := rollback.New(ctx, opts...)
	if err != nil {
		return err
	}

	if *list {
		return printHistory(ctx, tool)
	}
	if *dryRun {
		return printPlan(ctx, tool)
	}

	result, err := tool.Rollback(ctx, *pipelineName, *commit)
	if err != nil {
		return err
	}

	fmt.Printf("latest now points at %s (%d objects copied, %d stale removed, took %s)\n",
		result.Commit, result.Copied, result.Deleted, result.Duration.Round(time.Millisecond))
	return nil
}

// printHistory renders the commit history table, newest first, with a
// summary line for the current latest pointer when one exists.
func printHistory(ctx context.Context, tool *rollback.Tool) error {
	releases, err := tool.History(ctx, *pipelineName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "COMMIT\tDEPLOYED\tOBJECTS\tSIZE")
	for _, r := range releases {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			r.Commit, r.LastModified.Format(time.RFC3339), r.Objects, formatBytes(r.Bytes))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	latest, err := tool.Latest(ctx, *pipelineName)
	if err != nil {
		if errors.Is(err, rberrors.ErrLatestMissing) {
			fmt.Println("\nlatest: empty (nothing deployed yet)")
			return nil
		}
		return err
	}
	fmt.Printf("\nlatest: %d objects, %s, last deployed %s\n",
		latest.Objects, formatBytes(latest.Bytes), latest.LastModified.Format(time.RFC3339))
	return nil
}

// printPlan renders the delete/copy plan of a rollback without executing it.
func printPlan(ctx context.Context, tool *rollback.Tool) error {
	plan, err := tool.PlanRollback(ctx, *pipelineName, *commit)
	if err != nil {
		return err
	}

	fmt.Printf("rollback to %s would:\n", plan.Commit)
	for _, key := range plan.Delete {
		fmt.Printf("  delete %s\n", key)
	}
	for _, pair := range plan.Copy {
		fmt.Printf("  copy   %s -> %s\n", pair.Source, pair.Dest)
	}
	fmt.Printf("(%d deletions, %d copies)\n", len(plan.Delete), len(plan.Copy))
	return nil
}

// formatBytes renders a byte count in a compact human unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
