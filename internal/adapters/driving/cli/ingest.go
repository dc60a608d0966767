package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driving"
)

var (
	ingestSources      []string
	ingestMaxDownloads int
	ingestMaxBytes     int64
	ingestTimeBudget   time.Duration
	ingestWorkers      int
	ingestWatch        bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Download documents from configured sources",
	Long: `Discovers and downloads documents from the sources registered in
sources.yaml. Runs are resumable: completed items are never
re-downloaded and interrupted runs pick up where they left off.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringSliceVarP(&ingestSources, "source", "s", nil, "restrict the run to these source IDs")
	ingestCmd.Flags().IntVar(&ingestMaxDownloads, "max-downloads", 0, "cap stored documents per source (0 = unlimited)")
	ingestCmd.Flags().Int64Var(&ingestMaxBytes, "max-bytes", 0, "cap downloaded bytes for the run (0 = unlimited)")
	ingestCmd.Flags().DurationVar(&ingestTimeBudget, "time-budget", 0, "stop the run after this long (0 = unlimited)")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "concurrent source workers (0 = default)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep watching dropfolder sources for new files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ingestor, err := a.newIngestor(ingestWatch)
	if err != nil {
		return err
	}

	report, err := ingestor.Run(cmd.Context(), driving.IngestOptions{
		SourceIDs:             ingestSources,
		MaxDownloadsPerSource: ingestMaxDownloads,
		MaxBytesPerRun:        ingestMaxBytes,
		TimeBudget:            ingestTimeBudget,
		Workers:               ingestWorkers,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printRunReport(cmd, report)
	return nil
}

func printRunReport(cmd *cobra.Command, report *domain.RunReport) {
	cmd.Printf("Run %s (%s)\n\n", report.RunID, report.FinishedAt.Sub(report.StartedAt).Round(time.Second))
	for _, src := range report.Sources {
		if src.Blocked {
			cmd.Printf("  %-20s BLOCKED: %s\n", src.SourceID, src.Reason)
			continue
		}
		cmd.Printf("  %-20s %d discovered, %d stored, %d skipped, %d retrying, %d failed (%d bytes)\n",
			src.SourceID, src.Discovered, src.Stored, src.Skipped, src.Retrying, src.Failed, src.BytesFetched)
	}
	stored, skipped, failed := report.Totals()
	cmd.Printf("\nTotal: %d stored, %d skipped, %d failed\n", stored, skipped, failed)
	if report.BudgetExhausted {
		cmd.Println("Run stopped on its budget; rerun to continue.")
	}
}
