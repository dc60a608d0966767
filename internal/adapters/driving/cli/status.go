package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/archivelab/papertrail/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline progress",
	Long: `Summarises the pipeline state: per-source ingestion progress,
catalog size, analysis coverage and the published index manifest.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if reg, err := a.loadRegistry(); err == nil {
		cmd.Println("Sources:")
		for _, src := range reg.Sources {
			state, err := a.states.Load(ctx, src.ID)
			if err != nil {
				cmd.Printf("  %-20s state unreadable: %v\n", src.ID, err)
				continue
			}
			cmd.Printf("  %-20s %d seen, %d failing, cursor %q\n",
				src.ID, len(state.Seen), len(state.Failed), state.Cursor)
		}
		cmd.Println()
	}

	entries, err := a.catalog.Load(ctx)
	if err != nil {
		return err
	}
	analysed := 0
	for i := range entries {
		if entries[i].Extraction != nil {
			analysed++
		}
	}
	cmd.Printf("Catalog: %d documents, %d analysed\n", len(entries), analysed)

	manifest, err := a.shards.LoadManifest(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		cmd.Println("Index:   not built yet")
	case err != nil:
		return err
	default:
		cmd.Printf("Index:   %d shards, %d documents, built %s\n",
			len(manifest.Shards), manifest.TotalDocs, manifest.GeneratedAt)
	}
	return nil
}
