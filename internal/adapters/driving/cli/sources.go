package cli

import (
	"github.com/spf13/cobra"

	"github.com/archivelab/papertrail/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources",
	Long:  `Lists the sources registered in sources.yaml.`,
	RunE:  runSourcesList,
}

var sourcesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every source is reachable",
	RunE:  runSourcesCheck,
}

func init() {
	sourcesCmd.AddCommand(sourcesCheckCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	reg, err := a.loadRegistry()
	if err != nil {
		return err
	}

	if len(reg.Sources) == 0 {
		cmd.Println("No sources configured.")
		return nil
	}

	for _, src := range reg.Sources {
		cmd.Printf("  %-20s %-12s %s\n", src.ID, src.Kind, src.BaseURL)
		if src.AuthMode != "" && src.AuthMode != "none" {
			cmd.Printf("  %-20s auth: %s\n", "", src.AuthMode)
		}
	}
	return nil
}

func runSourcesCheck(cmd *cobra.Command, _ []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	reg, err := a.loadRegistry()
	if err != nil {
		return err
	}

	failures := 0
	for _, src := range reg.Sources {
		adapter, err := sources.New(src, sources.Options{UserAgent: a.settings.Ingest.UserAgent})
		if err != nil {
			cmd.Printf("  %-20s ERROR: %v\n", src.ID, err)
			failures++
			continue
		}
		if err := adapter.Validate(cmd.Context()); err != nil {
			cmd.Printf("  %-20s FAIL: %v\n", src.ID, err)
			failures++
		} else {
			cmd.Printf("  %-20s ok\n", src.ID)
		}
		adapter.Close()
	}

	if failures > 0 {
		cmd.Printf("\n%d of %d sources failed validation\n", failures, len(reg.Sources))
	}
	return nil
}
