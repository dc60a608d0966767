package cli

import (
	"github.com/spf13/cobra"

	"github.com/archivelab/papertrail/internal/adapters/driven/config/file"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show pipeline settings",
	Long: `Shows the effective pipeline settings: the defaults overlaid with
anything set in settings.toml under the config directory.`,
	RunE: runSettingsShow,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		store, err := file.NewSettingsStore(a.configDir)
		if err != nil {
			return err
		}
		cmd.Println(store.Path())
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	s := a.settings

	cmd.Println("[ingest]")
	cmd.Printf("  user_agent:      %s\n", s.Ingest.UserAgent)
	cmd.Printf("  timeout:         %ds\n", s.Ingest.TimeoutSeconds)
	cmd.Printf("  retry_max:       %d\n", s.Ingest.RetryMax)
	cmd.Printf("  backoff:         %.1fs base, %.1fs cap\n", s.Ingest.BackoffBaseSeconds, s.Ingest.BackoffCapSeconds)
	if s.Ingest.CookieJarPath != "" {
		cmd.Printf("  cookie_jar:      %s\n", s.Ingest.CookieJarPath)
	}
	cmd.Println()

	cmd.Println("[analysis]")
	cmd.Printf("  image_max_chars: %d\n", s.Analysis.ImageMaxChars)
	cmd.Printf("  text_min_chars:  %d\n", s.Analysis.TextMinChars)
	cmd.Printf("  ocr_threshold:   %.0f\n", s.Analysis.OCRQualityThreshold)
	cmd.Printf("  ocr_max_pages:   %d\n", s.Analysis.OCRMaxPages)
	cmd.Printf("  dpi_bands:       %d/%d/%d\n", s.Analysis.DPISmall, s.Analysis.DPIMedium, s.Analysis.DPILarge)
	cmd.Printf("  early_exit:      %.0f\n", s.Analysis.EarlyExitConfidence)
	cmd.Println()

	cmd.Println("[index]")
	cmd.Printf("  min_token_len:   %d\n", s.Index.MinTokenLength)
	cmd.Println()

	cmd.Printf("Data directory: %s\n", a.dataDir)
	return nil
}
