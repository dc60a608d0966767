package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivelab/papertrail/internal/core/ports/driving"
)

var (
	extractForce        bool
	extractNoOCR        bool
	extractMetadataOnly bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Analyse downloaded documents",
	Long: `Runs the analysis pipeline over every catalogued document:
extractability classification, embedded text extraction, adaptive OCR
for scanned documents and heuristic metadata extraction.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "re-analyse documents that already have results")
	extractCmd.Flags().BoolVar(&extractNoOCR, "no-ocr", false, "skip OCR even for image-only documents")
	extractCmd.Flags().BoolVar(&extractMetadataOnly, "metadata-only", false, "re-run metadata extractors over stored text only")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	report, err := a.extractor.Run(cmd.Context(), driving.ExtractOptions{
		Force:        extractForce,
		EnableOCR:    !extractNoOCR,
		MetadataOnly: extractMetadataOnly,
	})
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	cmd.Printf("Analysed %d documents: %d OCR, %d degraded, %d failed\n",
		report.Processed, report.OCRApplied, report.Degraded, report.Failed)
	return nil
}
