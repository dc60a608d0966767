package cli

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check catalog, raw storage and index integrity",
	Long: `Cross-checks the catalog against raw storage and the published
shard manifest: every entry has its bytes, nothing is stored without a
catalog record and the shards partition the catalog exactly.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	if err := a.validator.Validate(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Integrity check passed.")
	return nil
}
