package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivelab/papertrail/internal/core/domain"
)

var (
	searchLimit    int
	searchJSON     bool
	searchFuzzy    bool
	searchSources  []string
	searchYears    []string
	searchCategory string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the built index",
	Long: `Runs a token query over the built search index. Matches titles,
content, tags, people and locations; --fuzzy also accepts tokens one
edit away.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "allow near-miss token matches")
	searchCmd.Flags().StringSliceVar(&searchSources, "source", nil, "restrict to source slugs")
	searchCmd.Flags().StringSliceVar(&searchYears, "year", nil, "restrict to release years")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict to one document category")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	results, err := a.search.Search(cmd.Context(), args[0], domain.SearchOptions{
		SourceSlugs: searchSources,
		Years:       searchYears,
		Category:    searchCategory,
		Fuzzy:       searchFuzzy,
		Limit:       searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Title
		if title == "" {
			title = results[i].DocumentID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		if results[i].SourceName != "" {
			cmd.Printf("      Source: %s  Released: %s\n", results[i].SourceName, results[i].ReleaseDate)
		}
		if results[i].Snippet != "" {
			cmd.Printf("      %s\n", results[i].Snippet)
		}
		cmd.Println()
	}
	return nil
}
