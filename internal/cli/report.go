package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkratov/concordia/internal/store"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <document-id>",
	Short: "Show the stored analysis result for a document",
	Long: `Report prints the most recent stored detection result for a
document analyzed earlier. Results expire with the store TTL.

Example:
  concordia report 7c9e6679-7425-40de-944b-e07fc1f90ae7
  concordia report monthly-status --json findings.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: stdout)")
	reportCmd.Flags().StringVar(&storeDir, "store-dir", "", "store directory (default: user cache dir)")
}

func runReport(cmd *cobra.Command, args []string) error {
	docID := args[0]

	cfg := loadConfig()
	if storeDir != "" {
		cfg.Store.Dir = storeDir
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}

	result, err := st.GetResult(docID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no stored result for document %s", docID)
		}
		return err
	}

	printSummary(result)
	return writeResult(result, outJSON)
}
