package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkratov/concordia/internal/pipeline"
	"github.com/mkratov/concordia/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple documents from a list file in parallel",
	Long: `Batch analyzes multiple documents concurrently:
- Read document paths from a list file (one per line, # for comments)
- Analyze documents in parallel with a configurable worker count
- Write one JSON report per document to the output directory

Example:
  concordia batch documents.txt
  concordia batch documents.txt --concurrency 8 --output-dir ./reports
  concordia batch documents.txt --provider deepseek --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (0: use config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./concordia-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().StringVar(&provider, "provider", "", "judgment provider (openai, deepseek, ollama)")
	batchCmd.Flags().StringVar(&providerModel, "model", "", "judgment model name")
	batchCmd.Flags().BoolVar(&useSimilarity, "similarity", false, "use the similarity prefilter for candidate pairs")
	batchCmd.Flags().BoolVar(&noStore, "no-store", false, "disable result persistence")
	batchCmd.Flags().StringVar(&storeDir, "store-dir", "", "store directory (default: user cache dir)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	listPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	applyAnalyzeFlags(cfg)
	if concurrency > 0 {
		cfg.Concurrency.BatchWorkers = concurrency
	}
	if err := applyProviderEnv(cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.FromConfig(cfg, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Input list: %s\n", listPath)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "Output dir: %s\n\n", outputDir)

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)
	results, err := processor.ProcessList(ctx, listPath)
	if err != nil {
		return err
	}

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", r.Path, r.Err)
			continue
		}
		succeeded++

		reportPath := filepath.Join(outputDir, r.DocumentID+".json")
		if err := writeResult(r.Result, reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", r.Path, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "OK   %s: %d conflicts in %d comparisons\n",
			r.DocumentID, r.Result.ConflictsFound, r.Result.TotalComparisons)
	}

	fmt.Fprintf(os.Stderr, "\nTotal: %d  Succeeded: %d  Failed: %d\n", len(results), succeeded, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}
