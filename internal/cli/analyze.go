package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mkratov/concordia/internal/ingest"
	"github.com/mkratov/concordia/internal/model"
	"github.com/mkratov/concordia/internal/pipeline"
	"github.com/mkratov/concordia/internal/progress"
)

var (
	outJSON        string
	documentID     string
	provider       string
	providerModel  string
	analyzeTimeout time.Duration
	useSimilarity  bool
	maxPairs       int
	batchSize      int
	noStore        bool
	storeDir       string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a document for fact conflicts and repetitions",
	Long: `Analyze reads a document and reports internal contradictions:
- Pair up facts that describe the same subject, number, or date
- Ask the configured judgment provider whether each pair conflicts
- Rank confirmed conflicts by severity
- Flag passages repeated verbatim across sections

The input is a JSON file with pre-extracted facts (and optionally
sections), or a raw HTML/Markdown/plain-text document. Raw documents
carry no facts, so only repetition analysis applies to them.

Example:
  concordia analyze report.json
  concordia analyze report.json --provider deepseek --similarity
  concordia analyze report.html --json findings.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: stdout)")
	analyzeCmd.Flags().StringVar(&documentID, "doc-id", "", "document id (default: from input, else generated)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 10*time.Minute, "overall analysis timeout")

	analyzeCmd.Flags().StringVar(&provider, "provider", "", "judgment provider (openai, deepseek, ollama)")
	analyzeCmd.Flags().StringVar(&providerModel, "model", "", "judgment model name")

	analyzeCmd.Flags().BoolVar(&useSimilarity, "similarity", false, "use the similarity prefilter for candidate pairs")
	analyzeCmd.Flags().IntVar(&maxPairs, "max-pairs", 0, "cap on candidate pairs (0: use config)")
	analyzeCmd.Flags().IntVar(&batchSize, "batch-size", 0, "judgment batch size (0: use config)")

	analyzeCmd.Flags().BoolVar(&noStore, "no-store", false, "disable result persistence")
	analyzeCmd.Flags().StringVar(&storeDir, "store-dir", "", "store directory (default: user cache dir)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	cfg := loadConfig()
	applyAnalyzeFlags(cfg)
	if err := applyProviderEnv(cfg); err != nil {
		return err
	}

	doc, err := loadInput(path)
	if err != nil {
		return err
	}

	docID := documentID
	if docID == "" {
		docID = doc.DocumentID
	}
	if docID == "" {
		docID = uuid.NewString()
	}

	tracker := progress.NewTracker()
	p, err := pipeline.FromConfig(cfg, tracker)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	if cfg.Output.Verbose {
		wg.Add(1)
		sub := tracker.Subscribe(docID)
		go func() {
			defer wg.Done()
			for snap := range sub.Updates() {
				fmt.Fprintf(os.Stderr, "[%s] %.1f%% %s\n", snap.Stage, snap.Progress, snap.Message)
			}
		}()
		defer wg.Wait()
		defer tracker.Cleanup(docID)
	}

	result, err := p.Analyze(ctx, docID, doc.Facts, doc.Sections)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", path, err)
	}

	printSummary(result)
	return writeResult(result, outJSON)
}

// applyAnalyzeFlags overlays explicitly set flags onto the config
func applyAnalyzeFlags(cfg *model.Config) {
	if provider != "" {
		cfg.Oracle.Provider = provider
	}
	if providerModel != "" {
		cfg.Oracle.Model = providerModel
	}
	if useSimilarity {
		cfg.Similarity.Enabled = true
	}
	if maxPairs > 0 {
		cfg.Detection.MaxPairs = maxPairs
	}
	if batchSize > 0 {
		cfg.Detection.BatchSize = batchSize
	}
	if noStore {
		cfg.Store.Enabled = false
	}
	if storeDir != "" {
		cfg.Store.Dir = storeDir
	}
}

// applyProviderEnv fills provider credentials from the environment
func applyProviderEnv(cfg *model.Config) error {
	if cfg.Oracle.APIKey != "" {
		return nil
	}
	switch cfg.Oracle.Provider {
	case "openai":
		cfg.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Oracle.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "deepseek":
		cfg.Oracle.APIKey = os.Getenv("DEEPSEEK_API_KEY")
		if cfg.Oracle.APIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.Oracle.BaseURL == "" {
			cfg.Oracle.BaseURL = baseURL
		}
	}
	return nil
}

// loadInput reads analysis input by file type: JSON carries facts,
// HTML and Markdown are split into sections for repetition analysis.
func loadInput(path string) (*ingest.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ingest.LoadDocument(path)
	case ".html", ".htm":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		sections, err := ingest.SectionsFromHTML(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &ingest.Document{Sections: sections}, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		return &ingest.Document{Sections: ingest.SectionsFromText(string(data))}, nil
	}
}

// printSummary writes a human-readable digest to stderr
func printSummary(result *model.DetectionResult) {
	fmt.Fprintf(os.Stderr, "Document:    %s\n", result.DocumentID)
	fmt.Fprintf(os.Stderr, "Facts:       %d\n", result.TotalFacts)
	fmt.Fprintf(os.Stderr, "Comparisons: %d\n", result.TotalComparisons)
	fmt.Fprintf(os.Stderr, "Conflicts:   %d\n", result.ConflictsFound)
	for _, sev := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		if n := result.Statistics.BySeverity[sev]; n > 0 {
			fmt.Fprintf(os.Stderr, "  %-9s %d\n", string(sev)+":", n)
		}
	}
	if len(result.Repetitions) > 0 {
		fmt.Fprintf(os.Stderr, "Repetitions: %d\n", len(result.Repetitions))
	}
	if result.Message != "" {
		fmt.Fprintf(os.Stderr, "Note:        %s\n", result.Message)
	}
	fmt.Fprintln(os.Stderr)
}

// writeResult renders the result as JSON to a file or stdout
func writeResult(result *model.DetectionResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report written: %s\n", path)
	return nil
}
