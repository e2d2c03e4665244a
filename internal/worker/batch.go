package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mkratov/concordia/internal/ingest"
	"github.com/mkratov/concordia/internal/model"
)

// Analyzer runs the detection pipeline for one document
type Analyzer interface {
	Analyze(ctx context.Context, documentID string, facts []model.Fact, sections []model.Section) (*model.DetectionResult, error)
}

// AnalyzeJob analyzes one document file
type AnalyzeJob struct {
	Path     string
	Analyzer Analyzer
}

// AnalyzeResult pairs a document path with its analysis outcome
type AnalyzeResult struct {
	Path       string
	DocumentID string
	Result     *model.DetectionResult
	Err        error
}

// Execute loads the document and runs the analysis. The document id
// comes from the file itself when present, otherwise a fresh one is
// generated.
func (j AnalyzeJob) Execute(ctx context.Context) *AnalyzeResult {
	doc, err := ingest.LoadDocument(j.Path)
	if err != nil {
		return &AnalyzeResult{Path: j.Path, Err: err}
	}

	documentID := doc.DocumentID
	if documentID == "" {
		documentID = uuid.NewString()
	}

	result, err := j.Analyzer.Analyze(ctx, documentID, doc.Facts, doc.Sections)
	return &AnalyzeResult{
		Path:       j.Path,
		DocumentID: documentID,
		Result:     result,
		Err:        err,
	}
}

// BatchProcessor analyzes multiple document files concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessPaths analyzes the given document files concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*AnalyzeResult {
	if len(paths) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(AnalyzeJob{Path: path, Analyzer: b.analyzer})
	}

	return pool.Wait()
}

// ProcessList reads document paths from a list file and analyzes them
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*AnalyzeResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read document list: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file, one per line.
// Blank lines and # comments are skipped; duplicates are dropped.
// Relative paths resolve against the list file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open list: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan list: %w", err)
	}

	return paths, nil
}
