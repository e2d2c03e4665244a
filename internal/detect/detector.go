// Package detect turns an ordered candidate list into conflict records
// by querying the judgment oracle in bounded concurrent batches.
// Failures are isolated per pair: a timeout, provider error, or
// malformed response contributes zero records and never aborts its
// batch or the run.
package detect

import (
	"context"
	"fmt"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mkratov/concordia/internal/model"
	"github.com/mkratov/concordia/internal/oracle"
	"github.com/mkratov/concordia/internal/progress"
)

// progressEvery paces progress updates: one per this many completed
// comparisons, plus a final update at 100%
const progressEvery = 5

// Detector dispatches candidate pairs to the oracle
type Detector struct {
	judge     oracle.Judge
	tracker   *progress.Tracker // Optional; nil disables reporting
	batchSize int
}

// NewDetector creates a detector. The tracker may be nil when no
// observer needs progress.
func NewDetector(judge oracle.Judge, tracker *progress.Tracker, cfg model.DetectionConfig) *Detector {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Detector{judge: judge, tracker: tracker, batchSize: batchSize}
}

// Run evaluates every candidate pair and returns the accepted conflict
// records plus the number of comparisons performed. Within a batch all
// oracle calls run concurrently; batch N+1 never starts before batch N
// fully resolves, bounding outstanding calls to the batch size.
// Records are sorted by severity (high first) with generation order
// breaking ties.
func (d *Detector) Run(ctx context.Context, documentID string, pairs []model.CandidatePair) ([]model.ConflictRecord, int, error) {
	if d.judge == nil {
		return nil, 0, fmt.Errorf("no judgment provider configured")
	}

	total := len(pairs)
	var conflicts []model.ConflictRecord
	comparisons := 0

	type outcome struct {
		verdict oracle.Verdict
		err     error
	}

	for start := 0; start < total; start += d.batchSize {
		end := start + d.batchSize
		if end > total {
			end = total
		}
		batch := pairs[start:end]
		outcomes := make([]outcome, len(batch))

		var g errgroup.Group
		for i, pair := range batch {
			i, pair := i, pair
			g.Go(func() error {
				v, err := d.judge.Judge(ctx, pair.FactA, pair.FactB)
				outcomes[i] = outcome{verdict: v, err: err}
				return nil // Failures stay in the outcome slot
			})
		}
		_ = g.Wait()

		for i, out := range outcomes {
			comparisons++

			if d.tracker != nil && comparisons%progressEvery == 0 {
				d.tracker.Update(documentID, progress.Update{
					Current:    progress.IntOf(comparisons),
					Message:    progress.StringOf(fmt.Sprintf("Checking for contradictions (%d/%d)", comparisons, total)),
					SubMessage: progress.StringOf(fmt.Sprintf("%d conflicts found so far", len(conflicts))),
				})
			}

			if out.err != nil {
				log.Printf("detect: comparison failed for pair %v: %v", batch[i].Key(), out.err)
				continue
			}
			if !out.verdict.HasConflict {
				continue
			}

			conflicts = append(conflicts, model.ConflictRecord{
				ConflictID:   fmt.Sprintf("conflict_%s_%d", documentID, len(conflicts)),
				FactA:        model.RefOf(batch[i].FactA),
				FactB:        model.RefOf(batch[i].FactB),
				ConflictType: out.verdict.ConflictType,
				Severity:     out.verdict.Severity,
				Explanation:  out.verdict.Explanation,
				Confidence:   out.verdict.Confidence,
			})
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Severity.Rank() < conflicts[j].Severity.Rank()
	})

	if d.tracker != nil {
		d.tracker.Update(documentID, progress.Update{
			Current:    progress.IntOf(comparisons),
			Total:      progress.IntOf(total),
			Message:    progress.StringOf(fmt.Sprintf("Contradiction check complete (%d comparisons)", comparisons)),
			SubMessage: progress.StringOf(fmt.Sprintf("%d conflicts found", len(conflicts))),
		})
	}

	return conflicts, comparisons, nil
}
