// Package pipeline composes the full document analysis: candidate
// generation, judgment dispatch, repetition detection, and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/mkratov/concordia/internal/detect"
	"github.com/mkratov/concordia/internal/model"
	"github.com/mkratov/concordia/internal/oracle"
	"github.com/mkratov/concordia/internal/pairgen"
	"github.com/mkratov/concordia/internal/progress"
	"github.com/mkratov/concordia/internal/repetition"
	"github.com/mkratov/concordia/internal/similarity"
	"github.com/mkratov/concordia/internal/store"
)

// Dependencies are the injectable collaborators of a Pipeline. Any of
// them may be nil: a nil Judge skips semantic judgment, a nil Store
// disables persistence, a nil Tracker disables progress reporting.
type Dependencies struct {
	Judge   oracle.Judge
	Store   *store.Store
	Tracker *progress.Tracker
}

// Pipeline orchestrates the complete analysis of one document
type Pipeline struct {
	cfg     *model.Config
	judge   oracle.Judge
	store   *store.Store
	tracker *progress.Tracker
}

// NewPipeline creates a pipeline with explicit dependencies
func NewPipeline(cfg *model.Config, deps Dependencies) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		judge:   deps.Judge,
		store:   deps.Store,
		tracker: deps.Tracker,
	}
}

// FromConfig wires a pipeline from configuration: judgment provider
// from cfg.Oracle, tiered store from cfg.Store.
func FromConfig(cfg *model.Config, tracker *progress.Tracker) (*Pipeline, error) {
	judge, err := oracle.NewJudge(oracle.ConfigFromModel(cfg.Oracle))
	if err != nil {
		return nil, fmt.Errorf("configure judgment provider: %w", err)
	}

	var st *store.Store
	if cfg.Store.Enabled {
		st, err = store.Open(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	return NewPipeline(cfg, Dependencies{Judge: judge, Store: st, Tracker: tracker}), nil
}

// Analyze runs the full detection pass for a document. When facts is
// nil they are loaded from the store; sections may be nil when no
// repetition input exists. Persistence failures are non-fatal and
// reported through DetectionResult.SavedToStore.
func (p *Pipeline) Analyze(ctx context.Context, documentID string, facts []model.Fact, sections []model.Section) (*model.DetectionResult, error) {
	if facts == nil && p.store != nil {
		var err error
		facts, err = p.store.GetFacts(documentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("document %s: no stored facts; supply them or analyze the document first", documentID)
			}
			return nil, fmt.Errorf("load facts for %s: %w", documentID, err)
		}
		if sections == nil {
			if stored, serr := p.store.GetSections(documentID); serr == nil {
				sections = stored
			}
		}
	}

	result := &model.DetectionResult{
		DocumentID: documentID,
		AnalyzedAt: time.Now(),
		TotalFacts: len(facts),
	}
	result.Repetitions = repetition.NewDetector(p.cfg.Repetition).Detect(sections)

	if len(facts) < 2 {
		result.Message = "insufficient facts for conflict analysis"
		result.Statistics = model.BuildStatistics(nil)
		p.finish(documentID, result)
		return result, nil
	}

	pairs, err := p.candidatePairs(facts)
	if err != nil {
		return nil, fmt.Errorf("generate candidate pairs: %w", err)
	}

	p.update(documentID, progress.Update{
		Stage:      progress.StageOf(progress.StageDetectConflicts),
		StageLabel: progress.StringOf("Checking for contradictions"),
		Current:    progress.IntOf(0),
		Total:      progress.IntOf(len(pairs)),
	})

	if p.judge == nil {
		result.Message = "no judgment provider configured; comparisons skipped"
		result.Statistics = model.BuildStatistics(nil)
		p.persist(documentID, facts, sections, result)
		p.finish(documentID, result)
		return result, nil
	}

	conflicts, comparisons, err := detect.NewDetector(p.judge, p.tracker, p.cfg.Detection).Run(ctx, documentID, pairs)
	if err != nil {
		return nil, fmt.Errorf("dispatch judgments: %w", err)
	}

	result.TotalComparisons = comparisons
	result.Conflicts = conflicts
	result.ConflictsFound = len(conflicts)
	result.Statistics = model.BuildStatistics(conflicts)

	p.update(documentID, progress.Update{
		Stage:             progress.StageOf(progress.StageVerify),
		StageLabel:        progress.StringOf("Compiling results"),
		MarkStageComplete: true,
	})

	p.persist(documentID, facts, sections, result)
	p.finish(documentID, result)
	return result, nil
}

// candidatePairs picks the pair source: the similarity prefilter when
// enabled, falling back to the heuristic generator when the prefilter
// yields too few pairs to be worth a judgment run.
func (p *Pipeline) candidatePairs(facts []model.Fact) ([]model.CandidatePair, error) {
	gen := pairgen.NewGenerator(p.cfg.Detection)

	if !p.cfg.Similarity.Enabled {
		return gen.Generate(facts)
	}

	pairs := p.prefilter(facts)
	if len(pairs) < p.cfg.Similarity.MinViablePairs {
		return gen.Generate(facts)
	}
	return pairs, nil
}

// prefilter merges the signature-bucket and vector strategies: MinHash
// banding surfaces near-duplicate candidates cheaply, the vector pass
// adds exact duplicates and high-cosine pairs the buckets missed.
func (p *Pipeline) prefilter(facts []model.Fact) []model.CandidatePair {
	maxPairs := p.cfg.Detection.MaxPairs

	pairs := similarity.NewMinHashFilter(p.cfg.Similarity).FilterPairs(facts, maxPairs)
	seen := make(map[[2]string]bool, len(pairs))
	for _, pair := range pairs {
		seen[pair.Key()] = true
	}
	for _, pair := range similarity.NewVectorFilter(p.cfg.Similarity).FilterPairs(facts, maxPairs) {
		if seen[pair.Key()] {
			continue
		}
		seen[pair.Key()] = true
		pairs = append(pairs, pair)
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Priority != pairs[j].Priority {
			return pairs[i].Priority > pairs[j].Priority
		}
		ki, kj := pairs[i].Key(), pairs[j].Key()
		if ki[0] != kj[0] {
			return ki[0] < kj[0]
		}
		return ki[1] < kj[1]
	})
	if len(pairs) > maxPairs {
		pairs = pairs[:maxPairs]
	}
	return pairs
}

// persist stores the inputs and result, flagging success on the result
func (p *Pipeline) persist(documentID string, facts []model.Fact, sections []model.Section, result *model.DetectionResult) {
	if p.store == nil {
		return
	}

	saved := true
	if err := p.store.SaveFacts(documentID, facts); err != nil {
		log.Printf("pipeline: save facts for %s: %v", documentID, err)
		saved = false
	}
	if sections != nil {
		if err := p.store.SaveSections(documentID, sections); err != nil {
			log.Printf("pipeline: save sections for %s: %v", documentID, err)
			saved = false
		}
	}
	if err := p.store.SaveResult(documentID, result); err != nil {
		log.Printf("pipeline: save result for %s: %v", documentID, err)
		saved = false
	}
	result.SavedToStore = saved
}

// finish marks the progress session complete
func (p *Pipeline) finish(documentID string, result *model.DetectionResult) {
	p.update(documentID, progress.Update{
		Stage:             progress.StageOf(progress.StageComplete),
		StageLabel:        progress.StringOf("Analysis complete"),
		Message:           progress.StringOf(fmt.Sprintf("%d conflicts found", result.ConflictsFound)),
		MarkStageComplete: true,
	})
}

func (p *Pipeline) update(documentID string, u progress.Update) {
	if p.tracker == nil {
		return
	}
	p.tracker.Update(documentID, u)
}
