package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkratov/concordia/internal/model"
	"github.com/mkratov/concordia/internal/oracle"
	"github.com/mkratov/concordia/internal/progress"
	"github.com/mkratov/concordia/internal/store"
)

// conflictEverywhere judges every pair as a medium data conflict
type conflictEverywhere struct{}

func (conflictEverywhere) Name() string                       { return "fake" }
func (conflictEverywhere) IsAvailable(_ context.Context) bool { return true }
func (conflictEverywhere) Judge(context.Context, model.Fact, model.Fact) (oracle.Verdict, error) {
	return oracle.Verdict{
		HasConflict:  true,
		ConflictType: model.ConflictData,
		Severity:     model.SeverityMedium,
		Explanation:  "values disagree",
		Confidence:   0.9,
	}, nil
}

// agreeable finds no conflicts anywhere
type agreeable struct{}

func (agreeable) Name() string                       { return "fake" }
func (agreeable) IsAvailable(_ context.Context) bool { return true }
func (agreeable) Judge(context.Context, model.Fact, model.Fact) (oracle.Verdict, error) {
	return oracle.Verdict{HasConflict: false, ConflictType: model.ConflictNone, Severity: model.SeverityNone}, nil
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Store.Enabled = false
	return cfg
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(store.NewMemoryBackend(time.Minute, time.Minute), time.Minute)
}

// divergentFacts returns two structured facts the generator will pair
func divergentFacts() []model.Fact {
	return []model.Fact{
		{
			ID: "f1", Subject: "project", Predicate: "completion", Value: "2026-04",
			Time: "2026-04", Type: "date", Content: "Completion scheduled for April 2026", Confidence: 0.9,
		},
		{
			ID: "f2", Subject: "project", Predicate: "completion", Value: "2026-03-20",
			Time: "2026-03-20", Type: "date", Content: "Handover on March 20, 2026", Confidence: 0.85,
		},
	}
}

func TestAnalyzeFindsConflicts(t *testing.T) {
	p := NewPipeline(testConfig(), Dependencies{Judge: conflictEverywhere{}})

	result, err := p.Analyze(context.Background(), "doc1", divergentFacts(), nil)
	require.NoError(t, err)

	assert.Equal(t, "doc1", result.DocumentID)
	assert.Equal(t, 2, result.TotalFacts)
	assert.Equal(t, 1, result.TotalComparisons)
	require.Equal(t, 1, result.ConflictsFound)
	assert.Equal(t, "conflict_doc1_0", result.Conflicts[0].ConflictID)
	assert.Equal(t, 1, result.Statistics.BySeverity[model.SeverityMedium])
	assert.Equal(t, 1, result.Statistics.ByType[model.ConflictData])
	assert.False(t, result.SavedToStore)
}

func TestAnalyzeInsufficientFacts(t *testing.T) {
	p := NewPipeline(testConfig(), Dependencies{Judge: conflictEverywhere{}})

	result, err := p.Analyze(context.Background(), "doc1", []model.Fact{{ID: "f1", Content: "only one"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalFacts)
	assert.Zero(t, result.TotalComparisons)
	assert.Empty(t, result.Conflicts)
	assert.NotEmpty(t, result.Message)
}

func TestAnalyzeNoJudge(t *testing.T) {
	p := NewPipeline(testConfig(), Dependencies{})

	result, err := p.Analyze(context.Background(), "doc1", divergentFacts(), nil)
	require.NoError(t, err)

	assert.Zero(t, result.TotalComparisons)
	assert.Empty(t, result.Conflicts)
	assert.Contains(t, result.Message, "no judgment provider")
}

func TestAnalyzeRepetitionsIncluded(t *testing.T) {
	repeated := "This exact compliance statement is repeated in every single section verbatim."
	sections := []model.Section{
		{Title: "Overview", Content: repeated},
		{Title: "Details", Content: repeated},
		{Title: "Summary", Content: repeated},
	}

	p := NewPipeline(testConfig(), Dependencies{Judge: agreeable{}})
	result, err := p.Analyze(context.Background(), "doc1", divergentFacts(), sections)
	require.NoError(t, err)

	require.Len(t, result.Repetitions, 1)
	assert.Equal(t, 3, result.Repetitions[0].OccurrenceCount)
	assert.Equal(t, []string{"Details", "Overview", "Summary"}, result.Repetitions[0].Locations)
	assert.Zero(t, result.ConflictsFound)
}

func TestAnalyzePersistsAndReloads(t *testing.T) {
	cfg := testConfig()
	st := testStore(t)
	p := NewPipeline(cfg, Dependencies{Judge: conflictEverywhere{}, Store: st})

	result, err := p.Analyze(context.Background(), "doc1", divergentFacts(), nil)
	require.NoError(t, err)
	assert.True(t, result.SavedToStore)

	stored, err := st.GetResult("doc1")
	require.NoError(t, err)
	assert.Equal(t, result.ConflictsFound, stored.ConflictsFound)

	// Second run with nil facts loads them from the store
	again, err := p.Analyze(context.Background(), "doc1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, again.TotalFacts)
	assert.Equal(t, result.ConflictsFound, again.ConflictsFound)
}

func TestAnalyzeUnknownDocument(t *testing.T) {
	p := NewPipeline(testConfig(), Dependencies{Judge: agreeable{}, Store: testStore(t)})

	_, err := p.Analyze(context.Background(), "ghost", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stored facts")
}

func TestAnalyzeProgressLifecycle(t *testing.T) {
	tracker := progress.NewTracker()
	p := NewPipeline(testConfig(), Dependencies{Judge: conflictEverywhere{}, Tracker: tracker})

	_, err := p.Analyze(context.Background(), "doc1", divergentFacts(), nil)
	require.NoError(t, err)

	snap, ok := tracker.Get("doc1")
	require.True(t, ok)
	assert.Equal(t, progress.StageComplete, snap.Stage)
	assert.Contains(t, snap.CompletedStages, string(progress.StageVerify))
}

func TestAnalyzeSimilarityFallback(t *testing.T) {
	// No textual overlap, so the prefilter finds nothing and the
	// heuristic generator takes over via type grouping.
	cfg := testConfig()
	cfg.Similarity.Enabled = true
	cfg.Similarity.MinViablePairs = 1

	facts := []model.Fact{
		{ID: "f1", Subject: "alpha", Predicate: "pred1", Value: "100", Type: "data", Content: "alpha beta gamma", Confidence: 0.9},
		{ID: "f2", Subject: "delta", Predicate: "pred2", Value: "999", Type: "data", Content: "delta epsilon zeta", Confidence: 0.9},
	}

	p := NewPipeline(cfg, Dependencies{Judge: conflictEverywhere{}})
	result, err := p.Analyze(context.Background(), "doc1", facts, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalComparisons)
	assert.Equal(t, 1, result.ConflictsFound)
}

func TestAnalyzeSimilarityPrefilter(t *testing.T) {
	cfg := testConfig()
	cfg.Similarity.Enabled = true
	cfg.Similarity.MinViablePairs = 1

	// Near-identical phrasing keeps the pair inside the prefilter; the
	// unrelated fact never reaches the oracle.
	facts := []model.Fact{
		{ID: "f1", Content: "quarterly revenue grew eight percent over the previous period", Type: "data", Confidence: 0.9},
		{ID: "f2", Content: "quarterly revenue grew three percent over the previous period", Type: "data", Confidence: 0.9},
		{ID: "f3", Content: "the cafeteria menu now includes vegetarian options daily", Type: "statement", Confidence: 0.9},
	}

	p := NewPipeline(cfg, Dependencies{Judge: conflictEverywhere{}})
	result, err := p.Analyze(context.Background(), "doc1", facts, nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.TotalComparisons, 1)

	for _, c := range result.Conflicts {
		assert.NotEqual(t, "f3", c.FactA.FactID)
		assert.NotEqual(t, "f3", c.FactB.FactID)
	}
}

func TestAnalyzeMaxPairsRespected(t *testing.T) {
	cfg := testConfig()
	cfg.Detection.MaxPairs = 3

	var facts []model.Fact
	for i := 0; i < 6; i++ {
		facts = append(facts, model.Fact{
			ID: fmt.Sprintf("f%d", i), Subject: "metric", Predicate: "value",
			Value: fmt.Sprintf("%d", i*100), Type: "data",
			Content: fmt.Sprintf("metric reading %d", i*100), Confidence: 0.9,
		})
	}

	p := NewPipeline(cfg, Dependencies{Judge: conflictEverywhere{}})
	result, err := p.Analyze(context.Background(), "doc1", facts, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, result.TotalComparisons, 3)
}

func TestFromConfigNoProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Oracle.Provider = ""

	p, err := FromConfig(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.judge)
}

func TestFromConfigUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Oracle.Provider = "quantum"

	_, err := FromConfig(cfg, nil)
	require.Error(t, err)
}
