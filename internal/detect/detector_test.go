package detect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkratov/concordia/internal/model"
	"github.com/mkratov/concordia/internal/oracle"
	"github.com/mkratov/concordia/internal/progress"
)

// fakeJudge returns canned verdicts keyed by fact content, and can be
// configured to fail for specific pairs.
type fakeJudge struct {
	mu       sync.Mutex
	verdicts map[string]oracle.Verdict
	failFor  map[string]bool
	calls    int32
	inFlight int32
	peak     int32
}

func (f *fakeJudge) Name() string                       { return "fake" }
func (f *fakeJudge) IsAvailable(_ context.Context) bool { return true }

func (f *fakeJudge) Judge(_ context.Context, a, b model.Fact) (oracle.Verdict, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if cur <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, cur) {
			break
		}
	}
	atomic.AddInt32(&f.calls, 1)

	key := a.Content + "|" + b.Content
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[key] {
		return oracle.Verdict{}, errors.New("provider unavailable")
	}
	if v, ok := f.verdicts[key]; ok {
		return v, nil
	}
	return oracle.Verdict{HasConflict: false, ConflictType: model.ConflictNone, Severity: model.SeverityNone}, nil
}

func pairOf(a, b string) model.CandidatePair {
	return model.CandidatePair{
		FactA: model.Fact{Content: a},
		FactB: model.Fact{Content: b},
	}
}

func TestRunPerPairFailureIsolation(t *testing.T) {
	pairs := make([]model.CandidatePair, 10)
	verdicts := map[string]oracle.Verdict{}
	for i := range pairs {
		a, b := fmt.Sprintf("fact-a-%d", i), fmt.Sprintf("fact-b-%d", i)
		pairs[i] = pairOf(a, b)
		verdicts[a+"|"+b] = oracle.Verdict{
			HasConflict:  true,
			ConflictType: model.ConflictData,
			Severity:     model.SeverityMedium,
			Explanation:  "values disagree",
			Confidence:   0.8,
		}
	}
	judge := &fakeJudge{
		verdicts: verdicts,
		failFor:  map[string]bool{"fact-a-3|fact-b-3": true},
	}

	d := NewDetector(judge, nil, model.DetectionConfig{BatchSize: 10})
	conflicts, comparisons, err := d.Run(context.Background(), "doc1", pairs)
	require.NoError(t, err)

	assert.Equal(t, 10, comparisons)
	assert.Equal(t, int32(10), atomic.LoadInt32(&judge.calls))
	assert.Len(t, conflicts, 9)
}

func TestRunNonConflictVerdictsDiscarded(t *testing.T) {
	judge := &fakeJudge{
		verdicts: map[string]oracle.Verdict{
			"a|b": {HasConflict: true, ConflictType: model.ConflictTime, Severity: model.SeverityLow, Confidence: 0.6},
		},
	}
	d := NewDetector(judge, nil, model.DetectionConfig{BatchSize: 10})

	conflicts, comparisons, err := d.Run(context.Background(), "doc1", []model.CandidatePair{
		pairOf("a", "b"),
		pairOf("c", "d"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, comparisons)
	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictTime, conflicts[0].ConflictType)
}

func TestRunSeverityOrdering(t *testing.T) {
	judge := &fakeJudge{
		verdicts: map[string]oracle.Verdict{
			"a|b": {HasConflict: true, Severity: model.SeverityLow, ConflictType: model.ConflictData},
			"c|d": {HasConflict: true, Severity: model.SeverityHigh, ConflictType: model.ConflictData},
			"e|f": {HasConflict: true, Severity: model.Severity("bogus"), ConflictType: model.ConflictData},
			"g|h": {HasConflict: true, Severity: model.SeverityMedium, ConflictType: model.ConflictData},
		},
	}
	d := NewDetector(judge, nil, model.DetectionConfig{BatchSize: 2})

	conflicts, _, err := d.Run(context.Background(), "doc1", []model.CandidatePair{
		pairOf("a", "b"), pairOf("c", "d"), pairOf("e", "f"), pairOf("g", "h"),
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 4)

	assert.Equal(t, model.SeverityHigh, conflicts[0].Severity)
	// Unknown severity ranks as medium; the stable sort keeps it ahead
	// of the later genuine medium.
	assert.Equal(t, model.Severity("bogus"), conflicts[1].Severity)
	assert.Equal(t, model.SeverityMedium, conflicts[2].Severity)
	assert.Equal(t, model.SeverityLow, conflicts[3].Severity)
}

func TestRunConflictIDsSequential(t *testing.T) {
	judge := &fakeJudge{
		verdicts: map[string]oracle.Verdict{
			"a|b": {HasConflict: true, Severity: model.SeverityMedium, ConflictType: model.ConflictData},
			"c|d": {HasConflict: true, Severity: model.SeverityMedium, ConflictType: model.ConflictData},
		},
	}
	d := NewDetector(judge, nil, model.DetectionConfig{BatchSize: 1})

	conflicts, _, err := d.Run(context.Background(), "report", []model.CandidatePair{
		pairOf("a", "b"), pairOf("c", "d"),
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	assert.Equal(t, "conflict_report_0", conflicts[0].ConflictID)
	assert.Equal(t, "conflict_report_1", conflicts[1].ConflictID)
}

func TestRunBatchBound(t *testing.T) {
	pairs := make([]model.CandidatePair, 12)
	for i := range pairs {
		pairs[i] = pairOf(fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	judge := &fakeJudge{}
	d := NewDetector(judge, nil, model.DetectionConfig{BatchSize: 4})

	_, comparisons, err := d.Run(context.Background(), "doc1", pairs)
	require.NoError(t, err)
	assert.Equal(t, 12, comparisons)
	assert.LessOrEqual(t, atomic.LoadInt32(&judge.peak), int32(4))
}

func TestRunProgressUpdates(t *testing.T) {
	pairs := make([]model.CandidatePair, 7)
	for i := range pairs {
		pairs[i] = pairOf(fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	tracker := progress.NewTracker()
	tracker.Update("doc1", progress.Update{
		Stage: progress.StageOf(progress.StageDetectConflicts),
		Total: progress.IntOf(len(pairs)),
	})

	judge := &fakeJudge{}
	d := NewDetector(judge, tracker, model.DetectionConfig{BatchSize: 10})
	_, _, err := d.Run(context.Background(), "doc1", pairs)
	require.NoError(t, err)

	snap, ok := tracker.Get("doc1")
	require.True(t, ok)
	assert.Equal(t, 7, snap.Current)
	assert.Equal(t, 7, snap.Total)
	assert.Equal(t, 100.0, snap.Progress)
}

func TestRunNilJudge(t *testing.T) {
	d := NewDetector(nil, nil, model.DetectionConfig{BatchSize: 10})
	_, _, err := d.Run(context.Background(), "doc1", []model.CandidatePair{pairOf("a", "b")})
	assert.Error(t, err)
}

func TestRunEmptyInput(t *testing.T) {
	judge := &fakeJudge{}
	d := NewDetector(judge, nil, model.DetectionConfig{BatchSize: 10})
	conflicts, comparisons, err := d.Run(context.Background(), "doc1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, comparisons)
	assert.Empty(t, conflicts)
}
