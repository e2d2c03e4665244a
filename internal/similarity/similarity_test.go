package similarity

import (
	"fmt"
	"testing"

	"github.com/mkratov/concordia/internal/model"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"stopwords removed", "the budget of the project", []string{"budget", "project"}},
		{"punctuation stripped", "revenue: $4.2M (up 10%)!", []string{"revenue", "2m", "up", "10"}},
		{"empty", "", nil},
		{"cjk split per character", "项目进度", []string{"项", "目", "进", "度"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestShingles(t *testing.T) {
	got := Shingles([]string{"a1", "b2", "c3"}, 2)
	want := []string{"a1 b2", "b2 c3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("shingle %d: got %q, want %q", i, got[i], want[i])
		}
	}

	// Short streams degrade to the tokens themselves.
	short := Shingles([]string{"only"}, 2)
	if len(short) != 1 || short[0] != "only" {
		t.Errorf("expected degraded shingles, got %v", short)
	}
}

func TestScore_Components(t *testing.T) {
	base := Score(
		model.Fact{ID: "a", Type: "event", Content: "x"},
		model.Fact{ID: "b", Type: "other", Content: "y"},
	)
	if base != 0 {
		t.Errorf("disjoint plain facts should score 0, got %f", base)
	}

	sameType := Score(
		model.Fact{ID: "a", Type: "event"},
		model.Fact{ID: "b", Type: "event"},
	)
	if sameType != 2.0 {
		t.Errorf("same type should score 2.0, got %f", sameType)
	}

	polar := Score(
		model.Fact{ID: "a", Polarity: model.PolarityAffirmative},
		model.Fact{ID: "b", Polarity: model.PolarityNegative},
	)
	if polar != 1.5 {
		t.Errorf("polarity mismatch should score 1.5, got %f", polar)
	}

	highValue := Score(
		model.Fact{ID: "a", Type: "data", Value: "100"},
		model.Fact{ID: "b", Type: "date", Value: "150"},
	)
	// 1.0 + 1.0 high-value sides, + 50/150 divergence ratio.
	want := 2.0 + 50.0/150.0
	if diff := highValue - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected %f, got %f", want, highValue)
	}
}

func TestMinHashFilter_NearDuplicates(t *testing.T) {
	f := NewMinHashFilter(model.DefaultConfig().Similarity)

	facts := []model.Fact{
		{ID: "a", Content: "the project completion deadline was moved to April 2026 after review"},
		{ID: "b", Content: "the project completion deadline was moved to March 2026 after review"},
		{ID: "c", Content: "cafeteria introduced a seasonal vegetarian menu on Tuesdays"},
	}

	pairs := f.FilterPairs(facts, 10)
	if !containsPair(pairs, "a", "b") {
		t.Error("expected near-duplicate pair (a,b) to survive the signature filter")
	}
	for _, p := range pairs {
		if p.Source != model.SourceSimilarity {
			t.Errorf("expected similarity source, got %s", p.Source)
		}
	}
}

func TestMinHashFilter_Bounds(t *testing.T) {
	f := NewMinHashFilter(model.DefaultConfig().Similarity)

	if got := f.FilterPairs(nil, 10); got != nil {
		t.Errorf("expected nil for no facts, got %v", got)
	}
	if got := f.FilterPairs([]model.Fact{{ID: "a", Content: "solo"}}, 10); got != nil {
		t.Errorf("expected nil for one fact, got %v", got)
	}

	var facts []model.Fact
	for i := 0; i < 20; i++ {
		facts = append(facts, model.Fact{
			ID:      fmt.Sprintf("f%d", i),
			Content: "identical repeated sentence used in every section of this report",
		})
	}
	pairs := f.FilterPairs(facts, 5)
	if len(pairs) > 5 {
		t.Errorf("expected truncation to 5, got %d", len(pairs))
	}
}

func TestVectorFilter_ExactDuplicatesFirst(t *testing.T) {
	f := NewVectorFilter(model.SimilarityConfig{Threshold: 0.5})

	facts := []model.Fact{
		{ID: "a", Content: "Quarterly revenue grew steadily across all regions"},
		{ID: "b", Content: "quarterly revenue grew   steadily across all regions"}, // Same after normalization
		{ID: "c", Content: "quarterly revenue grew steadily across most regions"},
		{ID: "d", Content: "warehouse relocation finished without downtime"},
	}

	pairs := f.FilterPairs(facts, 10)
	if len(pairs) == 0 {
		t.Fatal("expected pairs")
	}
	if k := pairs[0].Key(); k != [2]string{"a", "b"} {
		t.Errorf("expected exact duplicate (a,b) first, got %v", k)
	}
	if !containsPair(pairs, "a", "c") && !containsPair(pairs, "b", "c") {
		t.Error("expected high-cosine pair with c")
	}
	if containsPair(pairs, "a", "d") {
		t.Error("unrelated fact d should stay below the threshold")
	}
}

func TestVectorFilter_Truncation(t *testing.T) {
	f := NewVectorFilter(model.SimilarityConfig{Threshold: 0.3})

	var facts []model.Fact
	for i := 0; i < 10; i++ {
		facts = append(facts, model.Fact{
			ID:      fmt.Sprintf("f%d", i),
			Content: "shared phrasing about project milestones and budget reviews",
		})
	}
	pairs := f.FilterPairs(facts, 7)
	if len(pairs) != 7 {
		t.Errorf("expected exactly 7 pairs after truncation, got %d", len(pairs))
	}
}

func containsPair(pairs []model.CandidatePair, a, b string) bool {
	want := [2]string{a, b}
	if b < a {
		want = [2]string{b, a}
	}
	for _, p := range pairs {
		if p.Key() == want {
			return true
		}
	}
	return false
}
