package similarity

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"strings"

	"github.com/mkratov/concordia/internal/model"
)

// VectorFilter finds close facts by cosine similarity over term-
// frequency vectors. An exact-hash pre-pass emits identical facts at
// similarity 1.0 before any vector work, an O(n) short-circuit that
// also seeds those pairs' priority.
type VectorFilter struct {
	threshold float64
}

// NewVectorFilter creates a filter with the given cosine threshold
func NewVectorFilter(cfg model.SimilarityConfig) *VectorFilter {
	threshold := cfg.Threshold
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.5
	}
	return &VectorFilter{threshold: threshold}
}

// vectorText is the text a fact is vectorized from: content, quote,
// and the structured fields, so two facts about the same subject stay
// close even when phrased differently.
func vectorText(f model.Fact) string {
	parts := []string{f.Content}
	if f.OriginalText != "" {
		parts = append(parts, f.OriginalText)
	}
	if f.Subject != "" {
		parts = append(parts, "subject:"+f.Subject)
	}
	if f.Predicate != "" {
		parts = append(parts, "predicate:"+f.Predicate)
	}
	if f.Object != "" {
		parts = append(parts, "object:"+f.Object)
	}
	if f.Value != "" {
		parts = append(parts, "value:"+f.Value)
	}
	if f.Time != "" {
		parts = append(parts, "time:"+f.Time)
	}
	return strings.Join(parts, " ")
}

// contentHash is the normalized-text hash used by the exact-duplicate
// pre-pass: lowercase with all whitespace removed.
func contentHash(text string) string {
	normalized := strings.ToLower(text)
	normalized = strings.Join(strings.Fields(normalized), "")
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// FilterPairs returns pairs at or above the cosine threshold, exact
// duplicates first at similarity 1.0, ranked by priority and truncated
// to maxPairs.
func (f *VectorFilter) FilterPairs(facts []model.Fact, maxPairs int) []model.CandidatePair {
	if len(facts) < 2 {
		return nil
	}

	texts := make([]string, len(facts))
	for i, fact := range facts {
		texts[i] = vectorText(fact)
	}

	// Hash-equality pre-pass.
	seen := make(map[[2]string]bool)
	var exact []model.CandidatePair
	hashGroups := make(map[string][]int)
	var hashOrder []string
	for i, t := range texts {
		h := contentHash(t)
		if _, ok := hashGroups[h]; !ok {
			hashOrder = append(hashOrder, h)
		}
		hashGroups[h] = append(hashGroups[h], i)
	}
	for _, h := range hashOrder {
		group := hashGroups[h]
		for x := 0; x < len(group); x++ {
			for y := x + 1; y < len(group); y++ {
				p := model.CandidatePair{
					FactA:  facts[group[x]],
					FactB:  facts[group[y]],
					Source: model.SourceSimilarity,
				}
				key := p.Key()
				if seen[key] {
					continue
				}
				seen[key] = true
				p.Priority = 2.0 + Score(p.FactA, p.FactB) // Similarity 1.0 doubled, as below
				exact = append(exact, p)
			}
		}
	}

	// Term-frequency vectors over a shared vocabulary.
	vocab := make(map[string]int)
	tokenized := make([][]string, len(facts))
	for i, t := range texts {
		tokenized[i] = Tokenize(t)
		for _, tok := range tokenized[i] {
			if _, ok := vocab[tok]; !ok {
				vocab[tok] = len(vocab)
			}
		}
	}

	vectors := make([][]float64, len(facts))
	norms := make([]float64, len(facts))
	for i, toks := range tokenized {
		vec := make([]float64, len(vocab))
		for _, tok := range toks {
			vec[vocab[tok]]++
		}
		vectors[i] = vec
		norms[i] = norm(vec)
	}

	var semantic []model.CandidatePair
	for i := 0; i < len(facts); i++ {
		for j := i + 1; j < len(facts); j++ {
			if norms[i] == 0 || norms[j] == 0 {
				continue
			}
			sim := dot(vectors[i], vectors[j]) / (norms[i] * norms[j])
			if sim < f.threshold {
				continue
			}
			p := model.CandidatePair{
				FactA:  facts[i],
				FactB:  facts[j],
				Source: model.SourceSimilarity,
			}
			key := p.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			p.Priority = sim*2 + Score(p.FactA, p.FactB)
			semantic = append(semantic, p)
		}
	}

	sortByPriority(semantic)
	pairs := append(exact, semantic...)
	if len(pairs) > maxPairs {
		pairs = pairs[:maxPairs]
	}
	return pairs
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
