package model

// PairSource identifies which generation strategy proposed a candidate pair
type PairSource string

const (
	SourceStructured PairSource = "structured" // Same (subject, predicate, object) with divergent fields
	SourceKeyword    PairSource = "keyword"    // Antonymic keyword catalogue match
	SourceTypeGroup  PairSource = "type_group" // Same type tag, budget top-up
	SourceCrossType  PairSource = "cross_type" // High-value types paired across tags
	SourceSimilarity PairSource = "similarity" // Signature or vector similarity prefilter
)

// CandidatePair is an unordered pair of facts proposed for judgment.
// Facts are held by value; the pipeline never mutates them.
type CandidatePair struct {
	FactA    Fact
	FactB    Fact
	Source   PairSource
	Priority float64
}

// Key returns the canonical dedup key: the two surrogate ids sorted
func (p CandidatePair) Key() [2]string {
	a, b := p.FactA.SurrogateID(), p.FactB.SurrogateID()
	if a <= b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}
