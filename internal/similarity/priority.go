package similarity

import (
	"math"

	"github.com/mkratov/concordia/internal/model"
)

// highValueTypes get a priority bonus per side
var highValueTypes = map[string]bool{
	"data":       true,
	"date":       true,
	"conclusion": true,
	"percentage": true,
	"amount":     true,
}

// Score ranks a candidate pair for truncation. Same-type pairs, pairs
// touching high-value types, opposite polarities, confident facts, and
// large numeric gaps all raise the score.
func Score(a, b model.Fact) float64 {
	priority := 0.0

	if a.Type != "" && a.Type == b.Type {
		priority += 2.0
	}
	if highValueTypes[a.Type] {
		priority += 1.0
	}
	if highValueTypes[b.Type] {
		priority += 1.0
	}
	if a.EffectivePolarity() != b.EffectivePolarity() {
		priority += 1.5
	}
	priority += (a.Confidence + b.Confidence) / 2

	va, okA := a.NumericValue()
	vb, okB := b.NumericValue()
	if okA && okB && va != vb {
		maxV := math.Max(math.Abs(va), math.Abs(vb))
		if maxV > 0 {
			priority += math.Abs(va-vb) / maxV
		}
	}

	return priority
}
