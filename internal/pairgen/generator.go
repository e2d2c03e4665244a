// Package pairgen turns a document's fact list into a bounded,
// deduplicated list of candidate pairs likely to conflict. Four
// strategies run in strict precedence order, each stopping early once
// the pair budget is reached, so cost stays bounded regardless of the
// true O(n^2) pairwise space.
package pairgen

import (
	"errors"
	"math"
	"strings"

	"github.com/mkratov/concordia/internal/model"
)

// ErrInsufficientFacts signals that fewer than two facts were supplied
var ErrInsufficientFacts = errors.New("insufficient facts for pair generation")

// highValueTypes are fact categories paired across type boundaries as
// the last fallback
var highValueTypes = []string{"data", "date", "conclusion"}

// Generator produces candidate pairs from a fact list
type Generator struct {
	cfg model.DetectionConfig
}

// NewGenerator creates a generator with the given detection thresholds
func NewGenerator(cfg model.DetectionConfig) *Generator {
	if cfg.MaxPairs <= 0 {
		cfg.MaxPairs = model.DefaultConfig().Detection.MaxPairs
	}
	return &Generator{cfg: cfg}
}

// Generate returns at most MaxPairs candidate pairs, deduplicated on
// the canonical sorted-id key. Output is deterministic for a fixed
// fact slice.
func (g *Generator) Generate(facts []model.Fact) ([]model.CandidatePair, error) {
	if len(facts) < 2 {
		return nil, ErrInsufficientFacts
	}

	var pairs []model.CandidatePair
	seen := make(map[[2]string]bool)

	add := func(a, b model.Fact, src model.PairSource) bool {
		p := model.CandidatePair{FactA: a, FactB: b, Source: src}
		key := p.Key()
		if seen[key] {
			return len(pairs) >= g.cfg.MaxPairs
		}
		seen[key] = true
		pairs = append(pairs, p)
		return len(pairs) >= g.cfg.MaxPairs
	}

	if g.structuredPairs(facts, add) {
		return pairs, nil
	}
	if g.keywordPairs(facts, add) {
		return pairs, nil
	}
	if g.typeGroupedPairs(facts, add) {
		return pairs, nil
	}
	g.crossTypePairs(facts, add)
	return pairs, nil
}

type addFunc func(a, b model.Fact, src model.PairSource) bool

// structuredPairs groups facts by (subject, predicate, object) and pairs
// group members whose polarity, numeric value, or time diverge. This is
// the highest-recall strategy for "same thing, different number/date/
// stance" conflicts that textual similarity misses.
func (g *Generator) structuredPairs(facts []model.Fact, add addFunc) bool {
	type spoKey struct{ s, p, o string }
	groups := make(map[spoKey][]model.Fact)
	var order []spoKey
	for _, f := range facts {
		k := spoKey{
			s: strings.TrimSpace(f.Subject),
			p: strings.TrimSpace(f.Predicate),
			o: strings.TrimSpace(f.Object),
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], f)
	}

	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if !g.diverges(a, b) {
					continue
				}
				if add(a, b, model.SourceStructured) {
					return true
				}
			}
		}
	}
	return false
}

// diverges reports whether any single divergence condition holds:
// opposite polarity, significant numeric gap, or differing time strings.
func (g *Generator) diverges(a, b model.Fact) bool {
	if a.EffectivePolarity() != b.EffectivePolarity() {
		return true
	}
	if g.numericDiverges(a, b) {
		return true
	}
	ta, tb := strings.TrimSpace(a.Time), strings.TrimSpace(b.Time)
	if ta != "" && tb != "" && ta != tb {
		return true
	}
	return false
}

// numericDiverges applies the percent-point threshold when either side
// reads as a percentage, otherwise the relative-or-absolute gap rule.
func (g *Generator) numericDiverges(a, b model.Fact) bool {
	va, okA := a.NumericValue()
	vb, okB := b.NumericValue()
	if !okA || !okB {
		return false
	}
	diff := math.Abs(va - vb)
	if a.HasPercent() || b.HasPercent() {
		return diff >= g.cfg.PercentPointGap
	}
	maxV := math.Max(va, vb)
	if math.Min(va, vb) > 0 && diff/maxV > g.cfg.RelativeValueGap {
		return true
	}
	return diff > g.cfg.AbsoluteValueGap
}

// typeGroupedPairs pairs facts sharing a type tag combinatorially,
// used only to top up remaining budget after the targeted strategies.
func (g *Generator) typeGroupedPairs(facts []model.Fact, add addFunc) bool {
	byType := make(map[string][]model.Fact)
	var order []string
	for _, f := range facts {
		t := f.Type
		if t == "" {
			t = "unknown"
		}
		if _, ok := byType[t]; !ok {
			order = append(order, t)
		}
		byType[t] = append(byType[t], f)
	}

	for _, t := range order {
		group := byType[t]
		if len(group) < 2 {
			continue
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if add(group[i], group[j], model.SourceTypeGroup) {
					return true
				}
			}
		}
	}
	return false
}

// crossTypePairs pairs facts across the small fixed set of high-value
// types, added last when budget remains.
func (g *Generator) crossTypePairs(facts []model.Fact, add addFunc) bool {
	byType := make(map[string][]model.Fact)
	for _, f := range facts {
		byType[f.Type] = append(byType[f.Type], f)
	}

	for _, ta := range highValueTypes {
		for _, tb := range highValueTypes {
			if ta == tb {
				continue
			}
			for _, fa := range byType[ta] {
				for _, fb := range byType[tb] {
					if add(fa, fb, model.SourceCrossType) {
						return true
					}
				}
			}
		}
	}
	return false
}
