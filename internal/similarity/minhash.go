package similarity

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"

	"github.com/mkratov/concordia/internal/model"
)

// MinHashFilter buckets facts whose hashed signatures collide under a
// banding scheme tuned to the similarity threshold, then emits all
// same-bucket pairs. A locality-sensitive prefilter: cheap, high
// recall for near-duplicates, blind to numeric divergence.
type MinHashFilter struct {
	numPerm     int
	threshold   float64
	shingleSize int
	bands       int
	rows        int
}

// NewMinHashFilter creates a filter. The band count is chosen so the
// banding collision curve crosses 0.5 close to the threshold, the same
// tuning rule LSH indexes use.
func NewMinHashFilter(cfg model.SimilarityConfig) *MinHashFilter {
	numPerm := cfg.NumHashes
	if numPerm <= 0 {
		numPerm = 128
	}
	shingle := cfg.ShingleSize
	if shingle <= 0 {
		shingle = 2
	}
	threshold := cfg.Threshold
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.3
	}

	bands, rows := pickBands(numPerm, threshold)

	return &MinHashFilter{
		numPerm:     numPerm,
		threshold:   threshold,
		shingleSize: shingle,
		bands:       bands,
		rows:        rows,
	}
}

// pickBands scans divisors of numPerm for the banding whose implied
// threshold (1/b)^(1/r) sits closest to the requested one.
func pickBands(numPerm int, threshold float64) (bands, rows int) {
	best := math.Inf(1)
	bands, rows = numPerm, 1
	for b := 1; b <= numPerm; b++ {
		if numPerm%b != 0 {
			continue
		}
		r := numPerm / b
		implied := math.Pow(1.0/float64(b), 1.0/float64(r))
		if d := math.Abs(implied - threshold); d < best {
			best = d
			bands, rows = b, r
		}
	}
	return bands, rows
}

// FilterPairs returns same-bucket candidate pairs ranked by priority
// and truncated to maxPairs. Fewer than two facts, or facts with no
// usable tokens, yield no pairs; the caller decides whether to fall
// back to the heuristic generator.
func (f *MinHashFilter) FilterPairs(facts []model.Fact, maxPairs int) []model.CandidatePair {
	if len(facts) < 2 {
		return nil
	}

	signatures := make([][]uint64, len(facts))
	for i, fact := range facts {
		shingles := Shingles(Tokenize(fact.Text()), f.shingleSize)
		if len(shingles) == 0 {
			continue
		}
		signatures[i] = f.signature(shingles)
	}

	// Band buckets: facts whose signature agrees on every row of a band
	// land in the same bucket for that band.
	type bucketKey struct {
		band int
		hash uint64
	}
	buckets := make(map[bucketKey][]int)
	for i, sig := range signatures {
		if sig == nil {
			continue
		}
		for b := 0; b < f.bands; b++ {
			h := fnv.New64a()
			var buf [8]byte
			for r := 0; r < f.rows; r++ {
				binary.LittleEndian.PutUint64(buf[:], sig[b*f.rows+r])
				_, _ = h.Write(buf[:])
			}
			key := bucketKey{band: b, hash: h.Sum64()}
			buckets[key] = append(buckets[key], i)
		}
	}

	seen := make(map[[2]string]bool)
	var pairs []model.CandidatePair
	for _, members := range buckets {
		if len(members) < 2 {
			continue
		}
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				p := model.CandidatePair{
					FactA:  facts[members[x]],
					FactB:  facts[members[y]],
					Source: model.SourceSimilarity,
				}
				key := p.Key()
				if seen[key] {
					continue
				}
				seen[key] = true
				p.Priority = Score(p.FactA, p.FactB)
				pairs = append(pairs, p)
			}
		}
	}

	sortByPriority(pairs)
	if len(pairs) > maxPairs {
		pairs = pairs[:maxPairs]
	}
	return pairs
}

// signature computes numPerm min-hash values using double hashing:
// h_i(x) = h1(x) + i*h2(x).
func (f *MinHashFilter) signature(shingles []string) []uint64 {
	sig := make([]uint64, f.numPerm)
	for i := range sig {
		sig[i] = math.MaxUint64
	}
	for _, s := range shingles {
		h1 := hashString(s, 0)
		h2 := hashString(s, 1) | 1 // Odd, so the stride cycles the full space
		for i := 0; i < f.numPerm; i++ {
			hv := h1 + uint64(i)*h2
			if hv < sig[i] {
				sig[i] = hv
			}
		}
	}
	return sig
}

func hashString(s string, salt byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{salt})
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// sortByPriority orders pairs descending by priority, ties broken by
// the canonical key for determinism.
func sortByPriority(pairs []model.CandidatePair) {
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
}
