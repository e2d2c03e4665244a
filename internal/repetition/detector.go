// Package repetition finds literal passages repeated across a
// document's sections. This is a single linear pass over section text:
// no pairwise comparison, no oracle calls. Its findings are reported
// alongside conflict records, not merged into them.
package repetition

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mkratov/concordia/internal/model"
)

// segmentSplit breaks content on sentence-ending punctuation (latin and
// CJK) and newlines
var segmentSplit = regexp.MustCompile(`[。！？.!?;\n]+`)

// Detector finds high-frequency repeated segments
type Detector struct {
	minLength int
	minCount  int
}

// NewDetector creates a detector with the given thresholds
func NewDetector(cfg model.RepetitionConfig) *Detector {
	minLength := cfg.MinLength
	if minLength <= 0 {
		minLength = 20
	}
	minCount := cfg.MinCount
	if minCount <= 0 {
		minCount = 3
	}
	return &Detector{minLength: minLength, minCount: minCount}
}

// Detect returns every normalized segment repeated at least minCount
// times, each with its occurrence count and the sorted unique section
// titles it appeared in. Records are ordered by descending count, ties
// broken by text, so output is deterministic.
func (d *Detector) Detect(sections []model.Section) []model.RepetitionRecord {
	if len(sections) == 0 {
		return nil
	}

	type tally struct {
		count     int
		locations []string
	}
	segments := make(map[string]*tally)

	for _, sec := range sections {
		if sec.Content == "" {
			continue
		}
		for _, raw := range segmentSplit.Split(sec.Content, -1) {
			normalized := strings.TrimSpace(raw)
			// Short segments are headings and phrases, not core content.
			if len([]rune(normalized)) < d.minLength {
				continue
			}
			t := segments[normalized]
			if t == nil {
				t = &tally{}
				segments[normalized] = t
			}
			t.count++
			t.locations = append(t.locations, sec.Title)
		}
	}

	var records []model.RepetitionRecord
	for text, t := range segments {
		if t.count < d.minCount {
			continue
		}
		records = append(records, model.RepetitionRecord{
			NormalizedText:  text,
			OccurrenceCount: t.count,
			Locations:       uniqueSorted(t.locations),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].OccurrenceCount != records[j].OccurrenceCount {
			return records[i].OccurrenceCount > records[j].OccurrenceCount
		}
		return records[i].NormalizedText < records[j].NormalizedText
	})
	return records
}

func uniqueSorted(titles []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range titles {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
