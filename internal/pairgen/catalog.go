package pairgen

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkratov/concordia/internal/model"
)

// catalogEntry is one antonymic phrasing pattern: facts matching side A
// are paired with facts matching side B
type catalogEntry struct {
	name  string
	sideA []string
	sideB []string
}

// antonymCatalog covers contradiction patterns that recur in status
// reports and annual filings. Matching is plain substring search over
// the lowercased fact text, so phrases stay short and literal.
var antonymCatalog = []catalogEntry{
	{
		name:  "compliance",
		sideA: []string{"compliant", "meets the requirements", "in accordance with policy", "policy implemented"},
		sideB: []string{"non-compliant", "does not meet", "fails to meet", "revised guidelines"},
	},
	{
		name:  "headcount",
		sideA: []string{"zero layoffs", "no layoffs", "hiring", "headcount increase"},
		sideB: []string{"layoffs", "workforce reduction", "positions eliminated", "restructuring"},
	},
	{
		name:  "trend",
		sideA: []string{"increase", "growth", "rose", "climbed", "improved"},
		sideB: []string{"decrease", "decline", "fell", "dropped", "shrank"},
	},
	{
		name:  "schedule",
		sideA: []string{"on schedule", "ahead of schedule", "completion date confirmed"},
		sideB: []string{"delayed", "postponed", "behind schedule", "rescheduled"},
	},
	{
		name:  "funding",
		sideA: []string{"no funding gap", "fully funded", "cash flow is normal"},
		sideB: []string{"funding gap", "risk of suspension", "partially received", "shortfall"},
	},
	{
		name:  "coordination",
		sideA: []string{"coordination completed", "residents agreed", "stakeholders aligned"},
		sideB: []string{"residents opposed", "objections raised", "privacy concerns", "installation delayed"},
	},
	{
		name:  "preparation",
		sideA: []string{"preparations fully completed", "all permits obtained"},
		sideB: []string{"permit not obtained", "not yet processed", "pending approval"},
	},
	{
		name:  "incidents",
		sideA: []string{"no incidents", "zero accidents", "never occurred", "fully protected"},
		sideB: []string{"breach", "violation", "incident", "leak", "penalized"},
	},
	{
		name:  "emissions",
		sideA: []string{"zero emissions", "carbon neutral", "emissions reduced"},
		sideB: []string{"emissions increased", "pollution", "target missed"},
	},
	{
		name:  "location",
		sideA: []string{"headquartered in", "registered in", "manufactured in"},
		sideB: []string{"headquarters relocated", "moved to", "production transferred"},
	},
}

// domainPercentKeywords drive the numeric sub-rule: any two facts
// mentioning one of these and carrying percentages that differ by the
// configured gap are paired (progress-versus-spend mismatches).
var domainPercentKeywords = []string{"renovation", "fit-out", "construction progress"}

var percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

// keywordPairs runs the antonym catalogue and the domain percent
// sub-rule over every fact's text.
func (g *Generator) keywordPairs(facts []model.Fact, add addFunc) bool {
	texts := make([]string, len(facts))
	for i, f := range facts {
		texts[i] = strings.ToLower(f.Text())
	}

	matching := func(phrases []string) []int {
		var idx []int
		for i, t := range texts {
			for _, p := range phrases {
				if strings.Contains(t, p) {
					idx = append(idx, i)
					break
				}
			}
		}
		return idx
	}

	for _, entry := range antonymCatalog {
		as := matching(entry.sideA)
		bs := matching(entry.sideB)
		for _, ia := range as {
			for _, ib := range bs {
				if ia == ib {
					continue
				}
				if add(facts[ia], facts[ib], model.SourceKeyword) {
					return true
				}
			}
		}
	}

	// Domain percent rule: facts sharing a domain keyword whose
	// percentage values differ by DomainPercentGap or more.
	var domainIdx []int
	for i, t := range texts {
		for _, kw := range domainPercentKeywords {
			if strings.Contains(t, kw) {
				domainIdx = append(domainIdx, i)
				break
			}
		}
	}
	for x := 0; x < len(domainIdx); x++ {
		for y := x + 1; y < len(domainIdx); y++ {
			pa := percentValues(texts[domainIdx[x]])
			pb := percentValues(texts[domainIdx[y]])
			if percentGapAtLeast(pa, pb, g.cfg.DomainPercentGap) {
				if add(facts[domainIdx[x]], facts[domainIdx[y]], model.SourceKeyword) {
					return true
				}
			}
		}
	}
	return false
}

func percentValues(text string) []float64 {
	var vals []float64
	for _, m := range percentPattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			vals = append(vals, v)
		}
	}
	return vals
}

func percentGapAtLeast(a, b []float64, gap float64) bool {
	for _, va := range a {
		for _, vb := range b {
			if math.Abs(va-vb) >= gap {
				return true
			}
		}
	}
	return false
}
