package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkratov/concordia/internal/model"
)

// rawVerdict distinguishes absent fields from zero values so defaults
// only fill genuine gaps
type rawVerdict struct {
	HasConflict  *bool    `json:"has_conflict"`
	ConflictType *string  `json:"conflict_type"`
	Severity     *string  `json:"severity"`
	Explanation  *string  `json:"explanation"`
	Confidence   *float64 `json:"confidence"`
}

// ParseVerdict defensively parses a model response into a Verdict:
// markdown code fences are stripped, all whitespace is collapsed to
// single spaces so pretty-printed JSON survives, and missing fields
// are backfilled with safe defaults. A response that still fails to
// parse is an error; the caller treats it like any per-call failure.
func ParseVerdict(response string) (Verdict, error) {
	s := strings.TrimSpace(response)

	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	s = strings.Join(strings.Fields(s), " ")

	var raw rawVerdict
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return Verdict{}, fmt.Errorf("parse verdict: %w", err)
	}

	v := Verdict{}
	if raw.HasConflict != nil {
		v.HasConflict = *raw.HasConflict
	}

	if raw.ConflictType != nil {
		v.ConflictType = normalizeConflictType(*raw.ConflictType)
	} else {
		v.ConflictType = model.ConflictNone
	}

	if raw.Severity != nil {
		v.Severity = normalizeSeverity(*raw.Severity)
	} else if v.HasConflict {
		v.Severity = model.SeverityMedium
	} else {
		v.Severity = model.SeverityNone
	}

	if raw.Explanation != nil {
		v.Explanation = *raw.Explanation
	}

	if raw.Confidence != nil {
		v.Confidence = *raw.Confidence
	} else if v.HasConflict {
		v.Confidence = 0.5
	} else {
		v.Confidence = 0.3
	}

	return v, nil
}

func normalizeConflictType(s string) model.ConflictType {
	switch model.ConflictType(strings.ToLower(strings.TrimSpace(s))) {
	case model.ConflictData:
		return model.ConflictData
	case model.ConflictLogical:
		return model.ConflictLogical
	case model.ConflictTime:
		return model.ConflictTime
	case model.ConflictDefinition:
		return model.ConflictDefinition
	default:
		// Unrecognized labels are kept verbatim rather than silently
		// reclassified; reporting shows what the model actually said.
		return model.ConflictType(strings.ToLower(strings.TrimSpace(s)))
	}
}

func normalizeSeverity(s string) model.Severity {
	switch model.Severity(strings.ToLower(strings.TrimSpace(s))) {
	case model.SeverityHigh:
		return model.SeverityHigh
	case model.SeverityMedium:
		return model.SeverityMedium
	case model.SeverityLow:
		return model.SeverityLow
	case model.SeverityNone:
		return model.SeverityNone
	default:
		return model.Severity(strings.ToLower(strings.TrimSpace(s)))
	}
}
