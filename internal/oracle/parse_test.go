package oracle

import (
	"testing"

	"github.com/mkratov/concordia/internal/model"
)

func TestParseVerdict_CleanSingleLine(t *testing.T) {
	v, err := ParseVerdict(`{"has_conflict": true, "conflict_type": "time_conflict", "severity": "high", "explanation": "dates differ", "confidence": 0.9}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.HasConflict {
		t.Error("expected has_conflict=true")
	}
	if v.ConflictType != model.ConflictTime {
		t.Errorf("expected time_conflict, got %s", v.ConflictType)
	}
	if v.Severity != model.SeverityHigh {
		t.Errorf("expected high, got %s", v.Severity)
	}
	if v.Confidence != 0.9 {
		t.Errorf("expected 0.9, got %f", v.Confidence)
	}
}

func TestParseVerdict_MarkdownFences(t *testing.T) {
	responses := []string{
		"```json\n{\"has_conflict\": true, \"severity\": \"low\"}\n```",
		"```\n{\"has_conflict\": true, \"severity\": \"low\"}\n```",
	}
	for _, raw := range responses {
		v, err := ParseVerdict(raw)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if !v.HasConflict || v.Severity != model.SeverityLow {
			t.Errorf("fence stripping failed for %q: %+v", raw, v)
		}
	}
}

func TestParseVerdict_PrettyPrintedJSON(t *testing.T) {
	raw := "{\n    \"has_conflict\": true,\n    \"conflict_type\": \"data_inconsistency\",\n    \"severity\":\t\"medium\",\n    \"explanation\": \"numbers disagree\",\n    \"confidence\": 0.7\n}"
	v, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ConflictType != model.ConflictData || v.Severity != model.SeverityMedium {
		t.Errorf("whitespace collapsing failed: %+v", v)
	}
}

func TestParseVerdict_BackfillDefaults(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantConflict   bool
		wantSeverity   model.Severity
		wantConfidence float64
	}{
		{"empty object", `{}`, false, model.SeverityNone, 0.3},
		{"conflict only", `{"has_conflict": true}`, true, model.SeverityMedium, 0.5},
		{"no conflict defaults", `{"has_conflict": false, "explanation": "fine"}`, false, model.SeverityNone, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVerdict(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.HasConflict != tt.wantConflict {
				t.Errorf("has_conflict: got %v, want %v", v.HasConflict, tt.wantConflict)
			}
			if v.Severity != tt.wantSeverity {
				t.Errorf("severity: got %s, want %s", v.Severity, tt.wantSeverity)
			}
			if v.Confidence != tt.wantConfidence {
				t.Errorf("confidence: got %f, want %f", v.Confidence, tt.wantConfidence)
			}
			if tt.raw == `{}` && v.ConflictType != model.ConflictNone {
				t.Errorf("conflict_type default: got %s", v.ConflictType)
			}
		})
	}
}

func TestParseVerdict_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not json at all", "{\"has_conflict\": "} {
		if _, err := ParseVerdict(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestParseVerdict_UnknownLabelsKeptVerbatim(t *testing.T) {
	v, err := ParseVerdict(`{"has_conflict": true, "conflict_type": "Spooky", "severity": "CATASTROPHIC"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ConflictType != "spooky" {
		t.Errorf("expected lowercased verbatim type, got %s", v.ConflictType)
	}
	// Unknown severities rank as medium when sorting.
	if v.Severity.Rank() != model.SeverityMedium.Rank() {
		t.Errorf("unknown severity should rank as medium, got %d", v.Severity.Rank())
	}
}
