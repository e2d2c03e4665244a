package model

// ConflictType classifies the nature of a detected conflict
type ConflictType string

const (
	ConflictNone       ConflictType = "none"
	ConflictData       ConflictType = "data_inconsistency"
	ConflictLogical    ConflictType = "logical_contradiction"
	ConflictTime       ConflictType = "time_conflict"
	ConflictDefinition ConflictType = "definition_conflict"
)

// Severity is the ordinal importance of a conflict
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities for sorting: high sorts first, unknown values
// rank as medium
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	case SeverityNone:
		return 3
	default:
		return 1
	}
}

// FactRef is the summarized view of a fact carried inside a conflict record
type FactRef struct {
	FactID       string   `json:"fact_id"`
	Type         string   `json:"type,omitempty"`
	Content      string   `json:"content"`
	OriginalText string   `json:"original_text,omitempty"`
	Location     Location `json:"location"`
}

// RefOf summarizes a fact for inclusion in a conflict record
func RefOf(f Fact) FactRef {
	return FactRef{
		FactID:       f.SurrogateID(),
		Type:         f.Type,
		Content:      f.Content,
		OriginalText: f.OriginalText,
		Location:     f.Location,
	}
}

// ConflictRecord is the oracle's verdict attached to a candidate pair
type ConflictRecord struct {
	ConflictID   string       `json:"conflict_id"`
	FactA        FactRef      `json:"fact_a"`
	FactB        FactRef      `json:"fact_b"`
	ConflictType ConflictType `json:"conflict_type"`
	Severity     Severity     `json:"severity"`
	Explanation  string       `json:"explanation"`
	Confidence   float64      `json:"confidence"`
}

// RepetitionRecord is a literal passage repeated across sections.
// Records only exist for counts at or above the configured minimum.
type RepetitionRecord struct {
	NormalizedText  string   `json:"normalized_text"`
	OccurrenceCount int      `json:"occurrence_count"`
	Locations       []string `json:"locations"` // Sorted unique section titles
}
