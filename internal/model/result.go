package model

import "time"

// Statistics breaks down detected conflicts for reporting
type Statistics struct {
	BySeverity map[Severity]int     `json:"by_severity"`
	ByType     map[ConflictType]int `json:"by_type"`
}

// DetectionResult is the complete outcome of one document analysis
type DetectionResult struct {
	DocumentID       string             `json:"document_id"`
	AnalyzedAt       time.Time          `json:"analyzed_at"`
	TotalFacts       int                `json:"total_facts"`
	TotalComparisons int                `json:"total_comparisons"`
	ConflictsFound   int                `json:"conflicts_found"`
	Conflicts        []ConflictRecord   `json:"conflicts"`
	Repetitions      []RepetitionRecord `json:"repetitions,omitempty"`
	Statistics       Statistics         `json:"statistics"`
	SavedToStore     bool               `json:"saved_to_store"`
	Message          string             `json:"message,omitempty"`
}

// BuildStatistics tallies conflicts by severity and type
func BuildStatistics(conflicts []ConflictRecord) Statistics {
	stats := Statistics{
		BySeverity: make(map[Severity]int),
		ByType:     make(map[ConflictType]int),
	}
	for _, c := range conflicts {
		stats.BySeverity[c.Severity]++
		stats.ByType[c.ConflictType]++
	}
	return stats
}
