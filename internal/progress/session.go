// Package progress tracks per-document analysis state and fans updates
// out to subscribers. Each document has exactly one writer (the
// pipeline driving it) and any number of readers; snapshots are plain
// data, never live references into session state.
package progress

import (
	"math"
	"time"
)

// Stage is a phase of document analysis
type Stage string

const (
	StageUpload          Stage = "upload"
	StageExtract         Stage = "extract"
	StageDetectConflicts Stage = "detect_conflicts"
	StageVerify          Stage = "verify"
	StageComplete        Stage = "complete"
)

// session is the live per-document state. Callers never see it
// directly; they get Snapshots.
type session struct {
	stage           Stage
	stageLabel      string
	current         int
	total           int
	message         string
	subMessage      string
	startedAt       time.Time
	completedStages []string
}

func newSession() *session {
	return &session{
		stage:      StageUpload,
		stageLabel: "Uploading document",
		startedAt:  time.Now(),
	}
}

// Snapshot is the immutable view pushed to subscribers. Progress is
// derived from the counters, never stored.
type Snapshot struct {
	Stage           Stage    `json:"stage"`
	StageLabel      string   `json:"stage_label"`
	Current         int      `json:"current"`
	Total           int      `json:"total"`
	Progress        float64  `json:"progress"`
	Message         string   `json:"message"`
	SubMessage      string   `json:"sub_message"`
	ElapsedSeconds  float64  `json:"elapsed_seconds"`
	CompletedStages []string `json:"completed_stages"`
}

func (s *session) snapshot() Snapshot {
	progress := 0.0
	if s.total > 0 {
		progress = math.Round(float64(s.current)/float64(s.total)*1000) / 10
	}
	completed := make([]string, len(s.completedStages))
	copy(completed, s.completedStages)
	return Snapshot{
		Stage:           s.stage,
		StageLabel:      s.stageLabel,
		Current:         s.current,
		Total:           s.total,
		Progress:        progress,
		Message:         s.message,
		SubMessage:      s.subMessage,
		ElapsedSeconds:  math.Round(time.Since(s.startedAt).Seconds()*10) / 10,
		CompletedStages: completed,
	}
}

// Update carries the fields to change on a session. Nil fields are
// left untouched, mirroring a partial update.
type Update struct {
	Stage      *Stage
	StageLabel *string
	Current    *int
	Total      *int
	Message    *string
	SubMessage *string

	// MarkStageComplete appends the stage that was current before this
	// update to the completed set. Completion is recorded retroactively,
	// at the moment the next stage begins or the run finishes.
	MarkStageComplete bool
}

// Helpers for building Updates inline.

// StageOf returns a pointer to the given stage
func StageOf(s Stage) *Stage { return &s }

// IntOf returns a pointer to the given int
func IntOf(i int) *int { return &i }

// StringOf returns a pointer to the given string
func StringOf(s string) *string { return &s }
