package model

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

// Polarity indicates whether a fact asserts or denies its statement
type Polarity string

const (
	PolarityAffirmative Polarity = "affirmative"
	PolarityNegative    Polarity = "negative"
)

// VerifiableType classifies how a fact could be checked
type VerifiableType string

const (
	VerifiablePublic   VerifiableType = "public"   // Checkable against public information
	VerifiableInternal VerifiableType = "internal" // Internal data, only checkable in context
)

// Location identifies where in the document a fact was extracted
type Location struct {
	SectionTitle string `json:"section_title"`
	SectionIndex int    `json:"section_index"`
}

// Fact is a structured claim extracted from a document section.
// Facts are produced by an upstream extraction stage and are read-only here.
type Fact struct {
	ID             string         `json:"fact_id"`
	Subject        string         `json:"subject,omitempty"`
	Predicate      string         `json:"predicate,omitempty"`
	Object         string         `json:"object,omitempty"`
	Value          string         `json:"value,omitempty"`
	Time           string         `json:"time,omitempty"` // Normalized date or period, empty if none
	Polarity       Polarity       `json:"polarity,omitempty"`
	Type           string         `json:"type,omitempty"`
	VerifiableType VerifiableType `json:"verifiable_type,omitempty"`
	Content        string         `json:"content"`
	OriginalText   string         `json:"original_text,omitempty"`
	Location       Location       `json:"location"`
	Confidence     float64        `json:"confidence"`
}

// Section is a titled slice of document content, the input to
// repetition detection
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Text returns the concatenated content and original text, the
// textual representation used by keyword matching and similarity
func (f Fact) Text() string {
	if f.OriginalText == "" {
		return f.Content
	}
	return f.Content + " " + f.OriginalText
}

// EffectivePolarity returns the fact's polarity, defaulting to affirmative
func (f Fact) EffectivePolarity() Polarity {
	if f.Polarity == "" {
		return PolarityAffirmative
	}
	return Polarity(strings.ToLower(string(f.Polarity)))
}

// SurrogateID returns the fact id, or a stable content hash when the
// extraction stage did not assign one. Used for pair deduplication only.
func (f Fact) SurrogateID() string {
	if f.ID != "" {
		return f.ID
	}
	sum := sha256.Sum256([]byte(f.Content))
	return "sha:" + hex.EncodeToString(sum[:8])
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// NumericValue extracts the first number from the fact's value field
func (f Fact) NumericValue() (float64, bool) {
	if f.Value == "" {
		return 0, false
	}
	m := numberPattern.FindString(f.Value)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HasPercent reports whether the fact's value or source quote carries
// a percent sign, which widens the numeric divergence threshold
func (f Fact) HasPercent() bool {
	return strings.Contains(f.Value, "%") || strings.Contains(f.OriginalText, "%")
}
