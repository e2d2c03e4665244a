package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mkratov/concordia/internal/model"
)

// Document is the decoded analysis input: pre-extracted facts plus the
// sectioned text they came from.
type Document struct {
	DocumentID string          `json:"document_id"`
	Facts      []model.Fact    `json:"facts"`
	Sections   []model.Section `json:"sections"`
}

// DecodeDocument parses analysis input from JSON. Both shapes are
// accepted: a full document object, or a bare array of facts.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err == nil && (doc.Facts != nil || doc.Sections != nil || doc.DocumentID != "") {
		return &doc, nil
	}

	var facts []model.Fact
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{Facts: facts}, nil
}

// LoadDocument reads and decodes analysis input from a file
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
