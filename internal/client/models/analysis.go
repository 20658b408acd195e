package models

import "encoding/json"

// SavedAnalysis is a stored analysis snapshot. Factors are kept raw since
// their shape belongs to the analysis service.
type SavedAnalysis struct {
	ID             string          `json:"id,omitempty"`
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name,omitempty"`
	Recommendation string          `json:"recommendation,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Factors        json.RawMessage `json:"factors,omitempty"`
	Timestamp      string          `json:"timestamp,omitempty"`
}

type NoteUpdate struct {
	Notes string `json:"notes"`
}

// PopularStock is an entry of the popular stocks list.
type PopularStock struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
