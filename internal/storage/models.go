// Package storage persists imported building models and the question log.
package storage

import (
	"time"

	"github.com/google/uuid"
)

// Model is an imported element export.
type Model struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	SourcePath   string    `json:"sourcePath,omitempty"`
	Fingerprint  string    `json:"fingerprint"`
	Schema       string    `json:"schema,omitempty"`
	ElementCount int       `json:"elementCount"`
	// Document is the export as received, re-read when a session loads the model.
	Document  []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// QueryLogEntry records one answered question.
type QueryLogEntry struct {
	ID         uuid.UUID `json:"id"`
	ModelID    uuid.UUID `json:"modelId"`
	SessionID  string    `json:"sessionId,omitempty"`
	Question   string    `json:"question"`
	Intent     string    `json:"intent"`
	Value      *float64  `json:"value,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	Confidence string    `json:"confidence"`
	CreatedAt  time.Time `json:"createdAt"`
}
