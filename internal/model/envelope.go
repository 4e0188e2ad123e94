package model

import (
	"time"

	"github.com/google/uuid"
)

// HeaderEnvelope carries one raw CSV header line submitted for a source.
type HeaderEnvelope struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	LineNumber int64     `json:"line_number"`
	Line       string    `json:"line"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewHeaderEnvelope stamps a new envelope with an ID and receive time.
func NewHeaderEnvelope(source string, lineNumber int64, line string) *HeaderEnvelope {
	return &HeaderEnvelope{
		ID:         uuid.NewString(),
		Source:     source,
		LineNumber: lineNumber,
		Line:       line,
		ReceivedAt: time.Now().UTC(),
	}
}

// Column describes one decoded header column for transport.
type Column struct {
	Index  int    `json:"index" yaml:"index"`
	Key    string `json:"key" yaml:"key"`
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	Token  string `json:"token" yaml:"token"`
}

// HeaderBlock is the decoded form of a header line, as published and served.
type HeaderBlock struct {
	EnvelopeID string    `json:"envelope_id,omitempty" yaml:"envelope_id,omitempty"`
	Source     string    `json:"source,omitempty" yaml:"source,omitempty"`
	LineNumber *int64    `json:"line_number,omitempty" yaml:"line_number,omitempty"`
	Columns    []Column  `json:"columns" yaml:"columns"`
	DecodedAt  time.Time `json:"decoded_at" yaml:"decoded_at"`
}
