package model

import (
	"time"

	"github.com/telhawk-systems/telhawk-csv/internal/csv/headers"
	"github.com/telhawk-systems/telhawk-csv/internal/event"
)

// NewHeaderBlock decodes h into its transport form.
func NewHeaderBlock(h *headers.Headers) (*HeaderBlock, error) {
	fields, err := h.Fields()
	if err != nil {
		return nil, err
	}

	block := &HeaderBlock{
		Columns:   make([]Column, len(fields)),
		DecodedAt: time.Now().UTC(),
	}
	if n, ok := h.LineNumber(); ok {
		block.LineNumber = &n
	}
	for i, f := range fields {
		block.Columns[i] = Column{
			Index:  i,
			Key:    headers.Key(i),
			Name:   f.Name(),
			Type:   f.Type().Tag(),
			Format: f.Format(),
			Token:  f.Encode(),
		}
	}
	return block, nil
}

// PropertyView is the transport form of an event property.
type PropertyView struct {
	Name  string      `json:"name" yaml:"name"`
	Kind  string      `json:"kind" yaml:"kind"`
	Value interface{} `json:"value" yaml:"value"`
}

// Properties converts props in order.
func Properties(props []event.Property) []PropertyView {
	out := make([]PropertyView, len(props))
	for i, p := range props {
		out[i] = PropertyView{Name: p.Name, Kind: p.Kind.String(), Value: p.Value}
	}
	return out
}
