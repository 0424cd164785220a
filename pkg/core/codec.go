package core

import "encoding/json"

// Encoded is the serialized form shared by every polymorphic family in the
// engine (geometries, interaction models, phase profiles, media, apertures).
// Type selects a constructor from the family's static decoder map and Params
// carries that constructor's arguments.
type Encoded struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

// NewEncoded marshals params under the given type tag.
func NewEncoded(typeTag string, params any) (Encoded, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Encoded{}, err
	}
	return Encoded{Type: typeTag, Params: raw}, nil
}
