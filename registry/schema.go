package registry

import (
	"encoding/json"
	"fmt"
)

// DecodePackument parses packument JSON and validates it. Entries that fail
// Prune are removed and reported in the packument's Warnings.
func DecodePackument(data []byte) (*Packument, error) {
	var p Packument
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &FieldError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Warnings = p.Prune()
	return &p, nil
}

// DecodeManifest parses a single package.json and validates it.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &FieldError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// decodePackumentLoose parses packument JSON without validation.
func decodePackumentLoose(data []byte) (*Packument, error) {
	var p Packument
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &FieldError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return &p, nil
}
