// Package biometric holds the value types exchanged with the biometric service.
package biometric

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultFaceMatchThreshold is the face distance threshold the kiosk has
// always sent with compare requests.
const DefaultFaceMatchThreshold = 0.6

// Descriptor is a face encoding. It is only meaningful to the biometric
// service; votegate stores and forwards it.
type Descriptor []float64

// ErrEmptyDescriptor is returned when a stored encoding is blank.
var ErrEmptyDescriptor = errors.New("face descriptor is empty")

// ParseDescriptor decodes the JSON array string stored on the ledger.
func ParseDescriptor(encoded string) (Descriptor, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrEmptyDescriptor
	}
	var d Descriptor
	if err := json.Unmarshal([]byte(encoded), &d); err != nil {
		return nil, fmt.Errorf("decode face descriptor: %w", err)
	}
	if len(d) == 0 {
		return nil, ErrEmptyDescriptor
	}
	return d, nil
}

// String encodes the descriptor in the form the ledger stores.
func (d Descriptor) String() string {
	b, err := json.Marshal([]float64(d))
	if err != nil {
		return "[]"
	}
	return string(b)
}

// FingerprintMatch is the verify reading: whether any enrolled template
// matched, and whose.
type FingerprintMatch struct {
	IsMatch bool   `json:"is_match"`
	VoterID uint64 `json:"voter_id"`
}
