package bridge

import (
	"encoding/json"
	"errors"
)

// Message kinds form a closed set. Envelopes with any other kind are
// ignored, never misinterpreted.
const (
	KindOriginalContent = "ORIGINAL_CONTENT"
	KindApplyOverrides  = "APPLY_OVERRIDES"
)

var ErrUnknownKind = errors.New("unknown bridge message kind")

// Envelope is the tagged wire shape of every bridge message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Overrides carries the two parallel key maps of the live-preview
// channel. Keys correspond to data-key markers on rendered elements.
type Overrides struct {
	Text   map[string]string `json:"text"`
	Images map[string]string `json:"images"`
}

// Normalize tolerates missing sub-maps by treating them as empty, so a
// malformed payload can never fault the receiver.
func (o *Overrides) Normalize() {
	if o.Text == nil {
		o.Text = make(map[string]string)
	}
	if o.Images == nil {
		o.Images = make(map[string]string)
	}
}

// NewOriginalContent wraps a page snapshot for the admin side.
func NewOriginalContent(snapshot Overrides) (*Envelope, error) {
	snapshot.Normalize()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	return &Envelope{Type: KindOriginalContent, Payload: payload}, nil
}

// NewApplyOverrides wraps overrides for the embedded page.
func NewApplyOverrides(overrides Overrides) (*Envelope, error) {
	overrides.Normalize()
	payload, err := json.Marshal(overrides)
	if err != nil {
		return nil, err
	}

	return &Envelope{Type: KindApplyOverrides, Payload: payload}, nil
}

// DecodeOverrides extracts the override maps from an envelope payload,
// normalizing malformed or absent maps to empty ones.
func DecodeOverrides(payload json.RawMessage) Overrides {
	var overrides Overrides
	if len(payload) > 0 {
		// best effort; a decode failure leaves empty maps
		_ = json.Unmarshal(payload, &overrides)
	}
	overrides.Normalize()
	return overrides
}
