package signal

import (
	"encoding/json"
	"strings"

	"github.com/sigbus/sigbus/pkg/sigerr"
)

// wireSignal is the JSON projection of Signal: CloudEvents-standard fields
// plus data. Dispatch is transport-side routing metadata, not part of the
// event payload contract, and is never emitted on the wire.
type wireSignal struct {
	SpecVersion     string `json:"specversion"`
	ID              string `json:"id"`
	Source          string `json:"source"`
	Type            string `json:"type"`
	Subject         string `json:"subject,omitempty"`
	Time            string `json:"time,omitempty"`
	DataContentType string `json:"datacontenttype,omitempty"`
	DataSchema      string `json:"dataschema,omitempty"`
	Data            any    `json:"data,omitempty"`
}

func toWire(s *Signal) wireSignal {
	return wireSignal{
		SpecVersion:     s.SpecVersion,
		ID:              s.ID,
		Source:          s.Source,
		Type:            s.Type,
		Subject:         s.Subject,
		Time:            s.Time,
		DataContentType: s.DataContentType,
		DataSchema:      s.DataSchema,
		Data:            s.Data,
	}
}

func (w wireSignal) toFields() Fields {
	f := Fields{
		"specversion": w.SpecVersion,
		"id":          w.ID,
		"source":      w.Source,
		"type":        w.Type,
	}
	if w.Subject != "" {
		f["subject"] = w.Subject
	}
	if w.Time != "" {
		f["time"] = w.Time
	}
	if w.DataContentType != "" {
		f["datacontenttype"] = w.DataContentType
	}
	if w.DataSchema != "" {
		f["dataschema"] = w.DataSchema
	}
	if w.Data != nil {
		f["data"] = w.Data
	}
	return f
}

// Encode serializes a single Signal to its CloudEvents JSON form.
func Encode(s *Signal) ([]byte, error) {
	b, err := json.Marshal(toWire(s))
	if err != nil {
		return nil, sigerr.Parse("encode failed: %v", err)
	}
	return b, nil
}

// EncodeSequence serializes a homogeneous sequence of Signals to a JSON array.
func EncodeSequence(sigs []*Signal) ([]byte, error) {
	wire := make([]wireSignal, len(sigs))
	for i, s := range sigs {
		wire[i] = toWire(s)
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return nil, sigerr.Parse("encode failed: %v", err)
	}
	return b, nil
}

// Decode parses a JSON document containing either a single signal object or
// an array of signal objects, dispatching on the top-level JSON kind.
// Every element is re-validated exactly as the constructor would; any
// element failure aborts the entire decode.
func Decode(data []byte, defaultSource string) ([]*Signal, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, sigerr.Parse("empty input")
	}

	switch trimmed[0] {
	case '[':
		var wire []wireSignal
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, sigerr.Parse("invalid JSON array: %v", err)
		}
		sigs := make([]*Signal, 0, len(wire))
		for i, w := range wire {
			sig, err := New(w.toFields(), defaultSource)
			if err != nil {
				return nil, sigerr.Parse("element %d: %v", i, err)
			}
			sigs = append(sigs, sig)
		}
		return sigs, nil
	case '{':
		var w wireSignal
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, sigerr.Parse("invalid JSON object: %v", err)
		}
		sig, err := New(w.toFields(), defaultSource)
		if err != nil {
			return nil, err
		}
		return []*Signal{sig}, nil
	default:
		return nil, sigerr.Parse("input must be a JSON object or array")
	}
}

// DecodeOne is a convenience wrapper over Decode for callers that know the
// payload holds exactly one signal.
func DecodeOne(data []byte, defaultSource string) (*Signal, error) {
	sigs, err := Decode(data, defaultSource)
	if err != nil {
		return nil, err
	}
	if len(sigs) != 1 {
		return nil, sigerr.Parse("expected exactly one signal, got %d", len(sigs))
	}
	return sigs[0], nil
}
