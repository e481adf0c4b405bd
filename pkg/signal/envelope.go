// Package signal implements the Signal envelope: a CloudEvents v1.0.2
// compatible event carrying an opaque payload and an optional dispatch
// extension describing how the event should be delivered downstream.
package signal

import (
	"fmt"
	"strings"

	"github.com/sigbus/sigbus/pkg/idgen"
	"github.com/sigbus/sigbus/pkg/sigerr"
)

// SpecVersion is the only CloudEvents spec version this package accepts.
const SpecVersion = "1.0.2"

// DefaultDataContentType is injected when Data is present but
// DataContentType is not.
const DefaultDataContentType = "application/json"

// Signal is an immutable CloudEvents-compatible event envelope.
type Signal struct {
	SpecVersion     string        `json:"specversion"`
	ID              string        `json:"id"`
	Source          string        `json:"source"`
	Type            string        `json:"type"`
	Subject         string        `json:"subject,omitempty"`
	Time            string        `json:"time,omitempty"`
	DataContentType string        `json:"datacontenttype,omitempty"`
	DataSchema      string        `json:"dataschema,omitempty"`
	Data            any           `json:"data,omitempty"`
	Dispatch        *DispatchSpec `json:"-"`
}

// Fields is the attribute bag accepted by the constructor. Keys are
// normalized to strings before validation, so callers may build it from
// either string or symbol-like keys in languages that distinguish them;
// in Go this is simply a map[string]any.
type Fields map[string]any

// Target is an (adapter_tag, options) pair identifying how and where a
// signal should be delivered.
type Target struct {
	Tag     string         `json:"adapter"`
	Options map[string]any `json:"options,omitempty"`
}

// DispatchSpec is either a single Target or an ordered sequence of Targets.
type DispatchSpec struct {
	Targets []Target
}

// Single reports whether the spec names exactly one target.
func (d *DispatchSpec) Single() bool {
	return d != nil && len(d.Targets) == 1
}

// New builds and validates a Signal from a field bag, applying the
// defaults described in the envelope specification. defaultSource is
// used when the caller does not supply "source" — language-neutral
// callers configure this rather than relying on stack introspection.
func New(fields Fields, defaultSource string) (*Signal, error) {
	sig := &Signal{}

	if v, ok := stringField(fields, "specversion"); ok {
		sig.SpecVersion = v
	} else {
		sig.SpecVersion = SpecVersion
	}

	if v, ok := stringField(fields, "id"); ok {
		sig.ID = v
	} else if _, present := fields["id"]; present {
		return nil, sigerr.Parse("id must be a non-empty string")
	} else {
		sig.ID = idgen.NewID()
	}

	if v, ok := stringField(fields, "source"); ok {
		sig.Source = v
	} else if _, present := fields["source"]; present {
		return nil, sigerr.Parse("source must be a non-empty string")
	} else {
		sig.Source = defaultSource
	}

	if v, ok := stringField(fields, "type"); ok {
		sig.Type = v
	}

	if v, ok := stringField(fields, "subject"); ok {
		sig.Subject = v
	} else if _, present := fields["subject"]; present {
		return nil, sigerr.Parse("subject must be non-empty when present")
	}

	if v, ok := stringField(fields, "time"); ok {
		sig.Time = v
	} else if _, present := fields["time"]; present {
		return nil, sigerr.Parse("time must be non-empty when present")
	} else {
		sig.Time = idgen.NowISO8601()
	}

	if v, ok := stringField(fields, "datacontenttype"); ok {
		sig.DataContentType = v
	} else if _, present := fields["datacontenttype"]; present {
		return nil, sigerr.Parse("datacontenttype must be non-empty when present")
	}

	if v, ok := stringField(fields, "dataschema"); ok {
		sig.DataSchema = v
	} else if _, present := fields["dataschema"]; present {
		return nil, sigerr.Parse("dataschema must be non-empty when present")
	}

	if data, present := fields["data"]; present {
		if s, isStr := data.(string); isStr && s == "" {
			return nil, sigerr.Parse("data must not be an empty string")
		}
		sig.Data = data
	}

	if sig.Data != nil && sig.DataContentType == "" {
		sig.DataContentType = DefaultDataContentType
	}

	if raw, present := fields["dispatch"]; present {
		spec, err := parseDispatchSpec(raw)
		if err != nil {
			return nil, err
		}
		sig.Dispatch = spec
	}

	if err := sig.validate(); err != nil {
		return nil, err
	}

	return sig, nil
}

// MustNew is the strict variant: it panics on validation failure. Use only
// where the caller has no reasonable recovery path (tests, static
// bootstrapping of known-good signals).
func MustNew(fields Fields, defaultSource string) *Signal {
	sig, err := New(fields, defaultSource)
	if err != nil {
		panic(err)
	}
	return sig
}

// validate re-checks invariants on an already-populated Signal. Called from
// New, and again by the codec after decoding wire JSON.
func (s *Signal) validate() error {
	if s.SpecVersion != SpecVersion {
		return sigerr.Parse("specversion must be %q, got %q", SpecVersion, s.SpecVersion)
	}
	if s.Type == "" {
		return sigerr.Parse("type is required")
	}
	if s.Source == "" {
		return sigerr.Parse("source is required")
	}
	if s.ID == "" {
		return sigerr.Parse("id must not be empty")
	}
	return nil
}

func stringField(fields Fields, key string) (string, bool) {
	raw, present := fields[key]
	if !present {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// parseDispatchSpec normalizes the many shapes a caller may pass for
// "dispatch": nil, a single Target, a map describing one target, or a
// slice of either.
func parseDispatchSpec(raw any) (*DispatchSpec, error) {
	if raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case DispatchSpec:
		return &v, nil
	case *DispatchSpec:
		return v, nil
	case Target:
		return &DispatchSpec{Targets: []Target{v}}, nil
	case []Target:
		if len(v) == 0 {
			return nil, sigerr.Parse("invalid dispatch config")
		}
		for _, t := range v {
			if err := validateTarget(t); err != nil {
				return nil, err
			}
		}
		return &DispatchSpec{Targets: v}, nil
	case map[string]any:
		t, err := targetFromMap(v)
		if err != nil {
			return nil, err
		}
		return &DispatchSpec{Targets: []Target{t}}, nil
	case []map[string]any:
		if len(v) == 0 {
			return nil, sigerr.Parse("invalid dispatch config")
		}
		targets := make([]Target, 0, len(v))
		for _, m := range v {
			t, err := targetFromMap(m)
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
		return &DispatchSpec{Targets: targets}, nil
	case []any:
		if len(v) == 0 {
			return nil, sigerr.Parse("invalid dispatch config")
		}
		targets := make([]Target, 0, len(v))
		for _, elem := range v {
			t, err := targetFromAny(elem)
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
		return &DispatchSpec{Targets: targets}, nil
	default:
		return nil, sigerr.Parse("invalid dispatch config")
	}
}

func targetFromAny(v any) (Target, error) {
	switch t := v.(type) {
	case Target:
		return t, validateTarget(t)
	case map[string]any:
		return targetFromMap(t)
	default:
		return Target{}, sigerr.Parse("invalid dispatch config")
	}
}

func targetFromMap(m map[string]any) (Target, error) {
	tagRaw, ok := m["adapter"]
	if !ok {
		tagRaw, ok = m["tag"]
	}
	tag, isStr := tagRaw.(string)
	if !ok || !isStr || tag == "" {
		return Target{}, sigerr.Parse("invalid dispatch config")
	}

	var options map[string]any
	if optRaw, present := m["options"]; present {
		options, ok = optRaw.(map[string]any)
		if !ok {
			return Target{}, sigerr.Parse("invalid dispatch config")
		}
	}

	t := Target{Tag: tag, Options: options}
	return t, validateTarget(t)
}

func validateTarget(t Target) error {
	if strings.TrimSpace(t.Tag) == "" {
		return sigerr.Parse("invalid dispatch config")
	}
	return nil
}

// WithDispatch returns a copy of s with the dispatch spec replaced. Signals
// are otherwise immutable once constructed; this is the one supported way
// to attach routing metadata after the fact (e.g. when a Router decision
// produces dispatch targets for a signal built without any).
func (s *Signal) WithDispatch(spec *DispatchSpec) *Signal {
	clone := *s
	clone.Dispatch = spec
	return &clone
}

// String renders a compact human-readable summary, useful in logs.
func (s *Signal) String() string {
	return fmt.Sprintf("Signal{id=%s type=%s source=%s}", s.ID, s.Type, s.Source)
}
