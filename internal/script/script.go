// Package script models the portable action script exchanged with the UI test
// runner and the result it writes back.
//
// A Script is encoded to JSON, written to the run's mailbox, and decoded by the
// runner inside the simulator. Actions and element targets are closed tagged
// unions keyed by a "type" discriminator; decoding an unknown discriminator
// fails with a *DecodeError and constructs nothing.
package script

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

// Script is the sequence of actions to run against one app.
// A Script is built once per run and not modified afterwards.
type Script struct {
	BundleID    string
	Actions     []Action
	RecordVideo bool
}

type scriptWire struct {
	BundleID    *string           `json:"bundleId"`
	Actions     []json.RawMessage `json:"actions"`
	RecordVideo bool              `json:"recordVideo"`
}

// MarshalJSON encodes the script in the runner's wire format.
func (s Script) MarshalJSON() ([]byte, error) {
	actions := make([]json.RawMessage, 0, len(s.Actions))
	for i, a := range s.Actions {
		raw, err := EncodeAction(a)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, raw)
	}
	bundle := s.BundleID
	return json.Marshal(scriptWire{BundleID: &bundle, Actions: actions, RecordVideo: s.RecordVideo})
}

// UnmarshalJSON decodes a script, dispatching each action on its discriminator.
func (s *Script) UnmarshalJSON(data []byte) error {
	var w scriptWire
	if err := json.Unmarshal(data, &w); err != nil {
		return &DecodeError{Kind: KindScript, Err: err}
	}
	if w.BundleID == nil {
		return &DecodeError{Kind: KindScript, Field: "bundleId", Missing: true}
	}

	actions := make([]Action, 0, len(w.Actions))
	for i, raw := range w.Actions {
		a, err := DecodeAction(raw)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}

	*s = Script{BundleID: *w.BundleID, Actions: actions, RecordVideo: w.RecordVideo}
	return nil
}

// Encode renders the script as indented JSON for the runner's script file.
func Encode(s *Script) ([]byte, error) {
	if s == nil {
		return nil, simerrors.Wrap(simerrors.ErrScriptMalformed, "nil script")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, simerrors.Wrap(err, "failed to encode script")
	}
	return data, nil
}

// Decode parses a JSON script. On failure it returns nil and an error
// matching ErrScriptMalformed.
func Decode(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, malformed(err)
	}
	return &s, nil
}

// DecodeYAML parses a script authored as YAML. The document is converted to
// the JSON wire form and decoded through the same dispatch path as Decode.
func DecodeYAML(data []byte) (*Script, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{Kind: KindScript, Err: err}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &DecodeError{Kind: KindScript, Err: err}
	}
	return Decode(raw)
}

// malformed makes sure every decode failure matches ErrScriptMalformed,
// including syntax errors surfaced by encoding/json before any custom decoder ran.
func malformed(err error) error {
	if errors.Is(err, simerrors.ErrScriptMalformed) {
		return err
	}
	return &DecodeError{Kind: KindScript, Err: err}
}
