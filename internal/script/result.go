package script

import (
	"encoding/json"

	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

// Frame is an element's on-screen rectangle in points.
type Frame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ActionResult is the outcome of one executed action.
// At most one of Value, Properties, Frame, ScreenshotPath is set.
type ActionResult struct {
	ActionIndex    int            `json:"actionIndex"`
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
	Value          *string        `json:"value,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
	Frame          *Frame         `json:"frame,omitempty"`
	ScreenshotPath string         `json:"screenshotPath,omitempty"`
}

// ScriptResult is what the runner reports for a whole script.
type ScriptResult struct {
	Success   bool           `json:"success"`
	Results   []ActionResult `json:"results"`
	Error     string         `json:"error,omitempty"`
	VideoPath string         `json:"videoPath,omitempty"`
}

// Failed returns the first failing action result, or nil.
func (r *ScriptResult) Failed() *ActionResult {
	for i := range r.Results {
		if !r.Results[i].Success {
			return &r.Results[i]
		}
	}
	return nil
}

// Summarize builds a ScriptResult from per-action results: success is the
// AND of all results and the error is the first failing action's error.
func Summarize(results []ActionResult) *ScriptResult {
	out := &ScriptResult{Success: true, Results: results}
	if out.Results == nil {
		out.Results = []ActionResult{}
	}
	if failed := out.Failed(); failed != nil {
		out.Success = false
		out.Error = failed.Error
	}
	return out
}

// StepFunc executes the action at index i.
type StepFunc func(i int, a Action) ActionResult

// Execute runs the script's actions in order and stops at the first failure.
// Actions after a failing one are never attempted, so the returned result
// holds exactly as many entries as actions that ran.
func Execute(s *Script, step StepFunc) *ScriptResult {
	results := make([]ActionResult, 0, len(s.Actions))
	for i, a := range s.Actions {
		r := step(i, a)
		r.ActionIndex = i
		results = append(results, r)
		if !r.Success {
			break
		}
	}
	return Summarize(results)
}

// EncodeResult renders a result in the runner's result-file format.
func EncodeResult(r *ScriptResult) ([]byte, error) {
	if r.Results == nil {
		cp := *r
		cp.Results = []ActionResult{}
		r = &cp
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, simerrors.Wrap(err, "failed to encode result")
	}
	return data, nil
}

// DecodeResult parses a result file. Failures match ErrResultMalformed.
func DecodeResult(data []byte) (*ScriptResult, error) {
	var r ScriptResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, simerrors.Wrap(simerrors.ErrResultMalformed, err.Error())
	}
	if r.Results == nil {
		r.Results = []ActionResult{}
	}
	return &r, nil
}
