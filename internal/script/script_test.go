package script_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simerrors "github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/script"
)

func allTargets() []script.ElementTarget {
	return []script.ElementTarget{
		script.Identifier("loginButton"),
		script.Label("Sign In"),
		script.Coordinate(120, 0),
		script.ElementOfType("button", 2),
		script.ElementOfType("textField", 0),
	}
}

func allActions() []script.Action {
	btn := script.Identifier("btn")
	down := script.DirectionDown
	return []script.Action{
		script.Tap{Target: btn},
		script.DoubleTap{Target: script.Label("Photo")},
		script.TwoFingerTap{Target: script.Coordinate(10, 20)},
		script.TypeText{Text: "hello"},
		script.TypeText{Text: "", Target: script.TargetPtr(script.Identifier("field"))},
		script.Swipe{Direction: script.DirectionUp},
		script.Swipe{Direction: script.DirectionLeft, Target: script.TargetPtr(btn), Velocity: script.Float(1500)},
		script.LongPress{Target: btn},
		script.LongPress{Target: btn, Duration: script.Float(0)},
		script.Pinch{},
		script.Pinch{Target: script.TargetPtr(btn), Scale: script.Float(0.5), Velocity: script.Float(-1)},
		script.Rotate{Rotation: 1.57},
		script.Rotate{Target: script.TargetPtr(btn), Rotation: -3.14, Velocity: script.Float(2)},
		script.Drag{From: script.Coordinate(1, 2), To: script.ElementOfType("cell", 4)},
		script.Drag{From: btn, To: script.Label("Trash"), Duration: script.Float(0.8)},
		script.ScrollToElement{Target: btn},
		script.ScrollToElement{Target: btn, Direction: &down, MaxScrolls: script.Int(0)},
		script.ClearText{Target: btn},
		script.Shake{},
		script.PressButton{Button: script.ButtonHome},
		script.PressButton{Button: script.ButtonVolumeDown},
		script.WaitForElement{Target: btn},
		script.WaitForElement{Target: btn, Timeout: script.Float(3)},
		script.WaitForElementToDisappear{Target: btn, Timeout: script.Float(1)},
		script.AssertExists{Target: btn},
		script.AssertNotExists{Target: script.Label("Error")},
		script.Screenshot{},
		script.Screenshot{OutputPath: script.String("/tmp/shot.png")},
		script.GetElementValue{Target: btn},
		script.GetElementProperties{Target: btn},
		script.GetElementFrame{Target: btn},
		script.Sleep{Duration: 0.25},
	}
}

func TestElementTarget_RoundTrip(t *testing.T) {
	for _, target := range allTargets() {
		t.Run(target.String(), func(t *testing.T) {
			data, err := json.Marshal(target)
			require.NoError(t, err)

			var got script.ElementTarget
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, target, got)
		})
	}
}

func TestElementTarget_WireFormat(t *testing.T) {
	tests := []struct {
		target   script.ElementTarget
		expected string
	}{
		{script.Identifier("a"), `{"type":"identifier","value":"a"}`},
		{script.Label("b"), `{"type":"label","value":"b"}`},
		{script.Coordinate(0, 5), `{"type":"coordinate","x":0,"y":5}`},
		{script.ElementOfType("button", 1), `{"type":"elementType","value":"button","index":1}`},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			data, err := json.Marshal(tc.target)
			require.NoError(t, err)
			assert.JSONEq(t, tc.expected, string(data))
		})
	}
}

func TestElementTarget_DecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"bogus type", `{"type":"bogus"}`, "type"},
		{"missing type", `{"value":"x"}`, "type"},
		{"identifier without value", `{"type":"identifier"}`, "value"},
		{"coordinate without y", `{"type":"coordinate","x":1}`, "y"},
		{"elementType without value", `{"type":"elementType","index":1}`, "value"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := script.ElementTarget{Kind: "untouched"}
			err := json.Unmarshal([]byte(tc.input), &got)
			require.ErrorIs(t, err, simerrors.ErrScriptMalformed)

			var decErr *script.DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, script.KindTarget, decErr.Kind)
			assert.Equal(t, tc.field, decErr.Field)
			assert.Equal(t, script.TargetKind("untouched"), got.Kind, "target must not be partially built")
		})
	}
}

func TestElementTarget_ElementTypeIndexDefaultsToZero(t *testing.T) {
	var got script.ElementTarget
	require.NoError(t, json.Unmarshal([]byte(`{"type":"elementType","value":"switch"}`), &got))
	assert.Equal(t, script.ElementOfType("switch", 0), got)
}

func TestAction_RoundTrip(t *testing.T) {
	for _, action := range allActions() {
		t.Run(action.Type().String(), func(t *testing.T) {
			data, err := script.EncodeAction(action)
			require.NoError(t, err)

			got, err := script.DecodeAction(data)
			require.NoError(t, err)
			assert.Equal(t, action, got)
		})
	}
}

func TestAction_EveryTypeCovered(t *testing.T) {
	seen := make(map[script.ActionType]bool)
	for _, a := range allActions() {
		seen[a.Type()] = true
	}
	for _, typ := range script.ActionTypes() {
		assert.True(t, seen[typ], "no round-trip case for %s", typ)
	}
	assert.Len(t, script.ActionTypes(), 22)
}

func TestEncodeAction_DiscriminatorFirst(t *testing.T) {
	data, err := script.EncodeAction(script.Tap{Target: script.Identifier("btn")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"tap","target":{"type":"identifier","value":"btn"}}`, string(data))
	assert.Equal(t, `{"type":"tap"`, string(data[:13]))

	data, err = script.EncodeAction(script.Shake{})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"shake"}`, string(data))
}

func TestEncodeAction_OptionalFieldsOmitted(t *testing.T) {
	data, err := script.EncodeAction(script.LongPress{Target: script.Identifier("x")})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "duration")

	data, err = script.EncodeAction(script.LongPress{Target: script.Identifier("x"), Duration: script.Float(0)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"duration":0`)
}

func TestEncodeAction_InvalidTarget(t *testing.T) {
	_, err := script.EncodeAction(script.Tap{})
	require.ErrorIs(t, err, simerrors.ErrScriptMalformed)

	_, err = script.EncodeAction(nil)
	require.ErrorIs(t, err, simerrors.ErrScriptMalformed)
}

func TestDecodeAction_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		field   string
		value   string
		missing bool
	}{
		{"bogus type", `{"type":"bogus"}`, "type", "bogus", false},
		{"no type", `{"target":{"type":"identifier","value":"x"}}`, "type", "", false},
		{"null type", `{"type":null}`, "type", "", false},
		{"tap without target", `{"type":"tap"}`, "target", "tap", true},
		{"tap with null target", `{"type":"tap","target":null}`, "target", "tap", true},
		{"typeText without text", `{"type":"typeText"}`, "text", "typeText", true},
		{"drag without to", `{"type":"drag","from":{"type":"label","value":"a"}}`, "to", "drag", true},
		{"sleep without duration", `{"type":"sleep"}`, "duration", "sleep", true},
		{"bad direction", `{"type":"swipe","direction":"sideways"}`, "direction", "sideways", false},
		{"bad button", `{"type":"pressButton","button":"power"}`, "button", "power", false},
		{"bad nested target", `{"type":"tap","target":{"type":"bogus"}}`, "type", "bogus", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := script.DecodeAction([]byte(tc.input))
			require.ErrorIs(t, err, simerrors.ErrScriptMalformed)
			assert.Nil(t, got)

			var decErr *script.DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, tc.field, decErr.Field)
			assert.Equal(t, tc.value, decErr.Value)
			assert.Equal(t, tc.missing, decErr.Missing)
		})
	}
}

func TestDecodeAction_BogusMessageNamesFieldAndValue(t *testing.T) {
	_, err := script.DecodeAction([]byte(`{"type":"bogus"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bogus"`)
	assert.Contains(t, err.Error(), "type")
}

func TestDecodeAction_DirectionCaseInsensitive(t *testing.T) {
	got, err := script.DecodeAction([]byte(`{"type":"swipe","direction":"UP"}`))
	require.NoError(t, err)
	assert.Equal(t, script.Swipe{Direction: script.DirectionUp}, got)
}

func TestScript_RoundTrip(t *testing.T) {
	original := &script.Script{
		BundleID:    "com.example.app",
		Actions:     allActions(),
		RecordVideo: true,
	}

	data, err := script.Encode(original)
	require.NoError(t, err)

	got, err := script.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestScript_WireFormat(t *testing.T) {
	s := &script.Script{
		BundleID: "com.x.y",
		Actions:  []script.Action{script.Tap{Target: script.Identifier("btn")}},
	}
	data, err := script.Encode(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"bundleId": "com.x.y",
		"actions": [{"type":"tap","target":{"type":"identifier","value":"btn"}}],
		"recordVideo": false
	}`, string(data))
}

func TestScript_EmptyActionsEncodeAsArray(t *testing.T) {
	data, err := script.Encode(&script.Script{BundleID: "com.x.y"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"actions": []`)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{{{`},
		{"missing bundleId", `{"actions":[]}`},
		{"bogus action", `{"bundleId":"a","actions":[{"type":"tap","target":{"type":"identifier","value":"x"}},{"type":"bogus"}]}`},
		{"actions not array", `{"bundleId":"a","actions":{}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := script.Decode([]byte(tc.input))
			require.ErrorIs(t, err, simerrors.ErrScriptMalformed)
			assert.Nil(t, got)
		})
	}
}

func TestDecode_ErrorNamesActionIndex(t *testing.T) {
	_, err := script.Decode([]byte(`{"bundleId":"a","actions":[{"type":"shake"},{"type":"bogus"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action 1")
}

func TestEncode_Nil(t *testing.T) {
	_, err := script.Encode(nil)
	require.ErrorIs(t, err, simerrors.ErrScriptMalformed)
}

func TestDecodeYAML(t *testing.T) {
	input := `
bundleId: com.example.app
recordVideo: true
actions:
  - type: tap
    target: {type: identifier, value: loginButton}
  - type: typeText
    text: hunter2
  - type: swipe
    direction: down
    velocity: 800
  - type: waitForElement
    target: {type: elementType, value: cell, index: 3}
    timeout: 2.5
`
	got, err := script.DecodeYAML([]byte(input))
	require.NoError(t, err)

	expected := &script.Script{
		BundleID:    "com.example.app",
		RecordVideo: true,
		Actions: []script.Action{
			script.Tap{Target: script.Identifier("loginButton")},
			script.TypeText{Text: "hunter2"},
			script.Swipe{Direction: script.DirectionDown, Velocity: script.Float(800)},
			script.WaitForElement{Target: script.ElementOfType("cell", 3), Timeout: script.Float(2.5)},
		},
	}
	assert.Equal(t, expected, got)
}

func TestDecodeYAML_Errors(t *testing.T) {
	_, err := script.DecodeYAML([]byte("bundleId: [unclosed"))
	require.ErrorIs(t, err, simerrors.ErrScriptMalformed)

	_, err = script.DecodeYAML([]byte("bundleId: a\nactions:\n  - type: bogus\n"))
	require.ErrorIs(t, err, simerrors.ErrScriptMalformed)

	var decErr *script.DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "bogus", decErr.Value)
}
