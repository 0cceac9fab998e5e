package script

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// variant describes how one action type is decoded.
type variant struct {
	// required lists wire fields that must be present and non-null.
	required []string
	decode   func(data []byte) (Action, error)
}

// actionDecoders is the single dispatch table for action decoding.
// Adding an action variant means adding one entry here.
//
//nolint:gochecknoglobals // Dispatch table
var actionDecoders = map[ActionType]variant{
	ActionTap:                       {required: []string{"target"}, decode: decodeAs[Tap]},
	ActionDoubleTap:                 {required: []string{"target"}, decode: decodeAs[DoubleTap]},
	ActionTwoFingerTap:              {required: []string{"target"}, decode: decodeAs[TwoFingerTap]},
	ActionTypeText:                  {required: []string{"text"}, decode: decodeAs[TypeText]},
	ActionSwipe:                     {required: []string{"direction"}, decode: decodeAs[Swipe]},
	ActionLongPress:                 {required: []string{"target"}, decode: decodeAs[LongPress]},
	ActionPinch:                     {decode: decodeAs[Pinch]},
	ActionRotate:                    {required: []string{"rotation"}, decode: decodeAs[Rotate]},
	ActionDrag:                      {required: []string{"from", "to"}, decode: decodeAs[Drag]},
	ActionScrollToElement:           {required: []string{"target"}, decode: decodeAs[ScrollToElement]},
	ActionClearText:                 {required: []string{"target"}, decode: decodeAs[ClearText]},
	ActionShake:                     {decode: decodeAs[Shake]},
	ActionPressButton:               {required: []string{"button"}, decode: decodeAs[PressButton]},
	ActionWaitForElement:            {required: []string{"target"}, decode: decodeAs[WaitForElement]},
	ActionWaitForElementToDisappear: {required: []string{"target"}, decode: decodeAs[WaitForElementToDisappear]},
	ActionAssertExists:              {required: []string{"target"}, decode: decodeAs[AssertExists]},
	ActionAssertNotExists:           {required: []string{"target"}, decode: decodeAs[AssertNotExists]},
	ActionScreenshot:                {decode: decodeAs[Screenshot]},
	ActionGetElementValue:           {required: []string{"target"}, decode: decodeAs[GetElementValue]},
	ActionGetElementProperties:      {required: []string{"target"}, decode: decodeAs[GetElementProperties]},
	ActionGetElementFrame:           {required: []string{"target"}, decode: decodeAs[GetElementFrame]},
	ActionSleep:                     {required: []string{"duration"}, decode: decodeAs[Sleep]},
}

// ActionTypes returns every known action type, for help output.
func ActionTypes() []ActionType {
	types := make([]ActionType, 0, len(actionDecoders))
	for t := range actionDecoders {
		types = append(types, t)
	}
	return types
}

func decodeAs[T Action](data []byte) (Action, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeAction decodes a single action. The "type" discriminator is read
// before any variant field; unknown types and missing required fields
// return a *DecodeError.
func DecodeAction(data []byte) (Action, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &DecodeError{Kind: KindAction, Err: err}
	}

	rawType, ok := fields["type"]
	if !ok || isNull(rawType) {
		return nil, &DecodeError{Kind: KindAction, Field: "type"}
	}
	var tag string
	if err := json.Unmarshal(rawType, &tag); err != nil {
		return nil, &DecodeError{Kind: KindAction, Field: "type", Value: string(rawType)}
	}

	v, ok := actionDecoders[ActionType(tag)]
	if !ok {
		return nil, &DecodeError{Kind: KindAction, Field: "type", Value: tag}
	}

	for _, name := range v.required {
		if raw, present := fields[name]; !present || isNull(raw) {
			return nil, &DecodeError{Kind: KindAction, Field: name, Value: tag, Missing: true}
		}
	}

	action, err := v.decode(data)
	if err != nil {
		var decErr *DecodeError
		if errors.As(err, &decErr) {
			return nil, decErr
		}
		return nil, &DecodeError{Kind: KindAction, Value: tag, Err: err}
	}
	return action, nil
}

// EncodeAction encodes a single action with its "type" discriminator first.
func EncodeAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, &DecodeError{Kind: KindAction, Field: "type"}
	}
	if _, ok := actionDecoders[a.Type()]; !ok {
		return nil, &DecodeError{Kind: KindAction, Field: "type", Value: string(a.Type())}
	}

	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode %s action: %w", a.Type(), err)
	}
	tag, err := json.Marshal(string(a.Type()))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(tag) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
