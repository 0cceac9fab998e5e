package script

import (
	"encoding"
	"strings"
)

// ActionType is the wire discriminator of an Action.
type ActionType string

// Action types understood by the runner.
const (
	ActionTap                       ActionType = "tap"
	ActionDoubleTap                 ActionType = "doubleTap"
	ActionTwoFingerTap              ActionType = "twoFingerTap"
	ActionTypeText                  ActionType = "typeText"
	ActionSwipe                     ActionType = "swipe"
	ActionLongPress                 ActionType = "longPress"
	ActionPinch                     ActionType = "pinch"
	ActionRotate                    ActionType = "rotate"
	ActionDrag                      ActionType = "drag"
	ActionScrollToElement           ActionType = "scrollToElement"
	ActionClearText                 ActionType = "clearText"
	ActionShake                     ActionType = "shake"
	ActionPressButton               ActionType = "pressButton"
	ActionWaitForElement            ActionType = "waitForElement"
	ActionWaitForElementToDisappear ActionType = "waitForElementToDisappear"
	ActionAssertExists              ActionType = "assertExists"
	ActionAssertNotExists           ActionType = "assertNotExists"
	ActionScreenshot                ActionType = "screenshot"
	ActionGetElementValue           ActionType = "getElementValue"
	ActionGetElementProperties      ActionType = "getElementProperties"
	ActionGetElementFrame           ActionType = "getElementFrame"
	ActionSleep                     ActionType = "sleep"
)

// String returns the string representation of the ActionType.
func (t ActionType) String() string {
	return string(t)
}

// Action is one step of a Script. The set of implementations is closed;
// each variant is a plain value struct whose optional fields are pointers.
type Action interface {
	Type() ActionType
	isAction()
}

// Direction is a swipe or scroll direction.
type Direction string

// Directions.
const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

var _ encoding.TextUnmarshaler = (*Direction)(nil)

// UnmarshalText accepts directions case-insensitively.
func (d *Direction) UnmarshalText(text []byte) error {
	v := Direction(strings.ToLower(string(text)))
	switch v {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		*d = v
		return nil
	}
	return &DecodeError{Kind: KindAction, Field: "direction", Value: string(text)}
}

// Button is a hardware button on the simulated device.
type Button string

// Hardware buttons.
const (
	ButtonHome       Button = "home"
	ButtonVolumeUp   Button = "volumeUp"
	ButtonVolumeDown Button = "volumeDown"
)

// UnmarshalText rejects unknown buttons.
func (b *Button) UnmarshalText(text []byte) error {
	v := Button(text)
	switch v {
	case ButtonHome, ButtonVolumeUp, ButtonVolumeDown:
		*b = v
		return nil
	}
	return &DecodeError{Kind: KindAction, Field: "button", Value: string(text)}
}

// Tap taps the target once.
type Tap struct {
	Target ElementTarget `json:"target"`
}

// DoubleTap taps the target twice.
type DoubleTap struct {
	Target ElementTarget `json:"target"`
}

// TwoFingerTap taps the target with two fingers.
type TwoFingerTap struct {
	Target ElementTarget `json:"target"`
}

// TypeText types text, into Target when set or the focused element otherwise.
type TypeText struct {
	Text   string         `json:"text"`
	Target *ElementTarget `json:"target,omitempty"`
}

// Swipe swipes on Target, or on the app when Target is nil.
type Swipe struct {
	Direction Direction      `json:"direction"`
	Target    *ElementTarget `json:"target,omitempty"`
	Velocity  *float64       `json:"velocity,omitempty"`
}

// LongPress presses and holds the target. Duration is in seconds.
type LongPress struct {
	Target   ElementTarget `json:"target"`
	Duration *float64      `json:"duration,omitempty"`
}

// Pinch pinches with the given scale; scale < 1 zooms out.
type Pinch struct {
	Target   *ElementTarget `json:"target,omitempty"`
	Scale    *float64       `json:"scale,omitempty"`
	Velocity *float64       `json:"velocity,omitempty"`
}

// Rotate rotates by Rotation radians.
type Rotate struct {
	Target   *ElementTarget `json:"target,omitempty"`
	Rotation float64        `json:"rotation"`
	Velocity *float64       `json:"velocity,omitempty"`
}

// Drag presses From and drags to To.
type Drag struct {
	From     ElementTarget `json:"from"`
	To       ElementTarget `json:"to"`
	Duration *float64      `json:"duration,omitempty"`
}

// ScrollToElement scrolls until the target is visible.
type ScrollToElement struct {
	Target     ElementTarget `json:"target"`
	Direction  *Direction    `json:"direction,omitempty"`
	MaxScrolls *int          `json:"maxScrolls,omitempty"`
}

// ClearText deletes the contents of a text field.
type ClearText struct {
	Target ElementTarget `json:"target"`
}

// Shake sends a shake gesture to the device.
type Shake struct{}

// PressButton presses a hardware button.
type PressButton struct {
	Button Button `json:"button"`
}

// WaitForElement waits until the target exists. Timeout is in seconds.
type WaitForElement struct {
	Target  ElementTarget `json:"target"`
	Timeout *float64      `json:"timeout,omitempty"`
}

// WaitForElementToDisappear waits until the target no longer exists.
type WaitForElementToDisappear struct {
	Target  ElementTarget `json:"target"`
	Timeout *float64      `json:"timeout,omitempty"`
}

// AssertExists fails the script if the target does not exist.
type AssertExists struct {
	Target ElementTarget `json:"target"`
}

// AssertNotExists fails the script if the target exists.
type AssertNotExists struct {
	Target ElementTarget `json:"target"`
}

// Screenshot captures the screen, to OutputPath when set.
type Screenshot struct {
	OutputPath *string `json:"outputPath,omitempty"`
}

// GetElementValue reads the target's value into ActionResult.Value.
type GetElementValue struct {
	Target ElementTarget `json:"target"`
}

// GetElementProperties reads the target's attributes into ActionResult.Properties.
type GetElementProperties struct {
	Target ElementTarget `json:"target"`
}

// GetElementFrame reads the target's frame into ActionResult.Frame.
type GetElementFrame struct {
	Target ElementTarget `json:"target"`
}

// Sleep pauses the runner for Duration seconds.
type Sleep struct {
	Duration float64 `json:"duration"`
}

func (Tap) Type() ActionType                       { return ActionTap }
func (DoubleTap) Type() ActionType                 { return ActionDoubleTap }
func (TwoFingerTap) Type() ActionType              { return ActionTwoFingerTap }
func (TypeText) Type() ActionType                  { return ActionTypeText }
func (Swipe) Type() ActionType                     { return ActionSwipe }
func (LongPress) Type() ActionType                 { return ActionLongPress }
func (Pinch) Type() ActionType                     { return ActionPinch }
func (Rotate) Type() ActionType                    { return ActionRotate }
func (Drag) Type() ActionType                      { return ActionDrag }
func (ScrollToElement) Type() ActionType           { return ActionScrollToElement }
func (ClearText) Type() ActionType                 { return ActionClearText }
func (Shake) Type() ActionType                     { return ActionShake }
func (PressButton) Type() ActionType               { return ActionPressButton }
func (WaitForElement) Type() ActionType            { return ActionWaitForElement }
func (WaitForElementToDisappear) Type() ActionType { return ActionWaitForElementToDisappear }
func (AssertExists) Type() ActionType              { return ActionAssertExists }
func (AssertNotExists) Type() ActionType           { return ActionAssertNotExists }
func (Screenshot) Type() ActionType                { return ActionScreenshot }
func (GetElementValue) Type() ActionType           { return ActionGetElementValue }
func (GetElementProperties) Type() ActionType      { return ActionGetElementProperties }
func (GetElementFrame) Type() ActionType           { return ActionGetElementFrame }
func (Sleep) Type() ActionType                     { return ActionSleep }

func (Tap) isAction()                       {}
func (DoubleTap) isAction()                 {}
func (TwoFingerTap) isAction()              {}
func (TypeText) isAction()                  {}
func (Swipe) isAction()                     {}
func (LongPress) isAction()                 {}
func (Pinch) isAction()                     {}
func (Rotate) isAction()                    {}
func (Drag) isAction()                      {}
func (ScrollToElement) isAction()           {}
func (ClearText) isAction()                 {}
func (Shake) isAction()                     {}
func (PressButton) isAction()               {}
func (WaitForElement) isAction()            {}
func (WaitForElementToDisappear) isAction() {}
func (AssertExists) isAction()              {}
func (AssertNotExists) isAction()           {}
func (Screenshot) isAction()                {}
func (GetElementValue) isAction()           {}
func (GetElementProperties) isAction()      {}
func (GetElementFrame) isAction()           {}
func (Sleep) isAction()                     {}

// Float returns a pointer to v, for populating optional action fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// TargetPtr returns a pointer to t, for actions whose target is optional.
func TargetPtr(t ElementTarget) *ElementTarget { return &t }
