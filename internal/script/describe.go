package script

import (
	"fmt"
	"strconv"
)

// Subject renders what an action operates on, for reports. Typed text is
// never included.
func Subject(a Action) string {
	switch v := a.(type) {
	case Tap:
		return v.Target.String()
	case DoubleTap:
		return v.Target.String()
	case TwoFingerTap:
		return v.Target.String()
	case TypeText:
		return optionalTarget(v.Target, "focused element")
	case Swipe:
		return string(v.Direction) + " on " + optionalTarget(v.Target, "app")
	case LongPress:
		return v.Target.String()
	case Pinch:
		return optionalTarget(v.Target, "app")
	case Rotate:
		return optionalTarget(v.Target, "app")
	case Drag:
		return v.From.String() + " -> " + v.To.String()
	case ScrollToElement:
		return v.Target.String()
	case ClearText:
		return v.Target.String()
	case PressButton:
		return string(v.Button)
	case WaitForElement:
		return v.Target.String()
	case WaitForElementToDisappear:
		return v.Target.String()
	case AssertExists:
		return v.Target.String()
	case AssertNotExists:
		return v.Target.String()
	case Screenshot:
		if v.OutputPath != nil {
			return *v.OutputPath
		}
		return ""
	case GetElementValue:
		return v.Target.String()
	case GetElementProperties:
		return v.Target.String()
	case GetElementFrame:
		return v.Target.String()
	case Sleep:
		return strconv.FormatFloat(v.Duration, 'f', -1, 64) + "s"
	case Shake:
		return ""
	default:
		return fmt.Sprintf("%T", a)
	}
}

func optionalTarget(t *ElementTarget, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.String()
}
