package schemas

import "fmt"

// -- Low-Level Pointer Schemas --

// MouseEventType defines the type of a mouse event.
type MouseEventType string

const (
	MouseMove    MouseEventType = "mouseMoved"
	MousePress   MouseEventType = "mousePressed"
	MouseRelease MouseEventType = "mouseReleased"
)

// MouseButton defines the mouse button being pressed.
type MouseButton string

const (
	ButtonNone MouseButton = "none"
	ButtonLeft MouseButton = "left"
)

// MouseEventData encapsulates all data for a mouse event.
type MouseEventData struct {
	Type   MouseEventType `json:"type"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Button MouseButton    `json:"button"`
	// Buttons is a bitfield of the buttons held during the event (1: left).
	// Moves dispatched while the left button is down carry 1 so the page sees a drag.
	Buttons    int64 `json:"buttons"`
	ClickCount int   `json:"clickCount"`
}

// -- Typed Errors --

// ElementNotFoundError is returned when a selector does not match any element,
// either because a bounding box is absent or because no element sits at a
// computed coordinate.
type ElementNotFoundError struct {
	Selector string
}

// Error implements the error interface by formatting the message on the fly.
func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found matching selector '%s'", e.Selector)
}

// NewElementNotFoundError creates a new ElementNotFoundError.
func NewElementNotFoundError(selector string) *ElementNotFoundError {
	return &ElementNotFoundError{Selector: selector}
}
