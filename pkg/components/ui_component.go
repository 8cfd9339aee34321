package components

import "github.com/jermochi/Hygin/pkg/types"

// UIState represents the current state of a UI element (e.g., button).
type UIState int

const (
	// UINormal indicates the UI element is in its default state.
	UINormal UIState = iota
	// UIHovered indicates the pointer is over the UI element.
	UIHovered
	// UIClicked indicates the UI element is being pressed.
	UIClicked
	// UIDisabled indicates the UI element cannot be interacted with.
	UIDisabled
)

// Button is a rectangular labelled button used by the menu and minigame scenes.
type Button struct {
	// Rect is the button area in screen space.
	Rect types.Rect
	// Label is drawn centered on the button.
	Label string
	// Badge is a short secondary line (score tier, "locked").
	Badge string
	// Selected marks toggles and the active tool.
	Selected bool
	// State is the current interaction state of the button.
	State UIState
	// OnClick is invoked on release inside the button.
	OnClick func()
}

// Contains reports whether the point lies inside the button.
func (b *Button) Contains(x, y float64) bool {
	return b.Rect.Contains(x, y)
}

// Enabled reports whether the button reacts to input.
func (b *Button) Enabled() bool {
	return b.State != UIDisabled
}

// SetEnabled toggles between UIDisabled and UINormal.
func (b *Button) SetEnabled(enabled bool) {
	switch {
	case !enabled:
		b.State = UIDisabled
	case b.State == UIDisabled:
		b.State = UINormal
	}
}

// HoverAt updates the hover state for a pointer position.
func (b *Button) HoverAt(x, y float64) {
	if !b.Enabled() || b.State == UIClicked {
		return
	}
	if b.Contains(x, y) {
		b.State = UIHovered
	} else {
		b.State = UINormal
	}
}

// Click invokes OnClick when the button is enabled and the point is inside.
// It returns whether the click was consumed.
func (b *Button) Click(x, y float64) bool {
	if !b.Enabled() || !b.Contains(x, y) {
		return false
	}
	if b.OnClick != nil {
		b.OnClick()
	}
	return true
}

// ButtonBar is an ordered set of buttons; the first hit wins.
type ButtonBar []*Button

// Click dispatches a click to the first enabled button under the point.
func (bar ButtonBar) Click(x, y float64) bool {
	for _, b := range bar {
		if b.Click(x, y) {
			return true
		}
	}
	return false
}

// Hit reports whether any button (enabled or not) covers the point.
func (bar ButtonBar) Hit(x, y float64) bool {
	for _, b := range bar {
		if b.Contains(x, y) {
			return true
		}
	}
	return false
}

// HoverAt updates hover state for every button.
func (bar ButtonBar) HoverAt(x, y float64) {
	for _, b := range bar {
		b.HoverAt(x, y)
	}
}
