package components

import (
	"testing"

	"github.com/jermochi/Hygin/pkg/types"
)

// TestUIState tests that UIState constants are defined correctly.
func TestUIState(t *testing.T) {
	tests := []struct {
		name  string
		state UIState
		value int
	}{
		{"UINormal should be 0", UINormal, 0},
		{"UIHovered should be 1", UIHovered, 1},
		{"UIClicked should be 2", UIClicked, 2},
		{"UIDisabled should be 3", UIDisabled, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if int(tt.state) != tt.value {
				t.Errorf("Expected %s to be %d, got %d", tt.name, tt.value, int(tt.state))
			}
		})
	}
}

func newTestButton(clicks *int) *Button {
	return &Button{
		Rect:    types.Rect{X: 100, Y: 200, W: 150, H: 50},
		Label:   "Start",
		OnClick: func() { *clicks++ },
	}
}

// TestButtonClick tests click dispatch and the disabled state.
func TestButtonClick(t *testing.T) {
	clicks := 0
	b := newTestButton(&clicks)

	tests := []struct {
		name     string
		enabled  bool
		x, y     float64
		consumed bool
	}{
		{"点击内部", true, 120, 220, true},
		{"点击边界", true, 250, 250, true},
		{"点击外部", true, 90, 220, false},
		{"禁用时点击内部", false, 120, 220, false},
	}

	want := 0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.SetEnabled(tt.enabled)
			if got := b.Click(tt.x, tt.y); got != tt.consumed {
				t.Errorf("Click(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.consumed)
			}
			if tt.consumed {
				want++
			}
			if clicks != want {
				t.Errorf("Expected %d clicks, got %d", want, clicks)
			}
		})
	}
}

// TestButtonHover tests hover transitions.
func TestButtonHover(t *testing.T) {
	clicks := 0
	b := newTestButton(&clicks)

	b.HoverAt(120, 220)
	if b.State != UIHovered {
		t.Errorf("Expected UIHovered, got %v", b.State)
	}
	b.HoverAt(0, 0)
	if b.State != UINormal {
		t.Errorf("Expected UINormal, got %v", b.State)
	}

	b.SetEnabled(false)
	b.HoverAt(120, 220)
	if b.State != UIDisabled {
		t.Errorf("Expected disabled button to ignore hover, got %v", b.State)
	}
	b.SetEnabled(true)
	if b.State != UINormal {
		t.Errorf("Expected re-enabled button to be UINormal, got %v", b.State)
	}
}

// TestButtonBar tests that the first enabled button under the pointer wins.
func TestButtonBar(t *testing.T) {
	var order []string
	bar := ButtonBar{
		{Rect: types.Rect{X: 0, Y: 0, W: 100, H: 100}, State: UIDisabled, OnClick: func() { order = append(order, "disabled") }},
		{Rect: types.Rect{X: 0, Y: 0, W: 100, H: 100}, OnClick: func() { order = append(order, "first") }},
		{Rect: types.Rect{X: 0, Y: 0, W: 100, H: 100}, OnClick: func() { order = append(order, "second") }},
	}

	if !bar.Click(50, 50) {
		t.Fatal("Expected click to be consumed")
	}
	if len(order) != 1 || order[0] != "first" {
		t.Errorf("Expected only the first enabled button to fire, got %v", order)
	}
	if bar.Click(500, 500) {
		t.Error("Expected click outside all buttons to pass through")
	}
	if !bar.Hit(50, 50) || bar.Hit(500, 500) {
		t.Error("Hit should report coverage regardless of enabled state")
	}
}
