package systems

import (
	"testing"

	"github.com/decker502/avatarstage/pkg/components"
)

func TestNextInRotation(t *testing.T) {
	rotation := []string{"body_laugh", "body_waving", "body_smile", "body_idle"}
	all := map[string]bool{"body_laugh": true, "body_waving": true, "body_smile": true, "body_idle": true}
	twoPresent := map[string]bool{"body_smile": true, "body_idle": true}

	tests := []struct {
		name      string
		current   string
		available map[string]bool
		want      string
		wantOK    bool
	}{
		{"all present advances", "body_laugh", all, "body_waving", true},
		{"wraps at the end", "body_idle", all, "body_laugh", true},
		{"not in rotation starts at the first", "body_think", all, "body_laugh", true},
		{"empty current starts at the first", "", all, "body_laugh", true},
		{"two present from idle skips absent", "body_idle", twoPresent, "body_smile", true},
		{"two present from smile", "body_smile", twoPresent, "body_idle", true},
		{"two present from unknown", "", twoPresent, "body_smile", true},
		{"only current present returns current", "body_idle", map[string]bool{"body_idle": true}, "body_idle", true},
		{"none present", "body_idle", map[string]bool{}, "", false},
		{"none present from unknown terminates", "", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextInRotation(rotation, tt.current, tt.available)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NextInRotation(%q) = (%q, %v), want (%q, %v)", tt.current, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := NextInRotation(nil, "body_idle", all); ok {
		t.Error("empty rotation should yield nothing")
	}
}

func TestIdleClick_RotationWithMissingAnimations(t *testing.T) {
	// pink_robot 没有 body_laugh 和 body_waving
	c := newTestCharacter(t, "pink_robot", false)
	clicks := NewIdleClickSystem(c.em, c.dispatcher, c.layers)

	want := []string{"body_smile", "body_idle", "body_smile"}
	for i, w := range want {
		if got := clicks.Click(c.id); got != w {
			t.Errorf("click %d played %q, want %q", i+1, got, w)
		}
		if got := c.trackName(components.TrackBody); got != w {
			t.Errorf("click %d: track 0 = %q, want %q", i+1, got, w)
		}
	}
}

func TestIdleClick_PointerClick(t *testing.T) {
	c := newTestCharacter(t, "robot", false)
	clicks := NewIdleClickSystem(c.em, c.dispatcher, c.layers)
	clicks.Activate()

	c.press(100, 100)
	if c.dispatcher.ListenerCount(PointerUp) != 1 {
		t.Fatalf("expected an up listener during the gesture, got %d", c.dispatcher.ListenerCount(PointerUp))
	}
	c.release(100, 100)

	if got := c.trackName(components.TrackBody); got != "body_laugh" {
		t.Errorf("after click track 0 = %q, want body_laugh", got)
	}
	if c.dispatcher.ListenerCount(PointerUp) != 0 || c.dispatcher.ListenerCount(PointerMove) != 0 {
		t.Error("gesture listeners should be released on pointer up")
	}
}

func TestIdleClick_PressOutsideSurface(t *testing.T) {
	c := newTestCharacter(t, "robot", false)
	clicks := NewIdleClickSystem(c.em, c.dispatcher, c.layers)
	clicks.Activate()

	c.press(500, 500)
	c.release(500, 500)
	if c.dispatcher.ListenerCount(PointerUp) != 0 {
		t.Error("no gesture should start outside the surface")
	}
	if got := c.trackName(components.TrackBody); got != "body_idle" {
		t.Errorf("track 0 = %q, want body_idle", got)
	}
}

func TestIdleClick_DragSuppressesClick(t *testing.T) {
	c := newTestCharacter(t, "robot", false)
	c.surface().Draggable = true
	clicks := NewIdleClickSystem(c.em, c.dispatcher, c.layers)
	clicks.Activate()

	c.press(50, 50)
	c.move(70, 50, true)
	c.release(70, 50)

	if got := c.trackName(components.TrackBody); got != "body_idle" {
		t.Errorf("drag triggered a click: track 0 = %q", got)
	}
	if s := c.surface(); !approxEqual(s.X, 20) || !approxEqual(s.Y, 0) {
		t.Errorf("surface moved to (%v, %v), want (20, 0)", s.X, s.Y)
	}

	// 下一次手势不受上一次拖动影响
	c.press(100, 100)
	c.release(100, 100)
	if got := c.trackName(components.TrackBody); got != "body_laugh" {
		t.Errorf("click after drag: track 0 = %q, want body_laugh", got)
	}
}

func TestIdleClick_SmallMoveStillClicks(t *testing.T) {
	c := newTestCharacter(t, "robot", false)
	c.surface().Draggable = true
	clicks := NewIdleClickSystem(c.em, c.dispatcher, c.layers)
	clicks.Activate()

	c.press(50, 50)
	c.move(53, 52, true)
	c.release(53, 52)

	if got := c.trackName(components.TrackBody); got != "body_laugh" {
		t.Errorf("movement within the threshold should still click, track 0 = %q", got)
	}
}

func TestIdleClick_NotDraggableIgnoresMovement(t *testing.T) {
	c := newTestCharacter(t, "robot", false)
	clicks := NewIdleClickSystem(c.em, c.dispatcher, c.layers)
	clicks.Activate()

	c.press(50, 50)
	c.move(90, 60, true)
	c.release(90, 60)

	if s := c.surface(); s.X != 0 || s.Y != 0 {
		t.Errorf("non-draggable surface moved to (%v, %v)", s.X, s.Y)
	}
	if got := c.trackName(components.TrackBody); got != "body_laugh" {
		t.Errorf("track 0 = %q, want body_laugh", got)
	}
}

func TestIdleClick_Deactivate(t *testing.T) {
	c := newTestCharacter(t, "robot", false)
	clicks := NewIdleClickSystem(c.em, c.dispatcher, c.layers)
	clicks.Activate()
	c.press(100, 100)
	clicks.Deactivate()

	for _, kind := range []PointerEventKind{PointerDown, PointerMove, PointerUp} {
		if n := c.dispatcher.ListenerCount(kind); n != 0 {
			t.Errorf("%s listeners after Deactivate = %d, want 0", kind, n)
		}
	}
}
