package systems

import (
	"errors"
	"testing"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/decker502/avatarstage/pkg/utils"
)

// memoryStore 记录保存次数的内存几何存储
type memoryStore struct {
	geometry components.OverlayGeometry
	saves    int
	err      error
}

func (m *memoryStore) Load() components.OverlayGeometry { return m.geometry }

func (m *memoryStore) Save(g components.OverlayGeometry) error {
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.geometry = g
	return nil
}

var testViewport = utils.Viewport{Width: 1000, Height: 800}

type frameFixture struct {
	em         *ecs.EntityManager
	id         ecs.EntityID
	dispatcher *PointerDispatcher
	system     *DragResizeSystem
	store      *memoryStore
}

func newFrameFixture(t *testing.T, stored components.OverlayGeometry) *frameFixture {
	t.Helper()
	em := ecs.NewEntityManager()
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.OverlayFrameComponent{Mode: components.DisplayModeFrame, ImageRevision: 1})

	store := &memoryStore{geometry: stored}
	dispatcher := NewPointerDispatcher()
	system := NewDragResizeSystem(em, dispatcher, store, utils.DefaultFrameLimits, 8)
	system.Activate(testViewport)
	return &frameFixture{em: em, id: id, dispatcher: dispatcher, system: system, store: store}
}

func (f *frameFixture) frame() *components.OverlayFrameComponent {
	frame, _ := ecs.GetComponent[*components.OverlayFrameComponent](f.em, f.id)
	return frame
}

func (f *frameFixture) feed(x, y float64, pressed bool) {
	f.dispatcher.Feed(utils.PointerSample{X: x, Y: y, Pressed: pressed, Present: true})
}

var defaultFrame = components.OverlayGeometry{Width: 256, Height: 256, Right: 16, Top: 16}

func TestDragResize_ActivateRestoresAndNormalizes(t *testing.T) {
	f := newFrameFixture(t, components.OverlayGeometry{Width: 50, Height: 5000, Right: -500, Top: 16})
	g := f.frame().Geometry
	if g.Width != 100 || g.Height != 1000 {
		t.Errorf("size = %vx%v, want 100x1000", g.Width, g.Height)
	}
	if !approxEqual(g.Right, -20) {
		t.Errorf("right = %v, want -20", g.Right)
	}
}

func TestDragResize_DragClampsRight(t *testing.T) {
	tests := []struct {
		name      string
		dx        float64
		wantRight float64
	}{
		// 起点 right=16，宽 200：允许范围 [-40, 1040]
		{"far right clamps to -40", 2000, -40},
		{"far left clamps to 1040", -2000, 1040},
		{"inside range", 50, -34},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFrameFixture(t, components.OverlayGeometry{Width: 200, Height: 200, Right: 16, Top: 16})
			// 图片框屏幕矩形为 x∈[784,984]，y∈[16,216]；中心点在主体上
			f.feed(884, 116, true)
			if f.frame().Gesture != components.GestureDragging {
				t.Fatalf("gesture = %v, want dragging", f.frame().Gesture)
			}
			f.feed(884+tt.dx, 116, true)
			if got := f.frame().Geometry.Right; !approxEqual(got, tt.wantRight) {
				t.Errorf("right = %v, want %v", got, tt.wantRight)
			}
			f.feed(884+tt.dx, 116, false)
			if f.frame().Gesture != components.GestureIdle {
				t.Error("gesture should end on pointer up")
			}
			if f.store.saves != 1 || !approxEqual(f.store.geometry.Right, tt.wantRight) {
				t.Errorf("persisted %+v after %d saves", f.store.geometry, f.store.saves)
			}
		})
	}
}

func TestDragResize_ResizeRightScenario(t *testing.T) {
	f := newFrameFixture(t, defaultFrame)
	// 图片框 x∈[728,984]；右边手柄位于 [976,984]
	f.feed(980, 100, true)
	frame := f.frame()
	if frame.Gesture != components.GestureResizing || frame.Edge != components.EdgeRight {
		t.Fatalf("gesture=%v edge=%v, want resizing right", frame.Gesture, frame.Edge)
	}
	f.feed(1030, 100, true)
	if g := frame.Geometry; g.Width != 306 || !approxEqual(g.Right, -34) || g.Height != 256 || g.Top != 16 {
		t.Errorf("geometry = %+v, want width 306 right -34", g)
	}
	f.feed(1030, 100, false)
	if f.store.geometry.Right != -34 || f.store.geometry.Width != 306 {
		t.Errorf("persisted %+v", f.store.geometry)
	}
}

func TestDragResize_ResizeRejectedKeepsLastGeometry(t *testing.T) {
	f := newFrameFixture(t, components.OverlayGeometry{Width: 256, Height: 256, Right: -40, Top: 16})
	frame := f.frame()
	x, _, w, _ := utils.FrameScreenRect(frame.Geometry, testViewport)
	startX := x + w - 2

	f.feed(startX, 100, true)
	f.feed(startX+10, 100, true)
	committed := frame.Geometry
	if committed.Width != 266 {
		t.Fatalf("first step width = %v, want 266", committed.Width)
	}

	// 继续向右会使 right 低于 -0.2·width
	f.feed(startX+400, 100, true)
	if frame.Geometry != committed {
		t.Errorf("out of bounds step committed: %+v", frame.Geometry)
	}
}

func TestDragResize_HandleConsumesPressWithoutDrag(t *testing.T) {
	f := newFrameFixture(t, defaultFrame)
	f.feed(730, 100, true) // 左边手柄
	frame := f.frame()
	if frame.Gesture != components.GestureResizing || frame.Edge != components.EdgeLeft {
		t.Fatalf("gesture=%v edge=%v, want resizing left", frame.Gesture, frame.Edge)
	}
	f.feed(700, 130, true)
	g := frame.Geometry
	if g.Width != 286 || g.Right != 16 {
		t.Errorf("left resize = %+v, want width 286 right 16", g)
	}
	if g.Top != 16 || g.Height != 256 {
		t.Error("left handle must not move the vertical axis")
	}
}

func TestDragResize_PressOutsideFrameIgnored(t *testing.T) {
	f := newFrameFixture(t, defaultFrame)
	reached := false
	f.dispatcher.On(PointerDown, PriorityCharacter, func(ev PointerEvent) bool {
		reached = true
		return true
	})
	f.feed(100, 500, true)
	if !reached {
		t.Error("a press outside the frame should reach lower priority listeners")
	}
	if f.frame().Gesture != components.GestureIdle {
		t.Error("no gesture should start")
	}
}

func TestDragResize_FrameAboveCharacter(t *testing.T) {
	f := newFrameFixture(t, defaultFrame)
	reached := false
	f.dispatcher.On(PointerDown, PriorityCharacter, func(ev PointerEvent) bool {
		reached = true
		return true
	})
	f.feed(850, 100, true)
	if reached {
		t.Error("a press on the frame should not reach the character")
	}
}

func TestDragResize_NotMovableWithoutImageOrInFullscreen(t *testing.T) {
	f := newFrameFixture(t, defaultFrame)
	frame := f.frame()

	frame.ImageRevision = 0
	f.feed(850, 100, true)
	f.feed(850, 100, false)
	if f.store.saves != 0 {
		t.Error("hidden frame should not react")
	}

	frame.ImageRevision = 1
	frame.Mode = components.DisplayModeFullscreen
	f.feed(850, 100, true)
	if frame.Gesture != components.GestureIdle {
		t.Error("fullscreen image should not be draggable")
	}
}

func TestDragResize_PressDuringGestureIgnored(t *testing.T) {
	f := newFrameFixture(t, defaultFrame)
	f.system.Begin(f.id, components.EdgeNone, 850, 100)
	if f.system.Begin(f.id, components.EdgeRight, 980, 100) {
		t.Error("Begin during an active gesture should be refused")
	}
	if f.frame().Gesture != components.GestureDragging {
		t.Error("active gesture changed")
	}
}

func TestDragResize_ViewportChangeReclamps(t *testing.T) {
	f := newFrameFixture(t, components.OverlayGeometry{Width: 256, Height: 256, Right: 900, Top: 700})
	f.system.SetViewport(utils.Viewport{Width: 500, Height: 400})
	g := f.frame().Geometry
	if g.Right > 500+0.2*g.Width || g.Top > 400+0.2*g.Height {
		t.Errorf("geometry %+v not clamped to the new viewport", g)
	}
}

func TestDragResize_SaveErrorIsNotFatal(t *testing.T) {
	f := newFrameFixture(t, defaultFrame)
	f.store.err = errors.New("disk full")
	f.feed(850, 100, true)
	f.feed(800, 100, true)
	f.feed(800, 100, false)
	if f.frame().Gesture != components.GestureIdle {
		t.Error("gesture should end even when saving fails")
	}
	if f.frame().Geometry.Right != 66 {
		t.Errorf("right = %v, want 66", f.frame().Geometry.Right)
	}
}

func TestDragResize_DeactivateReleasesListeners(t *testing.T) {
	f := newFrameFixture(t, defaultFrame)
	f.feed(850, 100, true)
	f.system.Deactivate()
	for _, kind := range []PointerEventKind{PointerDown, PointerMove, PointerUp} {
		if n := f.dispatcher.ListenerCount(kind); n != 0 {
			t.Errorf("%s listeners = %d, want 0", kind, n)
		}
	}
	if f.frame().Gesture != components.GestureIdle {
		t.Error("gesture not reset on deactivate")
	}
}
