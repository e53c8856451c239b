package scenes

import (
	"fmt"
	"strings"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// drawHUD 绘制调试信息（F1 切换，调试模式下默认显示）
func (s *AvatarScene) drawHUD(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, s.hudText(), 8, 8)
}

// hudText 汇总角色、轨道、视线和图片框状态
func (s *AvatarScene) hudText() string {
	var b strings.Builder
	em := s.entityManager

	if skel, ok := ecs.GetComponent[*components.SkeletonComponent](em, s.character); ok {
		status := "ok"
		switch {
		case skel.LoadError != nil:
			status = "error: " + skel.LoadError.Error()
		case skel.Paused:
			status = "paused"
		}
		fmt.Fprintf(&b, "avatar: %s (gen %d, %s)\n", skel.AssetKey, skel.Generation, status)
	}

	for _, track := range []int{components.TrackBody, components.TrackViseme} {
		if st, ok := s.layerSystem.Track(s.character, track); ok {
			fmt.Fprintf(&b, "track %d: %s loop=%v\n", track, st.Animation, st.Loop)
		} else {
			fmt.Fprintf(&b, "track %d: -\n", track)
		}
	}

	if conv, ok := ecs.GetComponent[*components.ConversationComponent](em, s.character); ok {
		fmt.Fprintf(&b, "conversation: %q started=%v\n", conv.State, conv.Started)
	}
	if gaze, ok := ecs.GetComponent[*components.GazeComponent](em, s.character); ok && gaze.HasSample {
		fmt.Fprintf(&b, "gaze: %.2f, %.2f\n", gaze.Target.X, gaze.Target.Y)
	}
	if frame, ok := ecs.GetComponent[*components.OverlayFrameComponent](em, s.frame); ok {
		g := frame.Geometry
		fmt.Fprintf(&b, "frame: %.0fx%.0f right=%.0f top=%.0f (%s)\n", g.Width, g.Height, g.Right, g.Top, frame.Mode)
	}
	fmt.Fprintf(&b, "inbox: %d queued, %d dropped\n", s.inbox.Len(), s.inbox.Dropped())
	if s.debug {
		b.WriteString("debug: cycling all animations\n")
	}
	b.WriteString("[Space] start  [Tab] avatar  [P] pause  [F1] hud  [F11] fullscreen")
	return b.String()
}
