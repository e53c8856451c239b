package spine

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSkeletonJSON(t *testing.T) {
	atlas, sd := loadTestData(t)

	if sd.Name != "doll" || sd.Width != 40 || sd.Height != 90 {
		t.Errorf("Unexpected header: name=%s size=%vx%v", sd.Name, sd.Width, sd.Height)
	}
	if len(sd.Bones) != 4 || len(sd.Slots) != 2 {
		t.Fatalf("Expected 4 bones and 2 slots, got %d and %d", len(sd.Bones), len(sd.Slots))
	}
	if head := sd.FindBone("head"); head == nil || head.Parent != sd.FindBone("body") {
		t.Error("head bone should be parented to body")
	}
	if b := sd.FindBone("body"); b.ScaleX != 1 || b.ScaleY != 1 {
		t.Errorf("missing scale should default to 1, got %v,%v", b.ScaleX, b.ScaleY)
	}

	// Animations are sorted by name
	want := []string{"blink", "idle", "step", "wave"}
	got := sd.AnimationNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("AnimationNames() = %v, want %v", got, want)
	}
	if a := sd.FindAnimation("wave"); a == nil || !approxEqual(a.Duration, 0.5) {
		t.Errorf("wave duration = %v, want 0.5", a)
	}
	if sd.FindAnimation("dance") != nil {
		t.Error("FindAnimation() should return nil for an unknown animation")
	}

	headSlot := sd.FindSlot("head_slot")
	if headSlot.Color.R != 1 || headSlot.Color.G != 0 || math.Abs(float64(headSlot.Color.A)-128.0/255) > 1e-6 {
		t.Errorf("head_slot color = %+v", headSlot.Color)
	}

	head := sd.DefaultSkin.GetAttachment(headSlot.Index, "head")
	if head == nil || head.Region != atlas.FindRegion("head") {
		t.Fatalf("head attachment not resolved against the atlas: %+v", head)
	}
	if sd.DefaultSkin.GetAttachment(headSlot.Index, "head_mesh") != nil {
		t.Error("mesh attachments should be skipped")
	}

	if len(sd.TransformConstraints) != 1 {
		t.Fatalf("Expected 1 transform constraint, got %d", len(sd.TransformConstraints))
	}
	tc := sd.TransformConstraints[0]
	if tc.Target.Name != "crosshair" || tc.MixX != 0.5 || tc.MixY != 0 {
		t.Errorf("Unexpected constraint: %+v", *tc)
	}
}

func TestParseSkeletonJSON_Errors(t *testing.T) {
	atlas, err := ParseAtlas([]byte(testAtlas4))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{"malformed", `{"bones": [`, "failed to parse"},
		{"unknown parent", `{"bones": [{"name": "a", "parent": "b"}]}`, "unknown parent"},
		{"unknown slot bone", `{"bones": [{"name": "root"}], "slots": [{"name": "s", "bone": "x"}]}`, "unknown bone"},
		{"bad color", `{"bones": [{"name": "root"}], "slots": [{"name": "s", "bone": "root", "color": "red"}]}`, "invalid color"},
		{"missing region", `{"bones": [{"name": "root"}], "slots": [{"name": "s", "bone": "root"}],
			"skins": [{"name": "default", "attachments": {"s": {"wing": {"width": 1, "height": 1}}}}]}`, "not found in atlas"},
		{"constraint target", `{"bones": [{"name": "root"}], "transform": [{"name": "c", "bones": ["root"], "target": "x"}]}`, "unknown target"},
		{"animation bone", `{"bones": [{"name": "root"}], "animations": {"a": {"bones": {"x": {"rotate": [{"time": 0}]}}}}}`, "unknown bone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSkeletonJSON("bad", []byte(tt.json), atlas)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseSkeletonJSON_WithoutAtlas(t *testing.T) {
	sd, err := ParseSkeletonJSON("doll", []byte(testSkeleton), nil)
	if err != nil {
		t.Fatalf("ParseSkeletonJSON() error: %v", err)
	}
	att := sd.DefaultSkin.GetAttachment(sd.FindSlot("body_slot").Index, "body")
	if att == nil || att.Region != nil {
		t.Errorf("attachment should be parsed with no region, got %+v", att)
	}
}

func TestSkeleton_SetupPoseBounds(t *testing.T) {
	_, sd := loadTestData(t)
	s := NewSkeleton(sd)
	s.UpdateWorldTransform()

	head := s.FindBone("head")
	if !approxEqual(head.WorldX, 0) || !approxEqual(head.WorldY, 90) {
		t.Errorf("head world = (%v, %v), want (0, 90)", head.WorldX, head.WorldY)
	}

	x, y, w, h, ok := s.GetBounds()
	if !ok {
		t.Fatal("GetBounds() reported nothing visible")
	}
	if !approxEqual(x, -20) || !approxEqual(y, 20) || !approxEqual(w, 40) || !approxEqual(h, 90) {
		t.Errorf("GetBounds() = (%v, %v, %v, %v), want (-20, 20, 40, 90)", x, y, w, h)
	}

	// inactive bones are excluded
	s.FindBone("head").Active = false
	_, _, _, h, _ = s.GetBounds()
	if !approxEqual(h, 60) {
		t.Errorf("height without head = %v, want 60", h)
	}

	s.FindBone("body").Active = false
	if _, _, _, _, ok := s.GetBounds(); ok {
		t.Error("GetBounds() should report nothing visible when every bone is inactive")
	}
}

func TestSkeleton_TransformConstraint(t *testing.T) {
	_, sd := loadTestData(t)
	s := NewSkeleton(sd)

	s.FindBone("crosshair").X = 100
	s.UpdateWorldTransform()

	head := s.FindBone("head")
	// mixX 0.5 pulls halfway toward the crosshair, mixY 0 leaves y alone
	if !approxEqual(head.WorldX, 50) || !approxEqual(head.WorldY, 90) {
		t.Errorf("head world = (%v, %v), want (50, 90)", head.WorldX, head.WorldY)
	}
	body := s.FindBone("body")
	if !approxEqual(body.WorldX, 0) {
		t.Errorf("unconstrained body moved to x=%v", body.WorldX)
	}
}

func TestSkeleton_ScaleAndRotation(t *testing.T) {
	_, sd := loadTestData(t)
	s := NewSkeleton(sd)
	s.ScaleX, s.ScaleY = 2, 2
	s.UpdateWorldTransform()

	if head := s.FindBone("head"); !approxEqual(head.WorldY, 180) {
		t.Errorf("scaled head y = %v, want 180", head.WorldY)
	}

	s = NewSkeleton(sd)
	body := s.FindBone("body")
	body.Rotation = 90
	s.UpdateWorldTransform()

	att := s.FindSlot("body_slot").Attachment
	v := att.ComputeWorldVertices(body)
	// bottom-left corner (-20, -30) rotated 90 degrees about (0, 50)
	if !approxEqual(v[0], 30) || !approxEqual(v[1], 30) {
		t.Errorf("rotated bottom-left = (%v, %v), want (30, 30)", v[0], v[1])
	}
}

func TestSkeleton_SetToSetupPose(t *testing.T) {
	_, sd := loadTestData(t)
	s := NewSkeleton(sd)

	body := s.FindBone("body")
	body.X, body.Rotation = 12, 45
	slot := s.FindSlot("head_slot")
	slot.Attachment = nil
	s.DrawOrder[0], s.DrawOrder[1] = s.DrawOrder[1], s.DrawOrder[0]

	s.SetToSetupPose()
	if body.X != 0 || body.Y != 50 || body.Rotation != 0 {
		t.Errorf("body pose not reset: %+v", *body)
	}
	if slot.Attachment == nil || slot.Attachment.Name != "head" {
		t.Error("head_slot attachment not restored")
	}
	if s.DrawOrder[0] != s.Slots[0] {
		t.Error("draw order not restored")
	}
}

// TestParseAvatarAssets parses every avatar shipped in assets/avatars.
func TestParseAvatarAssets(t *testing.T) {
	dirs, err := filepath.Glob("../../assets/avatars/*")
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) == 0 {
		t.Skip("no avatar assets found")
	}
	for _, dir := range dirs {
		t.Run(filepath.Base(dir), func(t *testing.T) {
			atlasData, err := os.ReadFile(filepath.Join(dir, "Robot.atlas"))
			if err != nil {
				t.Fatalf("read atlas: %v", err)
			}
			atlas, err := ParseAtlas(atlasData)
			if err != nil {
				t.Fatalf("ParseAtlas() error: %v", err)
			}
			skelData, err := os.ReadFile(filepath.Join(dir, "Robot.json"))
			if err != nil {
				t.Fatalf("read skeleton: %v", err)
			}
			sd, err := ParseSkeletonJSON(filepath.Base(dir), skelData, atlas)
			if err != nil {
				t.Fatalf("ParseSkeletonJSON() error: %v", err)
			}
			if sd.FindBone("crosshair") == nil {
				t.Error("crosshair bone missing")
			}
			if sd.FindAnimation("mouth_M") == nil {
				t.Error("mouth_M animation missing")
			}

			s := NewSkeleton(sd)
			s.FindBone("crosshair").Active = false
			s.UpdateWorldTransform()
			if _, _, w, h, ok := s.GetBounds(); !ok || w <= 0 || h <= 0 {
				t.Errorf("empty bounds: %vx%v ok=%v", w, h, ok)
			}
		})
	}
}
