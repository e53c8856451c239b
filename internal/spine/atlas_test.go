package spine

import (
	"strings"
	"testing"
)

// testAtlas3 is a 3.x layout atlas: page fields unindented, region fields indented.
const testAtlas3 = `
robot.png
size: 256,256
format: RGBA8888
filter: Linear,Linear
repeat: none
body
  rotate: false
  xy: 2, 2
  size: 80, 75
  orig: 80, 75
  offset: 0, 0
  index: -1
arm
  rotate: true
  xy: 84, 2
  size: 20, 50
  orig: 24, 52
  offset: 2, 1
  index: 3

second.png
size: 64,64
pma: true
eyes
  xy: 0, 0
  size: 56, 18
`

func TestParseAtlas_Layout3(t *testing.T) {
	atlas, err := ParseAtlas([]byte(testAtlas3))
	if err != nil {
		t.Fatalf("ParseAtlas() error: %v", err)
	}
	if len(atlas.Pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(atlas.Pages))
	}
	if p := atlas.Pages[0]; p.Name != "robot.png" || p.Width != 256 || p.Height != 256 || p.PremultipliedAlpha {
		t.Errorf("Unexpected first page: %+v", *p)
	}
	if !atlas.Pages[1].PremultipliedAlpha {
		t.Error("Expected second page to be premultiplied")
	}

	tests := []struct {
		name         string
		page         string
		x, y, w, h   int
		rotate       bool
		origW, origH int
		offX, offY   int
		index        int
	}{
		{"body", "robot.png", 2, 2, 80, 75, false, 80, 75, 0, 0, -1},
		{"arm", "robot.png", 84, 2, 20, 50, true, 24, 52, 2, 1, 3},
		{"eyes", "second.png", 0, 0, 56, 18, false, 56, 18, 0, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := atlas.FindRegion(tt.name)
			if r == nil {
				t.Fatalf("region %q not found", tt.name)
			}
			if r.Page.Name != tt.page {
				t.Errorf("page = %s, want %s", r.Page.Name, tt.page)
			}
			if r.X != tt.x || r.Y != tt.y || r.Width != tt.w || r.Height != tt.h {
				t.Errorf("rect = (%d,%d %dx%d), want (%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height, tt.x, tt.y, tt.w, tt.h)
			}
			if r.Rotate != tt.rotate {
				t.Errorf("rotate = %v, want %v", r.Rotate, tt.rotate)
			}
			if r.OriginalWidth != tt.origW || r.OriginalHeight != tt.origH {
				t.Errorf("orig = %dx%d, want %dx%d", r.OriginalWidth, r.OriginalHeight, tt.origW, tt.origH)
			}
			if r.OffsetX != tt.offX || r.OffsetY != tt.offY {
				t.Errorf("offset = %d,%d, want %d,%d", r.OffsetX, r.OffsetY, tt.offX, tt.offY)
			}
			if r.Index != tt.index {
				t.Errorf("index = %d, want %d", r.Index, tt.index)
			}
		})
	}
}

func TestParseAtlas_Layout4(t *testing.T) {
	atlas, err := ParseAtlas([]byte(testAtlas4))
	if err != nil {
		t.Fatalf("ParseAtlas() error: %v", err)
	}
	if len(atlas.Pages) != 1 || len(atlas.Regions) != 3 {
		t.Fatalf("Expected 1 page and 3 regions, got %d and %d", len(atlas.Pages), len(atlas.Regions))
	}
	page := atlas.Pages[0]
	if page.Width != 128 || page.Height != 64 || !page.PremultipliedAlpha {
		t.Errorf("Unexpected page: %+v", *page)
	}

	head := atlas.FindRegion("head")
	if head == nil || !head.Rotate || head.Width != 20 || head.Height != 30 {
		t.Errorf("Unexpected head region: %+v", head)
	}
	closed := atlas.FindRegion("head_closed")
	if closed.OffsetX != 1 || closed.OffsetY != 2 || closed.OriginalWidth != 32 || closed.OriginalHeight != 24 {
		t.Errorf("offsets not applied: %+v", *closed)
	}
	if atlas.FindRegion("missing") != nil {
		t.Error("FindRegion() should return nil for an unknown region")
	}
}

func TestParseAtlas_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"bad size", "page.png\nsize: 12\n", "size"},
		{"bad bounds", "page.png\n\tsize: 8,8\nr\n\tbounds: 1,2,x,4\n", "bounds"},
		{"bad index", "page.png\nsize: 8,8\nr\n  index: one\n", "index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAtlas([]byte(tt.data))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestAtlasRegion_SourceCorners(t *testing.T) {
	tests := []struct {
		name   string
		region AtlasRegion
		want   [8]float32
	}{
		{
			name:   "unrotated",
			region: AtlasRegion{X: 10, Y: 20, Width: 40, Height: 30},
			// BL, BR, TR, TL with page y pointing down
			want: [8]float32{10, 50, 50, 50, 50, 20, 10, 20},
		},
		{
			name:   "rotated",
			region: AtlasRegion{X: 10, Y: 20, Width: 40, Height: 30, Rotate: true},
			// packed rectangle is 30 wide and 40 tall
			want: [8]float32{40, 60, 40, 20, 10, 20, 10, 60},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.region.SourceCorners(); got != tt.want {
				t.Errorf("SourceCorners() = %v, want %v", got, tt.want)
			}
		})
	}
}
