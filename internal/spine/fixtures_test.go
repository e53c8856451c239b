package spine

import "testing"

// testAtlas4 is a 4.x layout atlas: page and region fields are indented.
const testAtlas4 = `
doll.png
	size: 128, 64
	filter: Linear, Linear
	pma: true
body
	bounds: 0, 0, 40, 60
head
	bounds: 40, 0, 20, 30
	rotate: 90
head_closed
	bounds: 70, 0, 30, 20
	offsets: 1, 2, 32, 24
`

// testSkeleton is a minimal skeleton in the 4.x JSON layout (skins as a list).
//
// Setup pose in world space:
//   - root at (0, 0); crosshair at (0, 100); body at (0, 50); head at (0, 90)
//   - body quad 40x60 centered on body: x [-20, 20], y [20, 80]
//   - head quad 30x20 centered 10 above head: x [-15, 15], y [90, 110]
const testSkeleton = `{
	"skeleton": {"spine": "4.1.24", "width": 40, "height": 90},
	"bones": [
		{"name": "root"},
		{"name": "crosshair", "parent": "root", "y": 100},
		{"name": "body", "parent": "root", "y": 50},
		{"name": "head", "parent": "body", "y": 40}
	],
	"slots": [
		{"name": "body_slot", "bone": "body", "attachment": "body"},
		{"name": "head_slot", "bone": "head", "attachment": "head", "color": "ff000080"}
	],
	"skins": [
		{"name": "default", "attachments": {
			"body_slot": {"body": {"width": 40, "height": 60}},
			"head_slot": {
				"head": {"y": 10, "width": 30, "height": 20},
				"head_closed": {"y": 10, "width": 30, "height": 20},
				"head_mesh": {"type": "mesh", "width": 30, "height": 20}
			}
		}}
	],
	"transform": [
		{"name": "head_follow", "bones": ["head"], "target": "crosshair", "mixX": 0.5, "mixY": 0}
	],
	"animations": {
		"idle": {"bones": {"body": {"translate": [{"time": 0, "y": 0}, {"time": 1, "y": 10}]}}},
		"wave": {"bones": {"body": {"rotate": [{"time": 0, "value": 0}, {"time": 0.5, "value": 90}]}}},
		"step": {"bones": {"body": {"scale": [{"time": 0, "x": 2, "y": 2, "curve": "stepped"}, {"time": 1, "x": 1, "y": 1}]}}},
		"blink": {"slots": {"head_slot": {"attachment": [{"time": 0, "name": "head_closed"}, {"time": 0.5, "name": null}]}}}
	}
}`

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	d := a - b
	return d < epsilon && d > -epsilon
}

func loadTestData(t *testing.T) (*Atlas, *SkeletonData) {
	t.Helper()
	atlas, err := ParseAtlas([]byte(testAtlas4))
	if err != nil {
		t.Fatalf("ParseAtlas() error: %v", err)
	}
	sd, err := ParseSkeletonJSON("doll", []byte(testSkeleton), atlas)
	if err != nil {
		t.Fatalf("ParseSkeletonJSON() error: %v", err)
	}
	return atlas, sd
}

func newTestState(t *testing.T) (*Skeleton, *AnimationState) {
	t.Helper()
	_, sd := loadTestData(t)
	return NewSkeleton(sd), NewAnimationState(NewAnimationStateData(sd))
}
