package spine

import "math"

// attachmentThreshold is the mix alpha below which an entry being mixed in
// does not swap attachments yet.
const attachmentThreshold = 0.5

// Animation is a named set of timelines.
type Animation struct {
	Name      string
	Duration  float64
	Timelines []Timeline
}

// Apply poses the skeleton at the given animation time.
//
// Parameters:
//   - skeleton: the skeleton to pose
//   - time: animation time in seconds; wrapped by Duration when loop is set
//   - loop: whether time wraps
//   - alpha: mix weight in [0, 1]; 1 fully replaces the current pose
func (a *Animation) Apply(skeleton *Skeleton, time float64, loop bool, alpha float64) {
	if loop && a.Duration > 0 {
		time = math.Mod(time, a.Duration)
	}
	for _, t := range a.Timelines {
		t.Apply(skeleton, time, alpha)
	}
}

// Timeline changes one property of a skeleton over time.
type Timeline interface {
	Apply(skeleton *Skeleton, time, alpha float64)
}

// curveFrame is a keyframe with up to two values.
type curveFrame struct {
	Time    float64
	Values  [2]float64
	Stepped bool
}

// sampleCurve returns the interpolated values at time, holding the first and
// last keys outside the keyed range.
func sampleCurve(frames []curveFrame, time float64) [2]float64 {
	if time <= frames[0].Time {
		return frames[0].Values
	}
	last := len(frames) - 1
	if time >= frames[last].Time {
		return frames[last].Values
	}
	i := 0
	for i < last && frames[i+1].Time <= time {
		i++
	}
	f0, f1 := frames[i], frames[i+1]
	if f0.Stepped {
		return f0.Values
	}
	t := (time - f0.Time) / (f1.Time - f0.Time)
	return [2]float64{
		f0.Values[0] + (f1.Values[0]-f0.Values[0])*t,
		f0.Values[1] + (f1.Values[1]-f0.Values[1])*t,
	}
}

// RotateTimeline keys a bone rotation offset (degrees) relative to setup.
type RotateTimeline struct {
	BoneIndex int
	Frames    []curveFrame
}

func (t *RotateTimeline) Apply(skeleton *Skeleton, time, alpha float64) {
	bone := skeleton.Bones[t.BoneIndex]
	target := bone.Data.Rotation + sampleCurve(t.Frames, time)[0]
	delta := target - bone.Rotation
	// shortest direction
	delta -= math.Ceil(delta/360-0.5) * 360
	bone.Rotation += delta * alpha
}

// TranslateTimeline keys a bone translation offset relative to setup.
type TranslateTimeline struct {
	BoneIndex int
	Frames    []curveFrame
}

func (t *TranslateTimeline) Apply(skeleton *Skeleton, time, alpha float64) {
	bone := skeleton.Bones[t.BoneIndex]
	v := sampleCurve(t.Frames, time)
	bone.X += (bone.Data.X + v[0] - bone.X) * alpha
	bone.Y += (bone.Data.Y + v[1] - bone.Y) * alpha
}

// ScaleTimeline keys a bone scale multiplier relative to setup.
type ScaleTimeline struct {
	BoneIndex int
	Frames    []curveFrame
}

func (t *ScaleTimeline) Apply(skeleton *Skeleton, time, alpha float64) {
	bone := skeleton.Bones[t.BoneIndex]
	v := sampleCurve(t.Frames, time)
	bone.ScaleX += (bone.Data.ScaleX*v[0] - bone.ScaleX) * alpha
	bone.ScaleY += (bone.Data.ScaleY*v[1] - bone.ScaleY) * alpha
}

// AttachmentTimeline switches the visible attachment of a slot. A nil name
// hides the slot.
type AttachmentTimeline struct {
	SlotIndex int
	Times     []float64
	Names     []*string
}

func (t *AttachmentTimeline) Apply(skeleton *Skeleton, time, alpha float64) {
	if alpha < attachmentThreshold || len(t.Times) == 0 || time < t.Times[0] {
		return
	}
	i := len(t.Times) - 1
	for i > 0 && t.Times[i] > time {
		i--
	}
	slot := skeleton.Slots[t.SlotIndex]
	if t.Names[i] == nil {
		slot.Attachment = nil
		return
	}
	slot.Attachment = skeleton.Skin.GetAttachment(t.SlotIndex, *t.Names[i])
}
