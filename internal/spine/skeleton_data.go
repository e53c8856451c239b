package spine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrAnimationNotFound is returned when an animation name is not part of the
// skeleton data.
var ErrAnimationNotFound = errors.New("animation not found")

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// White is the default slot and attachment color.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// BoneData is the setup pose of a bone.
type BoneData struct {
	Index  int
	Name   string
	Parent *BoneData

	// X, Y, Rotation (degrees), ScaleX, ScaleY are the setup local transform
	X, Y, Rotation, ScaleX, ScaleY float64

	// Length is only used by tooling
	Length float64
}

// SlotData is the setup state of a slot: the bone it is attached to and the
// attachment visible in the setup pose.
type SlotData struct {
	Index          int
	Name           string
	Bone           *BoneData
	AttachmentName string
	Color          Color
}

// RegionAttachment is a textured quad placed relative to its slot's bone.
type RegionAttachment struct {
	// Name is the attachment key inside the skin
	Name string

	// Path is the atlas region name, defaults to Name
	Path string

	// X, Y, Rotation, ScaleX, ScaleY place the quad center in bone space
	X, Y, Rotation, ScaleX, ScaleY float64

	// Width and Height are the quad size in skeleton units
	Width, Height float64

	// Color tints the region, and is the fill color when no page image exists
	Color Color

	// Region is the resolved atlas region, nil when loaded without an atlas
	Region *AtlasRegion
}

// Skin maps (slot index, attachment name) to attachments.
type Skin struct {
	Name        string
	attachments map[int]map[string]*RegionAttachment
}

// NewSkin creates an empty skin.
func NewSkin(name string) *Skin {
	return &Skin{Name: name, attachments: make(map[int]map[string]*RegionAttachment)}
}

// SetAttachment adds or replaces an attachment for a slot.
func (s *Skin) SetAttachment(slotIndex int, name string, a *RegionAttachment) {
	m, ok := s.attachments[slotIndex]
	if !ok {
		m = make(map[string]*RegionAttachment)
		s.attachments[slotIndex] = m
	}
	m[name] = a
}

// GetAttachment returns the attachment for a slot, or nil.
func (s *Skin) GetAttachment(slotIndex int, name string) *RegionAttachment {
	if s == nil {
		return nil
	}
	return s.attachments[slotIndex][name]
}

// TransformConstraintData pulls the world position of constrained bones
// toward a target bone.
type TransformConstraintData struct {
	Name   string
	Bones  []*BoneData
	Target *BoneData

	// MixX and MixY in [0, 1]: 0 leaves the bone untouched, 1 snaps it onto the target
	MixX, MixY float64
}

// SkeletonData is the immutable, shareable definition of a skeleton.
type SkeletonData struct {
	// Name is informational, usually the file name
	Name string

	// Width and Height are the setup pose bounds written by the editor
	Width, Height float64

	Bones                []*BoneData
	Slots                []*SlotData
	DefaultSkin          *Skin
	TransformConstraints []*TransformConstraintData
	Animations           []*Animation

	// animatedBones and animatedSlots flag everything any timeline touches,
	// so AnimationState can reset exactly those to the setup pose each frame.
	animatedBones []bool
	animatedSlots []bool
}

// FindBone returns the bone data with the given name, or nil.
func (d *SkeletonData) FindBone(name string) *BoneData {
	for _, b := range d.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// FindSlot returns the slot data with the given name, or nil.
func (d *SkeletonData) FindSlot(name string) *SlotData {
	for _, s := range d.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// FindAnimation returns the animation with the given name, or nil.
func (d *SkeletonData) FindAnimation(name string) *Animation {
	for _, a := range d.Animations {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AnimationNames returns all animation names, sorted.
func (d *SkeletonData) AnimationNames() []string {
	names := make([]string, len(d.Animations))
	for i, a := range d.Animations {
		names[i] = a.Name
	}
	return names
}

// ==================================================================
// JSON format
// ==================================================================

type skeletonJSON struct {
	Skeleton struct {
		Spine  string  `json:"spine"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"skeleton"`
	Bones      []boneJSON                `json:"bones"`
	Slots      []slotJSON                `json:"slots"`
	Skins      []skinJSON                `json:"skins"`
	Transform  []transformJSON           `json:"transform"`
	Animations map[string]animationJSON `json:"animations"`
}

type boneJSON struct {
	Name     string   `json:"name"`
	Parent   string   `json:"parent"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Rotation float64  `json:"rotation"`
	ScaleX   *float64 `json:"scaleX"`
	ScaleY   *float64 `json:"scaleY"`
	Length   float64  `json:"length"`
}

type slotJSON struct {
	Name       string `json:"name"`
	Bone       string `json:"bone"`
	Attachment string `json:"attachment"`
	Color      string `json:"color"`
}

type skinJSON struct {
	Name        string                                `json:"name"`
	Attachments map[string]map[string]attachmentJSON `json:"attachments"`
}

type attachmentJSON struct {
	Type     string   `json:"type"`
	Path     string   `json:"path"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Rotation float64  `json:"rotation"`
	ScaleX   *float64 `json:"scaleX"`
	ScaleY   *float64 `json:"scaleY"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Color    string   `json:"color"`
}

type transformJSON struct {
	Name   string   `json:"name"`
	Bones  []string `json:"bones"`
	Target string   `json:"target"`
	MixX   *float64 `json:"mixX"`
	MixY   *float64 `json:"mixY"`
}

type animationJSON struct {
	Bones map[string]boneTimelinesJSON `json:"bones"`
	Slots map[string]slotTimelinesJSON `json:"slots"`
}

type boneTimelinesJSON struct {
	Rotate    []keyJSON `json:"rotate"`
	Translate []keyJSON `json:"translate"`
	Scale     []keyJSON `json:"scale"`
}

type slotTimelinesJSON struct {
	Attachment []attachmentKeyJSON `json:"attachment"`
}

type keyJSON struct {
	Time  float64     `json:"time"`
	Value *float64    `json:"value"`
	X     *float64    `json:"x"`
	Y     *float64    `json:"y"`
	Curve interface{} `json:"curve"`
}

type attachmentKeyJSON struct {
	Time float64 `json:"time"`
	Name *string `json:"name"`
}

// ParseSkeletonJSON parses Spine JSON skeleton data.
//
// Parameters:
//   - name: informational name stored in SkeletonData.Name
//   - data: the JSON document
//   - atlas: used to resolve region attachments; nil skips resolution
//
// Returns:
//   - *SkeletonData: the parsed skeleton
//   - error: malformed JSON, dangling bone/slot references, or a region missing from the atlas
func ParseSkeletonJSON(name string, data []byte, atlas *Atlas) (*SkeletonData, error) {
	var root skeletonJSON
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse skeleton JSON %q: %w", name, err)
	}

	sd := &SkeletonData{
		Name:   name,
		Width:  root.Skeleton.Width,
		Height: root.Skeleton.Height,
	}

	for i, bj := range root.Bones {
		bd := &BoneData{
			Index:    i,
			Name:     bj.Name,
			X:        bj.X,
			Y:        bj.Y,
			Rotation: bj.Rotation,
			ScaleX:   floatOr(bj.ScaleX, 1),
			ScaleY:   floatOr(bj.ScaleY, 1),
			Length:   bj.Length,
		}
		if bj.Parent != "" {
			bd.Parent = sd.FindBone(bj.Parent)
			if bd.Parent == nil {
				return nil, fmt.Errorf("skeleton %q: bone %q has unknown parent %q (parents must precede children)", name, bj.Name, bj.Parent)
			}
		}
		sd.Bones = append(sd.Bones, bd)
	}

	for i, sj := range root.Slots {
		bone := sd.FindBone(sj.Bone)
		if bone == nil {
			return nil, fmt.Errorf("skeleton %q: slot %q references unknown bone %q", name, sj.Name, sj.Bone)
		}
		color, err := parseColor(sj.Color)
		if err != nil {
			return nil, fmt.Errorf("skeleton %q: slot %q: %w", name, sj.Name, err)
		}
		sd.Slots = append(sd.Slots, &SlotData{
			Index:          i,
			Name:           sj.Name,
			Bone:           bone,
			AttachmentName: sj.Attachment,
			Color:          color,
		})
	}

	for _, skj := range root.Skins {
		skin, err := parseSkin(sd, skj, atlas)
		if err != nil {
			return nil, fmt.Errorf("skeleton %q: %w", name, err)
		}
		// Only the default skin is used by the avatar; other skins are parsed
		// for validation and dropped.
		if skj.Name == "default" || sd.DefaultSkin == nil {
			sd.DefaultSkin = skin
		}
	}

	for _, tj := range root.Transform {
		target := sd.FindBone(tj.Target)
		if target == nil {
			return nil, fmt.Errorf("skeleton %q: transform constraint %q has unknown target %q", name, tj.Name, tj.Target)
		}
		tc := &TransformConstraintData{
			Name:   tj.Name,
			Target: target,
			MixX:   floatOr(tj.MixX, 1),
			MixY:   floatOr(tj.MixY, 1),
		}
		for _, bn := range tj.Bones {
			b := sd.FindBone(bn)
			if b == nil {
				return nil, fmt.Errorf("skeleton %q: transform constraint %q has unknown bone %q", name, tj.Name, bn)
			}
			tc.Bones = append(tc.Bones, b)
		}
		sd.TransformConstraints = append(sd.TransformConstraints, tc)
	}

	// JSON objects are unordered once decoded into a map, so animations are
	// sorted by name to keep iteration stable.
	animNames := make([]string, 0, len(root.Animations))
	for n := range root.Animations {
		animNames = append(animNames, n)
	}
	sort.Strings(animNames)

	sd.animatedBones = make([]bool, len(sd.Bones))
	sd.animatedSlots = make([]bool, len(sd.Slots))
	for _, an := range animNames {
		anim, err := parseAnimation(sd, an, root.Animations[an])
		if err != nil {
			return nil, fmt.Errorf("skeleton %q: %w", name, err)
		}
		sd.Animations = append(sd.Animations, anim)
	}

	return sd, nil
}

func parseSkin(sd *SkeletonData, skj skinJSON, atlas *Atlas) (*Skin, error) {
	skin := NewSkin(skj.Name)
	for slotName, entries := range skj.Attachments {
		slot := sd.FindSlot(slotName)
		if slot == nil {
			return nil, fmt.Errorf("skin %q references unknown slot %q", skj.Name, slotName)
		}
		for attName, aj := range entries {
			if aj.Type != "" && aj.Type != "region" {
				// Meshes, paths and clipping attachments are not supported.
				continue
			}
			color, err := parseColor(aj.Color)
			if err != nil {
				return nil, fmt.Errorf("attachment %q: %w", attName, err)
			}
			path := aj.Path
			if path == "" {
				path = attName
			}
			att := &RegionAttachment{
				Name:     attName,
				Path:     path,
				X:        aj.X,
				Y:        aj.Y,
				Rotation: aj.Rotation,
				ScaleX:   floatOr(aj.ScaleX, 1),
				ScaleY:   floatOr(aj.ScaleY, 1),
				Width:    aj.Width,
				Height:   aj.Height,
				Color:    color,
			}
			if atlas != nil {
				att.Region = atlas.FindRegion(path)
				if att.Region == nil {
					return nil, fmt.Errorf("region %q not found in atlas (attachment %q, slot %q)", path, attName, slotName)
				}
			}
			skin.SetAttachment(slot.Index, attName, att)
		}
	}
	return skin, nil
}

func parseAnimation(sd *SkeletonData, name string, aj animationJSON) (*Animation, error) {
	anim := &Animation{Name: name}

	for boneName, tl := range aj.Bones {
		bone := sd.FindBone(boneName)
		if bone == nil {
			return nil, fmt.Errorf("animation %q references unknown bone %q", name, boneName)
		}
		if len(tl.Rotate) > 0 {
			t := &RotateTimeline{BoneIndex: bone.Index, Frames: makeCurveFrames(tl.Rotate, func(k keyJSON) [2]float64 {
				return [2]float64{floatOr(k.Value, 0), 0}
			})}
			anim.Timelines = append(anim.Timelines, t)
			anim.Duration = max(anim.Duration, t.Frames[len(t.Frames)-1].Time)
		}
		if len(tl.Translate) > 0 {
			t := &TranslateTimeline{BoneIndex: bone.Index, Frames: makeCurveFrames(tl.Translate, func(k keyJSON) [2]float64 {
				return [2]float64{floatOr(k.X, 0), floatOr(k.Y, 0)}
			})}
			anim.Timelines = append(anim.Timelines, t)
			anim.Duration = max(anim.Duration, t.Frames[len(t.Frames)-1].Time)
		}
		if len(tl.Scale) > 0 {
			t := &ScaleTimeline{BoneIndex: bone.Index, Frames: makeCurveFrames(tl.Scale, func(k keyJSON) [2]float64 {
				return [2]float64{floatOr(k.X, 1), floatOr(k.Y, 1)}
			})}
			anim.Timelines = append(anim.Timelines, t)
			anim.Duration = max(anim.Duration, t.Frames[len(t.Frames)-1].Time)
		}
		if len(tl.Rotate)+len(tl.Translate)+len(tl.Scale) > 0 {
			sd.animatedBones[bone.Index] = true
		}
	}

	for slotName, tl := range aj.Slots {
		slot := sd.FindSlot(slotName)
		if slot == nil {
			return nil, fmt.Errorf("animation %q references unknown slot %q", name, slotName)
		}
		if len(tl.Attachment) == 0 {
			continue
		}
		t := &AttachmentTimeline{SlotIndex: slot.Index}
		for _, k := range tl.Attachment {
			t.Times = append(t.Times, k.Time)
			t.Names = append(t.Names, k.Name)
		}
		anim.Timelines = append(anim.Timelines, t)
		anim.Duration = max(anim.Duration, t.Times[len(t.Times)-1])
		sd.animatedSlots[slot.Index] = true
	}

	return anim, nil
}

func makeCurveFrames(keys []keyJSON, values func(keyJSON) [2]float64) []curveFrame {
	frames := make([]curveFrame, len(keys))
	for i, k := range keys {
		stepped := false
		if s, ok := k.Curve.(string); ok && s == "stepped" {
			stepped = true
		}
		frames[i] = curveFrame{Time: k.Time, Values: values(k), Stepped: stepped}
	}
	return frames
}

// parseColor parses "rrggbb" or "rrggbbaa" hex; empty means white.
func parseColor(hex string) (Color, error) {
	if hex == "" {
		return White, nil
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", hex)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return Color{
		R: float32((v>>24)&0xff) / 255,
		G: float32((v>>16)&0xff) / 255,
		B: float32((v>>8)&0xff) / 255,
		A: float32(v&0xff) / 255,
	}, nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
