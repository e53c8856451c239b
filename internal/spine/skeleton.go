package spine

import "math"

// Bone is the runtime state of a bone: its local pose and the world
// transform computed by Skeleton.UpdateWorldTransform.
type Bone struct {
	Data   *BoneData
	Parent *Bone

	// Local pose, starts at the setup pose
	X, Y, Rotation, ScaleX, ScaleY float64

	// World transform: a 2x2 matrix plus translation, y axis up
	A, B, C, D     float64
	WorldX, WorldY float64

	// Active controls whether attachments on this bone are drawn and counted
	// in the bounds. The world transform is always computed.
	Active bool
}

// SetToSetupPose resets the local pose to the setup pose.
func (b *Bone) SetToSetupPose() {
	b.X, b.Y = b.Data.X, b.Data.Y
	b.Rotation = b.Data.Rotation
	b.ScaleX, b.ScaleY = b.Data.ScaleX, b.Data.ScaleY
}

func (b *Bone) updateWorldTransform(skeleton *Skeleton) {
	rad := b.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	la, lb := cos*b.ScaleX, -sin*b.ScaleY
	lc, ld := sin*b.ScaleX, cos*b.ScaleY

	if b.Parent == nil {
		sx, sy := skeleton.ScaleX, skeleton.ScaleY
		b.A, b.B = la*sx, lb*sx
		b.C, b.D = lc*sy, ld*sy
		b.WorldX = b.X*sx + skeleton.X
		b.WorldY = b.Y*sy + skeleton.Y
		return
	}

	p := b.Parent
	b.WorldX = p.A*b.X + p.B*b.Y + p.WorldX
	b.WorldY = p.C*b.X + p.D*b.Y + p.WorldY
	b.A = p.A*la + p.B*lc
	b.B = p.A*lb + p.B*ld
	b.C = p.C*la + p.D*lc
	b.D = p.C*lb + p.D*ld
}

// LocalToWorld transforms a point from bone space to world space.
func (b *Bone) LocalToWorld(x, y float64) (float64, float64) {
	return b.A*x + b.B*y + b.WorldX, b.C*x + b.D*y + b.WorldY
}

// Slot is the runtime state of a slot.
type Slot struct {
	Data       *SlotData
	Bone       *Bone
	Attachment *RegionAttachment
	Color      Color
}

// Skeleton is a posable instance of SkeletonData. It is not safe for
// concurrent use.
type Skeleton struct {
	Data      *SkeletonData
	Bones     []*Bone
	Slots     []*Slot
	DrawOrder []*Slot
	Skin      *Skin

	// X, Y position the root in world space; ScaleX, ScaleY scale the whole skeleton
	X, Y           float64
	ScaleX, ScaleY float64

	// Time accumulates Update deltas
	Time float64

	constraintsByBone map[int][]*TransformConstraintData
}

// NewSkeleton creates a skeleton in the setup pose using the default skin.
func NewSkeleton(data *SkeletonData) *Skeleton {
	s := &Skeleton{
		Data:              data,
		Skin:              data.DefaultSkin,
		ScaleX:            1,
		ScaleY:            1,
		constraintsByBone: make(map[int][]*TransformConstraintData),
	}
	for _, bd := range data.Bones {
		b := &Bone{Data: bd, Active: true}
		if bd.Parent != nil {
			b.Parent = s.Bones[bd.Parent.Index]
		}
		s.Bones = append(s.Bones, b)
	}
	for _, sd := range data.Slots {
		slot := &Slot{Data: sd, Bone: s.Bones[sd.Bone.Index]}
		s.Slots = append(s.Slots, slot)
		s.DrawOrder = append(s.DrawOrder, slot)
	}
	for _, tc := range data.TransformConstraints {
		for _, b := range tc.Bones {
			s.constraintsByBone[b.Index] = append(s.constraintsByBone[b.Index], tc)
		}
	}
	s.SetToSetupPose()
	return s
}

// SetToSetupPose resets all bones and slots.
func (s *Skeleton) SetToSetupPose() {
	s.SetBonesToSetupPose()
	s.SetSlotsToSetupPose()
}

// SetBonesToSetupPose resets every bone's local pose.
func (s *Skeleton) SetBonesToSetupPose() {
	for _, b := range s.Bones {
		b.SetToSetupPose()
	}
}

// SetSlotsToSetupPose resets draw order, colors and attachments.
func (s *Skeleton) SetSlotsToSetupPose() {
	copy(s.DrawOrder, s.Slots)
	for i, slot := range s.Slots {
		s.setSlotToSetupPose(i, slot)
	}
}

func (s *Skeleton) setSlotToSetupPose(i int, slot *Slot) {
	slot.Color = slot.Data.Color
	slot.Attachment = nil
	if slot.Data.AttachmentName != "" {
		slot.Attachment = s.Skin.GetAttachment(i, slot.Data.AttachmentName)
	}
}

// resetAnimated resets only the bones and slots some animation keys, leaving
// programmatically driven bones alone.
func (s *Skeleton) resetAnimated() {
	for i, animated := range s.Data.animatedBones {
		if animated {
			s.Bones[i].SetToSetupPose()
		}
	}
	for i, animated := range s.Data.animatedSlots {
		if animated {
			s.setSlotToSetupPose(i, s.Slots[i])
		}
	}
}

// FindBone returns the bone with the given name, or nil.
func (s *Skeleton) FindBone(name string) *Bone {
	if i := s.FindBoneIndex(name); i >= 0 {
		return s.Bones[i]
	}
	return nil
}

// FindBoneIndex returns the index of the named bone, or -1.
func (s *Skeleton) FindBoneIndex(name string) int {
	for i, b := range s.Bones {
		if b.Data.Name == name {
			return i
		}
	}
	return -1
}

// FindSlot returns the slot with the given name, or nil.
func (s *Skeleton) FindSlot(name string) *Slot {
	for _, slot := range s.Slots {
		if slot.Data.Name == name {
			return slot
		}
	}
	return nil
}

// Update advances the skeleton clock. Physics is not supported, so this
// only feeds Time.
func (s *Skeleton) Update(delta float64) {
	s.Time += delta
}

// UpdateWorldTransform computes world transforms for all bones in parent
// order and applies transform constraints as each constrained bone is
// reached. Constraint targets should precede the constrained bones.
func (s *Skeleton) UpdateWorldTransform() {
	for i, b := range s.Bones {
		b.updateWorldTransform(s)
		for _, tc := range s.constraintsByBone[i] {
			target := s.Bones[tc.Target.Index]
			b.WorldX += (target.WorldX - b.WorldX) * tc.MixX
			b.WorldY += (target.WorldY - b.WorldY) * tc.MixY
		}
	}
}

// ComputeWorldVertices returns the four quad corners in world space in the
// order bottom-left, bottom-right, top-right, top-left (y up).
func (a *RegionAttachment) ComputeWorldVertices(bone *Bone) [8]float64 {
	hw := a.Width / 2 * a.ScaleX
	hh := a.Height / 2 * a.ScaleY
	rad := a.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	corners := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	var out [8]float64
	for i, c := range corners {
		lx := c[0]*cos - c[1]*sin + a.X
		ly := c[0]*sin + c[1]*cos + a.Y
		out[i*2], out[i*2+1] = bone.LocalToWorld(lx, ly)
	}
	return out
}

// GetBounds returns the axis aligned bounds of all visible attachments on
// active bones. ok is false when nothing is visible.
func (s *Skeleton) GetBounds() (offsetX, offsetY, width, height float64, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, slot := range s.DrawOrder {
		if slot.Attachment == nil || !slot.Bone.Active {
			continue
		}
		v := slot.Attachment.ComputeWorldVertices(slot.Bone)
		for i := 0; i < 8; i += 2 {
			minX, maxX = math.Min(minX, v[i]), math.Max(maxX, v[i])
			minY, maxY = math.Min(minY, v[i+1]), math.Max(maxY, v[i+1])
		}
		ok = true
	}
	if !ok {
		return 0, 0, 0, 0, false
	}
	return minX, minY, maxX - minX, maxY - minY, true
}
