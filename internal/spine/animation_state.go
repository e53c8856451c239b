package spine

import (
	"fmt"
	"math"
)

// TrackEntry is one animation assignment on a track.
type TrackEntry struct {
	Animation  *Animation
	TrackIndex int
	Loop       bool

	// TimeScale multiplies the delta applied to TrackTime, default 1
	TimeScale float64

	// Delay is the remaining wait in seconds before this entry starts. For a
	// queued entry it is measured against the previous entry's TrackTime.
	Delay float64

	// TrackTime is the time this entry has been playing
	TrackTime float64

	// MixDuration is the crossfade length from MixingFrom; MixTime is its progress
	MixDuration float64
	MixTime     float64

	// MixingFrom is the entry being faded out, nil when no crossfade runs
	MixingFrom *TrackEntry

	// Next is the entry queued after this one
	Next *TrackEntry
}

// AnimationTime returns the time used to pose the animation.
func (e *TrackEntry) AnimationTime() float64 {
	d := e.Animation.Duration
	if e.Loop && d > 0 {
		return math.Mod(e.TrackTime, d)
	}
	return math.Min(e.TrackTime, d)
}

// IsComplete reports whether a non-looping entry reached its end.
func (e *TrackEntry) IsComplete() bool {
	return !e.Loop && e.TrackTime >= e.Animation.Duration
}

// trackComplete returns the TrackTime at which the entry next completes a
// full pass of its animation.
func (e *TrackEntry) trackComplete() float64 {
	d := e.Animation.Duration
	if d <= 0 {
		return e.TrackTime
	}
	if e.Loop {
		return d * (math.Floor(e.TrackTime/d) + 1)
	}
	if e.TrackTime < d {
		return d
	}
	return e.TrackTime
}

func (e *TrackEntry) mixAlpha() float64 {
	if e.MixDuration <= 0 {
		return 1
	}
	return math.Min(1, e.MixTime/e.MixDuration)
}

type mixKey struct {
	from, to *Animation
}

// AnimationStateData stores crossfade durations between animation pairs.
type AnimationStateData struct {
	SkeletonData *SkeletonData

	// DefaultMix is used for pairs without an explicit mix
	DefaultMix float64

	mixes map[mixKey]float64
}

// NewAnimationStateData creates an empty mix table.
func NewAnimationStateData(sd *SkeletonData) *AnimationStateData {
	return &AnimationStateData{SkeletonData: sd, mixes: make(map[mixKey]float64)}
}

// SetMix sets the crossfade duration from one animation to another.
func (d *AnimationStateData) SetMix(from, to *Animation, duration float64) {
	d.mixes[mixKey{from, to}] = duration
}

// SetMixByName is SetMix with animation lookup.
func (d *AnimationStateData) SetMixByName(from, to string, duration float64) error {
	fa := d.SkeletonData.FindAnimation(from)
	if fa == nil {
		return fmt.Errorf("%w: %q", ErrAnimationNotFound, from)
	}
	ta := d.SkeletonData.FindAnimation(to)
	if ta == nil {
		return fmt.Errorf("%w: %q", ErrAnimationNotFound, to)
	}
	d.SetMix(fa, ta, duration)
	return nil
}

// GetMix returns the crossfade duration for a pair.
func (d *AnimationStateData) GetMix(from, to *Animation) float64 {
	if v, ok := d.mixes[mixKey{from, to}]; ok {
		return v
	}
	return d.DefaultMix
}

// AnimationState plays animations on independent tracks. Higher tracks are
// applied after lower ones, so they override what they key.
type AnimationState struct {
	Data *AnimationStateData

	// TimeScale multiplies every Update delta
	TimeScale float64

	tracks []*TrackEntry
}

// NewAnimationState creates a state with no tracks.
func NewAnimationState(data *AnimationStateData) *AnimationState {
	return &AnimationState{Data: data, TimeScale: 1}
}

// Current returns the entry playing on a track, or nil.
func (s *AnimationState) Current(track int) *TrackEntry {
	if track < 0 || track >= len(s.tracks) {
		return nil
	}
	return s.tracks[track]
}

// TrackCount returns the number of allocated tracks.
func (s *AnimationState) TrackCount() int {
	return len(s.tracks)
}

func (s *AnimationState) ensureTrack(track int) {
	for len(s.tracks) <= track {
		s.tracks = append(s.tracks, nil)
	}
}

func (s *AnimationState) newEntry(track int, anim *Animation, loop bool) *TrackEntry {
	return &TrackEntry{Animation: anim, TrackIndex: track, Loop: loop, TimeScale: 1}
}

// SetAnimation replaces the track's current entry and discards its queue.
// A crossfade from the previous entry runs when the mix table has a
// non-zero duration for the pair.
func (s *AnimationState) SetAnimation(track int, anim *Animation, loop bool) *TrackEntry {
	s.ensureTrack(track)
	entry := s.newEntry(track, anim, loop)
	if current := s.tracks[track]; current != nil {
		current.Next = nil
		entry.MixDuration = s.Data.GetMix(current.Animation, anim)
		if entry.MixDuration > 0 {
			entry.MixingFrom = current
		}
	}
	s.tracks[track] = entry
	return entry
}

// SetAnimationByName is SetAnimation with animation lookup.
func (s *AnimationState) SetAnimationByName(track int, name string, loop bool) (*TrackEntry, error) {
	anim := s.Data.SkeletonData.FindAnimation(name)
	if anim == nil {
		return nil, fmt.Errorf("%w: %q", ErrAnimationNotFound, name)
	}
	return s.SetAnimation(track, anim, loop), nil
}

// AddAnimation queues an animation after the last entry of a track. When
// delay <= 0 the entry starts when the previous one completes, less the mix
// duration, plus delay.
func (s *AnimationState) AddAnimation(track int, anim *Animation, loop bool, delay float64) *TrackEntry {
	s.ensureTrack(track)
	last := s.tracks[track]
	if last == nil {
		entry := s.SetAnimation(track, anim, loop)
		entry.Delay = math.Max(delay, 0)
		return entry
	}
	for last.Next != nil {
		last = last.Next
	}
	entry := s.newEntry(track, anim, loop)
	entry.MixDuration = s.Data.GetMix(last.Animation, anim)
	if delay <= 0 {
		delay = math.Max(delay+last.trackComplete()-entry.MixDuration, 0)
	}
	entry.Delay = delay
	last.Next = entry
	return entry
}

// AddAnimationByName is AddAnimation with animation lookup.
func (s *AnimationState) AddAnimationByName(track int, name string, loop bool, delay float64) (*TrackEntry, error) {
	anim := s.Data.SkeletonData.FindAnimation(name)
	if anim == nil {
		return nil, fmt.Errorf("%w: %q", ErrAnimationNotFound, name)
	}
	return s.AddAnimation(track, anim, loop, delay), nil
}

// ClearTrack removes everything playing or queued on a track.
func (s *AnimationState) ClearTrack(track int) {
	if track >= 0 && track < len(s.tracks) {
		s.tracks[track] = nil
	}
}

// ClearTracks removes all tracks.
func (s *AnimationState) ClearTracks() {
	s.tracks = s.tracks[:0]
}

// Update advances every track by delta seconds, promoting queued entries
// whose delay elapsed and finishing crossfades.
func (s *AnimationState) Update(delta float64) {
	delta *= s.TimeScale
	for i, current := range s.tracks {
		if current == nil {
			continue
		}
		d := delta
		if current.Delay > 0 {
			current.Delay -= d
			if current.Delay > 0 {
				continue
			}
			d = -current.Delay
			current.Delay = 0
		}

		current.TrackTime += d * current.TimeScale

		// crossfades from mixStart down advance by this frame's delta
		mixStart := current
		if next := current.Next; next != nil && current.TrackTime >= next.Delay {
			overflow := current.TrackTime - next.Delay
			next.Delay = 0
			if current.TimeScale != 0 {
				next.TrackTime = overflow / current.TimeScale * next.TimeScale
			}
			mixStart = next
			if next.MixDuration > 0 && overflow < next.MixDuration {
				// the outgoing entry was already advanced above
				next.MixingFrom = current
				next.MixTime = overflow
				mixStart = current
			}
			current.Next = nil
			s.tracks[i] = next
		}

		for e := mixStart; e.MixingFrom != nil; e = e.MixingFrom {
			from := e.MixingFrom
			e.MixTime += d
			from.TrackTime += d * from.TimeScale
			if e.MixTime >= e.MixDuration {
				e.MixingFrom = nil
				break
			}
		}
	}
}

// Apply poses the skeleton from all tracks. Bones and slots keyed by any
// animation are reset to the setup pose first; everything else keeps the
// values set by the caller.
func (s *AnimationState) Apply(skeleton *Skeleton) {
	skeleton.resetAnimated()
	for _, entry := range s.tracks {
		if entry == nil || entry.Delay > 0 {
			continue
		}
		applyEntry(skeleton, entry, 1)
	}
}

func applyEntry(skeleton *Skeleton, entry *TrackEntry, alpha float64) {
	if entry.MixingFrom != nil {
		applyEntry(skeleton, entry.MixingFrom, alpha)
		alpha *= entry.mixAlpha()
	}
	entry.Animation.Apply(skeleton, entry.AnimationTime(), entry.Loop, alpha)
}
