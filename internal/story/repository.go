// Package story is the aggregate root of a document: every mutation of the
// story's objects goes through a Repository, which publishes a change event
// for observers such as persistence and playback streams.
package story

import (
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/animation"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
	"github.com/pbaille/scribble/internal/notify"
)

// ErrObjectNotFound is returned when no object has the requested id.
var ErrObjectNotFound = errors.New("object not found")

// duplicateOffset is added to x and y of a duplicated object's position.
const duplicateOffset = 0.01

// EventKind tells observers what changed.
type EventKind int

const (
	ObjectAdded EventKind = iota
	ObjectRemoved
	ObjectChanged
	StoryChanged
	// FramesAdvanced is published once per playback tick.
	FramesAdvanced
)

// Event describes one change. ObjectID is zero for story-wide events.
type Event struct {
	Kind     EventKind
	ObjectID uuid.UUID
}

// Repository owns a Story. It is not safe for concurrent use; drive it from
// the mutation loop.
type Repository struct {
	story   domain.Story
	Changes notify.Hub[Event]
}

// NewRepository takes ownership of s.
func NewRepository(s domain.Story) *Repository {
	if s.Objects == nil {
		s.Objects = []domain.Object{}
	}
	return &Repository{story: s}
}

// Story returns a deep copy of the document.
func (r *Repository) Story() domain.Story { return r.story.Clone() }

// ID returns the story identity.
func (r *Repository) ID() uuid.UUID { return r.story.ID }

// Title returns the story title.
func (r *Repository) Title() string { return r.story.Title }

// SetTitle renames the story.
func (r *Repository) SetTitle(title string) {
	r.story.Title = title
	r.publish(StoryChanged, uuid.Nil)
}

// Len returns the number of objects.
func (r *Repository) Len() int { return len(r.story.Objects) }

// Objects returns deep copies of the objects in order.
func (r *Repository) Objects() []domain.Object { return r.Story().Objects }

// Get returns a copy of the object with id.
func (r *Repository) Get(id uuid.UUID) (domain.Object, error) {
	i := r.index(id)
	if i < 0 {
		return domain.Object{}, ErrObjectNotFound
	}
	return r.story.Objects[i].Clone(), nil
}

// Append adds o at the end of the story.
func (r *Repository) Append(o domain.Object) {
	r.story.Objects = append(r.story.Objects, o.Clone())
	r.publish(ObjectAdded, o.ID)
}

// Remove deletes the object with id.
func (r *Repository) Remove(id uuid.UUID) error {
	i := r.index(id)
	if i < 0 {
		return ErrObjectNotFound
	}
	r.story.Objects = slices.Delete(r.story.Objects, i, i+1)
	r.publish(ObjectRemoved, id)
	return nil
}

// Replace swaps in o for the object with the same id.
func (r *Repository) Replace(o domain.Object) error {
	i := r.index(o.ID)
	if i < 0 {
		return ErrObjectNotFound
	}
	r.story.Objects[i] = o.Clone()
	r.publish(ObjectChanged, o.ID)
	return nil
}

// Update applies fn to the stored object in place. fn reports whether it
// changed anything; an event is only published when it did.
func (r *Repository) Update(id uuid.UUID, fn func(o *domain.Object) bool) error {
	i := r.index(id)
	if i < 0 {
		return ErrObjectNotFound
	}
	if fn(&r.story.Objects[i]) {
		r.publish(ObjectChanged, id)
	}
	return nil
}

// Rename sets the name of an object.
func (r *Repository) Rename(id uuid.UUID, name string) error {
	return r.Update(id, func(o *domain.Object) bool {
		o.Name = name
		return true
	})
}

// Duplicate appends a copy of an object with fresh identities, shifted
// slightly on x and y so it does not hide the original.
func (r *Repository) Duplicate(id uuid.UUID) (domain.Object, error) {
	i := r.index(id)
	if i < 0 {
		return domain.Object{}, ErrObjectNotFound
	}
	d := r.story.Objects[i].Duplicate()
	d.Position = d.Position.Add(geom.V3(duplicateOffset, duplicateOffset, 0))
	r.Append(d)
	return d, nil
}

// Reposition places one object.
func (r *Repository) Reposition(id uuid.UUID, pos geom.Vec3, orient geom.Quat) error {
	return r.Update(id, func(o *domain.Object) bool {
		o.Position = pos
		o.Orientation = orient
		return true
	})
}

// RepositionAll moves the whole scene so the centroid of the object
// positions lands on anchor. Objects keep their offsets from the centroid
// and all take orient.
func (r *Repository) RepositionAll(anchor geom.Vec3, orient geom.Quat) {
	if len(r.story.Objects) == 0 {
		return
	}
	pos := make([]geom.Vec3, len(r.story.Objects))
	for i, o := range r.story.Objects {
		pos[i] = o.Position
	}
	center := geom.Centroid(pos)
	for i := range r.story.Objects {
		o := &r.story.Objects[i]
		o.Position = anchor.Add(o.Position.Sub(center))
		o.Orientation = orient
	}
	r.publish(StoryChanged, uuid.Nil)
}

// SetActiveFrame selects a frame of an object. An out of range index is
// ignored.
func (r *Repository) SetActiveFrame(id uuid.UUID, index int) error {
	return r.Update(id, func(o *domain.Object) bool {
		return animation.Select(o, index)
	})
}

// EditFrames runs a frame management operation on an object. index is the
// target of animation.OpSelect.
func (r *Repository) EditFrames(id uuid.UUID, op animation.FrameOp, index int) error {
	return r.Update(id, func(o *domain.Object) bool {
		return animation.Apply(o, op, index)
	})
}

// SetDirection sets the bounce direction of an object. Anything other than
// -1 is stored as +1.
func (r *Repository) SetDirection(id uuid.UUID, dir int) error {
	if dir != -1 {
		dir = 1
	}
	return r.Update(id, func(o *domain.Object) bool {
		o.Direction = dir
		return true
	})
}

// SetPlayback sets the playback policy of an object.
func (r *Repository) SetPlayback(id uuid.UUID, s domain.PlaybackSetting) error {
	if !s.Valid() {
		s = domain.PlaybackLoop
	}
	return r.Update(id, func(o *domain.Object) bool {
		o.PlaybackSetting = s
		return true
	})
}

// Advance moves every object one playback step.
func (r *Repository) Advance(rnd *rand.Rand) {
	for i := range r.story.Objects {
		animation.Advance(&r.story.Objects[i], rnd)
	}
	r.publish(FramesAdvanced, uuid.Nil)
}

// ActiveFrames returns the active frame index of every object by id.
func (r *Repository) ActiveFrames() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(r.story.Objects))
	for _, o := range r.story.Objects {
		out[o.ID] = o.ActiveFrameIndex
	}
	return out
}

func (r *Repository) index(id uuid.UUID) int {
	return slices.IndexFunc(r.story.Objects, func(o domain.Object) bool {
		return o.ID == id
	})
}

func (r *Repository) publish(k EventKind, id uuid.UUID) {
	r.Changes.Publish(Event{Kind: k, ObjectID: id})
}
