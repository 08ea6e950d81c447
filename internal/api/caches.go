package api

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/mesh"
)

// storyMeshes holds the tube and preview caches of one story
type storyMeshes struct {
	tube    *mesh.Cache
	preview *mesh.Cache
}

// meshCaches keeps baked stroke meshes per story. Entries are evicted when
// the story is deleted or when its strokes change.
type meshCaches struct {
	mu      sync.Mutex
	opt     mesh.Options
	stories map[uuid.UUID]*storyMeshes
}

func newMeshCaches(opt mesh.Options) *meshCaches {
	return &meshCaches{opt: opt, stories: make(map[uuid.UUID]*storyMeshes)}
}

// sync evicts the strokes st no longer holds and returns its cache
func (c *meshCaches) sync(st domain.Story, preview bool) *mesh.Cache {
	c.mu.Lock()
	sm, ok := c.stories[st.ID]
	if !ok {
		previewOpt := c.opt
		previewOpt.Preview = true
		sm = &storyMeshes{tube: mesh.NewCache(c.opt), preview: mesh.NewCache(previewOpt)}
		c.stories[st.ID] = sm
	}
	c.mu.Unlock()

	keep := strokeIDs(st)
	sm.tube.Retain(keep)
	sm.preview.Retain(keep)
	if preview {
		return sm.preview
	}
	return sm.tube
}

// retain evicts the strokes st no longer holds, if st has been cached
func (c *meshCaches) retain(st domain.Story) {
	c.mu.Lock()
	sm, ok := c.stories[st.ID]
	c.mu.Unlock()
	if !ok {
		return
	}
	keep := strokeIDs(st)
	sm.tube.Retain(keep)
	sm.preview.Retain(keep)
}

func (c *meshCaches) drop(id uuid.UUID) {
	c.mu.Lock()
	delete(c.stories, id)
	c.mu.Unlock()
}

// Len returns the number of cached stroke meshes across all stories
func (c *meshCaches) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, sm := range c.stories {
		n += sm.tube.Len() + sm.preview.Len()
	}
	return n
}

func strokeIDs(st domain.Story) map[uuid.UUID]struct{} {
	keep := make(map[uuid.UUID]struct{})
	for _, o := range st.Objects {
		for _, f := range o.Frames {
			for _, s := range f.Strokes {
				keep[s.ID] = struct{}{}
			}
		}
	}
	return keep
}
