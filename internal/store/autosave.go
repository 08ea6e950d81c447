package store

import (
	"github.com/pbaille/scribble/internal/logging"
	"github.com/pbaille/scribble/internal/story"
)

// Autosave writes the repository's story after every edit. Playback ticks
// are not persisted. Save errors are logged. The returned function stops
// saving.
func Autosave(s *Store, r *story.Repository) (stop func()) {
	return r.Changes.Subscribe(func(ev story.Event) {
		if ev.Kind == story.FramesAdvanced {
			return
		}
		if err := s.SaveStory(r.Story()); err != nil {
			logging.Logger().Error("autosave failed", "story", r.ID(), "err", err)
		}
	})
}
