package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/animation"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
	"github.com/pbaille/scribble/internal/story"
)

// ObjectPatch lists the object fields a PATCH changes. Absent fields are
// left alone; FrameOp runs after ActiveFrame.
type ObjectPatch struct {
	Name            *string                 `json:"name,omitempty"`
	PlaybackSetting *domain.PlaybackSetting `json:"playbackSetting,omitempty"`
	Direction       *int                    `json:"direction,omitempty"`
	ActiveFrame     *int                    `json:"activeFrame,omitempty"`
	FrameOp         *animation.FrameOp      `json:"frameOp,omitempty"`
	Position        *geom.Vec3              `json:"position,omitempty"`
	Orientation     *geom.Quat              `json:"orientation,omitempty"`
}

// ArrangeRequest moves the whole scene; a missing orientation faces the origin
type ArrangeRequest struct {
	Anchor      geom.Vec3  `json:"anchor"`
	Orientation *geom.Quat `json:"orientation,omitempty"`
}

func (s *Server) patchObject(w http.ResponseWriter, r *http.Request) {
	var p ObjectPatch
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.FrameOp != nil {
		if _, err := animation.ParseFrameOp(string(*p.FrameOp)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	s.editObject(w, r, http.StatusOK, func(repo *story.Repository, id uuid.UUID) (uuid.UUID, error) {
		return id, applyPatch(repo, id, p)
	})
}

func applyPatch(repo *story.Repository, id uuid.UUID, p ObjectPatch) error {
	o, err := repo.Get(id)
	if err != nil {
		return err
	}
	var errs []error
	if p.Name != nil {
		errs = append(errs, repo.Rename(id, *p.Name))
	}
	if p.PlaybackSetting != nil {
		errs = append(errs, repo.SetPlayback(id, *p.PlaybackSetting))
	}
	if p.Direction != nil {
		errs = append(errs, repo.SetDirection(id, *p.Direction))
	}
	if p.ActiveFrame != nil {
		errs = append(errs, repo.SetActiveFrame(id, *p.ActiveFrame))
	}
	if p.FrameOp != nil {
		// select keeps whatever frame is active after ActiveFrame
		cur, err := repo.Get(id)
		if err != nil {
			return err
		}
		errs = append(errs, repo.EditFrames(id, *p.FrameOp, cur.ActiveFrameIndex))
	}
	if p.Position != nil || p.Orientation != nil {
		pos, orient := o.Position, o.Orientation
		if p.Position != nil {
			pos = *p.Position
		}
		if p.Orientation != nil {
			orient = p.Orientation.Normalize()
		}
		errs = append(errs, repo.Reposition(id, pos, orient))
	}
	return errors.Join(errs...)
}

func (s *Server) deleteObject(w http.ResponseWriter, r *http.Request) {
	s.editObject(w, r, http.StatusNoContent, func(repo *story.Repository, id uuid.UUID) (uuid.UUID, error) {
		return uuid.Nil, repo.Remove(id)
	})
}

func (s *Server) duplicateObject(w http.ResponseWriter, r *http.Request) {
	s.editObject(w, r, http.StatusCreated, func(repo *story.Repository, id uuid.UUID) (uuid.UUID, error) {
		d, err := repo.Duplicate(id)
		return d.ID, err
	})
}

func (s *Server) arrange(w http.ResponseWriter, r *http.Request) {
	var req ArrangeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, ok := s.findStory(w, r)
	if !ok {
		return
	}
	orient := geom.FacingOrientation(req.Anchor, geom.Vec3{})
	if req.Orientation != nil {
		orient = req.Orientation.Normalize()
	}
	repo := story.NewRepository(*st)
	repo.RepositionAll(req.Anchor, orient)
	saved := repo.Story()
	if err := s.store.SaveStory(saved); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// editObject runs fn on the story's repository, saves it and responds with
// the object whose id fn returns, or no body when that id is nil
func (s *Server) editObject(w http.ResponseWriter, r *http.Request, status int, fn func(repo *story.Repository, id uuid.UUID) (uuid.UUID, error)) {
	st, ok := s.findStory(w, r)
	if !ok {
		return
	}
	oid, err := uuid.Parse(r.PathValue("oid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid object id")
		return
	}

	repo := story.NewRepository(*st)
	result, err := fn(repo, oid)
	if errors.Is(err, story.ErrObjectNotFound) {
		writeError(w, http.StatusNotFound, "object not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	saved := repo.Story()
	if err := s.store.SaveStory(saved); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.meshes.retain(saved)

	if result == uuid.Nil {
		w.WriteHeader(status)
		return
	}
	o, err := repo.Get(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, status, o)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}
