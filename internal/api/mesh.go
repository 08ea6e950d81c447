package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/export"
	"github.com/pbaille/scribble/internal/logging"
	"github.com/pbaille/scribble/internal/mesh"
)

// MeshResponse carries the baked buffers of one object frame
type MeshResponse struct {
	ObjectID uuid.UUID         `json:"objectId"`
	Frame    int               `json:"frame"`
	Preview  bool              `json:"preview"`
	Strokes  []mesh.StrokeMesh `json:"strokes"`
}

func (s *Server) objectMesh(w http.ResponseWriter, r *http.Request) {
	st, ok := s.findStory(w, r)
	if !ok {
		return
	}
	oid, err := uuid.Parse(r.PathValue("oid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid object id")
		return
	}
	i := slices.IndexFunc(st.Objects, func(o domain.Object) bool { return o.ID == oid })
	if i < 0 {
		writeError(w, http.StatusNotFound, "object not found")
		return
	}
	o := st.Objects[i]

	frame := o.ActiveFrameIndex
	if v := r.URL.Query().Get("frame"); v != "" {
		if frame, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid frame")
			return
		}
	}
	if frame < 0 || frame >= len(o.Frames) {
		writeError(w, http.StatusNotFound, "frame out of range")
		return
	}

	preview := r.URL.Query().Get("preview") == "1"
	cache := s.meshes.sync(*st, preview)
	strokes := make([]mesh.StrokeMesh, 0, len(o.Frames[frame].Strokes))
	for _, stroke := range o.Frames[frame].Strokes {
		if sm := cache.Get(stroke); !sm.Mesh.IsEmpty() {
			strokes = append(strokes, sm)
		}
	}

	writeJSON(w, http.StatusOK, MeshResponse{
		ObjectID: oid,
		Frame:    frame,
		Preview:  preview,
		Strokes:  strokes,
	})
}

// exportOBJ bakes the first frame of every object, or ?frame=N
func (s *Server) exportOBJ(w http.ResponseWriter, r *http.Request) {
	st, ok := s.findStory(w, r)
	if !ok {
		return
	}
	opt := export.Options{Frame: 0, Mesh: s.opt.Mesh}
	if v := r.URL.Query().Get("frame"); v == "active" {
		opt.Frame = export.ActiveFrame
	} else if v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid frame")
			return
		}
		opt.Frame = n
	}

	sc, err := export.Bake(r.Context(), *st, opt)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, r.Context().Err()) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := sc.WriteOBJ(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeFile(w, &buf, "model/obj", attachment(st.Title, "obj"))
}

func (s *Server) exportPDF(w http.ResponseWriter, r *http.Request) {
	st, ok := s.findStory(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, *st); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeFile(w, &buf, "application/pdf", attachment(st.Title, "pdf"))
}

// writeFile sends a fully rendered export
func writeFile(w http.ResponseWriter, buf *bytes.Buffer, contentType, disposition string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.Logger().Warn("export write failed", "error", err)
	}
}

func attachment(title, ext string) string {
	if title == "" {
		title = "story"
	}
	return fmt.Sprintf("attachment; filename=%q", title+"."+ext)
}
