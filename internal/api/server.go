package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/animation"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/logging"
	"github.com/pbaille/scribble/internal/mesh"
	"github.com/pbaille/scribble/internal/store"
	"github.com/pbaille/scribble/internal/story"
	"golang.org/x/net/netutil"
)

// maxDocumentSize bounds story request bodies
const maxDocumentSize = 32 << 20

// Options configures a Server
type Options struct {
	Addr          string
	MaxConns      int
	Mesh          mesh.Options
	PlaybackSpeed int
}

// Server handles HTTP requests for the story API
type Server struct {
	store  *store.Store
	opt    Options
	meshes *meshCaches
}

// New creates a new API server
func New(s *store.Store, opt Options) *Server {
	return &Server{
		store:  s,
		opt:    opt,
		meshes: newMeshCaches(opt.Mesh),
	}
}

// Handler returns the routed API with CORS headers
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Stories
	mux.HandleFunc("GET /stories", s.listStories)
	mux.HandleFunc("POST /stories", s.createStory)
	mux.HandleFunc("GET /stories/{id}", s.getStory)
	mux.HandleFunc("PUT /stories/{id}", s.putStory)
	mux.HandleFunc("DELETE /stories/{id}", s.deleteStory)

	// Objects
	mux.HandleFunc("PATCH /stories/{id}/objects/{oid}", s.patchObject)
	mux.HandleFunc("DELETE /stories/{id}/objects/{oid}", s.deleteObject)
	mux.HandleFunc("POST /stories/{id}/objects/{oid}/duplicate", s.duplicateObject)
	mux.HandleFunc("POST /stories/{id}/arrange", s.arrange)

	// Geometry and export
	mux.HandleFunc("GET /stories/{id}/objects/{oid}/mesh", s.objectMesh)
	mux.HandleFunc("GET /stories/{id}/export.obj", s.exportOBJ)
	mux.HandleFunc("GET /stories/{id}/export.pdf", s.exportPDF)

	// Playback
	mux.HandleFunc("GET /stories/{id}/play", s.play)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run listens on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opt.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln, at most MaxConns at a time
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.opt.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.opt.MaxConns)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logging.Logger().Info("server listening", "addr", ln.Addr().String(), "max_conns", s.opt.MaxConns)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listStories(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	stories, err := s.store.ListStories(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stories": stories,
		"limit":   limit,
		"offset":  offset,
	})
}

// createStory accepts either {"title": "..."} or a full story document
func (s *Server) createStory(w http.ResponseWriter, r *http.Request) {
	st, err := readStory(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	if st.Title == "" {
		st.Title = "untitled"
	}

	if err := s.store.SaveStory(st); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) getStory(w http.ResponseWriter, r *http.Request) {
	st, ok := s.findStory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) putStory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid story id")
		return
	}
	st, err := readStory(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if st.ID == uuid.Nil {
		st.ID = id
	}
	if st.ID != id {
		writeError(w, http.StatusBadRequest, "story id does not match path")
		return
	}

	if err := s.store.SaveStory(st); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.meshes.retain(st)

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) deleteStory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid story id")
		return
	}
	err = s.store.DeleteStory(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "story not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.meshes.drop(id)
	w.WriteHeader(http.StatusNoContent)
}

// findStory resolves the {id} path value, which may be an id prefix, and
// writes the error response itself when it fails
func (s *Server) findStory(w http.ResponseWriter, r *http.Request) (*domain.Story, bool) {
	st, err := s.store.FindStory(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "story not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return st, true
}

func readStory(r *http.Request) (domain.Story, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		return domain.Story{}, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(body) {
		return domain.Story{}, errors.New("invalid request body")
	}
	return story.Unmarshal(body)
}

func playbackSpeed(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("speed"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(animation.Speeds) {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
