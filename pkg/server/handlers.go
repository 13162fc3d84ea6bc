package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/schemaflow/pkg/buildinfo"
	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/errors"
	"github.com/matzehuels/schemaflow/pkg/schema"
	"github.com/matzehuels/schemaflow/pkg/session"
)

// OpenRequest is the body of POST /sessions.
type OpenRequest struct {
	Path   string        `json:"path"`
	Schema *schema.Model `json:"schema"`
}

// DragRequest is the body of POST /sessions/{id}/drag.
type DragRequest struct {
	ID       string           `json:"id"`
	Position diagram.Position `json:"position"`
}

// GroupDragRequest is the body of POST /sessions/{id}/group-drag.
type GroupDragRequest struct {
	Group  string         `json:"group"`
	Offset diagram.Offset `json:"offset"`
}

type healthData struct {
	Sessions int            `json:"sessions"`
	Build    buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	success(w, http.StatusOK, healthData{Sessions: s.sessions.Len(), Build: buildinfo.Get()})
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(w, err)
		return
	}
	sess, err := session.Open(r.Context(), req.Path, req.Schema, session.Options{
		Config: s.config,
		Store:  s.store,
		Logger: s.logger,
	})
	if err != nil {
		fail(w, err)
		return
	}
	id := s.sessions.Add(sess)
	s.logger.Info("session opened", "session", id, "file", req.Path)
	success(w, http.StatusCreated, newGraphData(id, sess.Graph(), sess.Warnings()))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	success(w, http.StatusOK, newGraphData(id, sess.Graph(), sess.Warnings()))
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	m, err := schema.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), schema.FormatJSON)
	if err != nil {
		// The session now shows an empty diagram; the client still gets the parse error.
		if _, serr := sess.OnSchemaError(r.Context(), err); serr != nil {
			err = serr
		}
		fail(w, err)
		return
	}
	g, err := sess.OnSchemaChange(r.Context(), m)
	if err != nil {
		fail(w, err)
		return
	}
	success(w, http.StatusOK, newGraphData(id, g, sess.Warnings()))
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req DragRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(w, err)
		return
	}
	g, err := sess.OnDragComplete(r.Context(), req.ID, req.Position)
	if err != nil {
		fail(w, err)
		return
	}
	success(w, http.StatusOK, newGraphData(id, g, nil))
}

func (s *Server) handleGroupDrag(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req GroupDragRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(w, err)
		return
	}
	g, err := sess.OnGroupDragComplete(r.Context(), req.Group, req.Offset)
	if err != nil {
		fail(w, err)
		return
	}
	success(w, http.StatusOK, newGraphData(id, g, nil))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	g, err := sess.ResetLayout(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	success(w, http.StatusOK, newGraphData(id, g, sess.Warnings()))
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(id); err != nil {
		fail(w, err)
		return
	}
	if err := s.sessions.Remove(id); err != nil {
		fail(w, err)
		return
	}
	s.logger.Info("session closed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, string, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		fail(w, err)
		return nil, id, false
	}
	return sess, id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
