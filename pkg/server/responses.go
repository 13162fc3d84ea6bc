package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/errors"
)

// Response is the envelope of every bridge response.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GraphData is the payload of every event response.
type GraphData struct {
	ID       string         `json:"id,omitempty"`
	Graph    *diagram.Graph `json:"graph"`
	Warnings []string       `json:"warnings,omitempty"`
}

func newGraphData(id string, g *diagram.Graph, warnings []error) GraphData {
	if g.Nodes == nil {
		g.Nodes = []diagram.Node{}
	}
	if g.Edges == nil {
		g.Edges = []diagram.Edge{}
	}
	out := GraphData{ID: id, Graph: g}
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	return out
}

func success(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Status: "success", Data: data})
}

func fail(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), Response{
		Status:  "error",
		Message: errors.UserMessage(err),
		Error:   string(code),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeSchemaInvalid, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeStorageRead, errors.ErrCodeStorageWrite:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
