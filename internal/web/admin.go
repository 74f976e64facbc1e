package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"churchcms/internal/content"
	"churchcms/internal/model"
)

// maxBodyBytes bounds admin request bodies.
const maxBodyBytes = 1 << 20

type refreshResponse struct {
	Counts map[model.Kind]int `json:"counts"`
	Error  string             `json:"error,omitempty"`
}

// handleRefresh reloads the collection files and feeds. A failing feed
// still answers with the refreshed counts, under 502.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh is not configured")
		return
	}
	if err := s.refresher.Refresh(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, refreshResponse{Counts: s.lib.Counts(), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Counts: s.lib.Counts()})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return
	}
	switch kind {
	case model.KindStudies:
		createRecord[model.Study](s, w, r)
	case model.KindMessages:
		createRecord[model.Message](s, w, r)
	case model.KindVideos:
		createRecord[model.Video](s, w, r)
	case model.KindEvents:
		createRecord[model.Event](s, w, r)
	}
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return
	}
	switch kind {
	case model.KindStudies:
		updateRecord[model.Study](s, w, r)
	case model.KindMessages:
		updateRecord[model.Message](s, w, r)
	case model.KindVideos:
		updateRecord[model.Video](s, w, r)
	case model.KindEvents:
		updateRecord[model.Event](s, w, r)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return
	}
	id := chi.URLParam(r, "id")

	var err error
	switch kind {
	case model.KindStudies:
		err = content.Delete[model.Study](s.lib, id)
	case model.KindMessages:
		err = content.Delete[model.Message](s.lib, id)
	case model.KindVideos:
		err = content.Delete[model.Video](s.lib, id)
	case model.KindEvents:
		err = content.Delete[model.Event](s.lib, id)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func createRecord[T content.Record](s *Server, w http.ResponseWriter, r *http.Request) {
	rec, err := decodeRecord[T](w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := content.Create(s.lib, rec)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func updateRecord[T content.Record](s *Server, w http.ResponseWriter, r *http.Request) {
	rec, err := decodeRecord[T](w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := content.Update(s.lib, chi.URLParam(r, "id"), rec)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func decodeRecord[T content.Record](w http.ResponseWriter, r *http.Request) (T, error) {
	var rec T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return rec, fmt.Errorf("invalid JSON body: %w", err)
	}
	return rec, nil
}
