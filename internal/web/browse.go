package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"churchcms/internal/aggregate"
	"churchcms/internal/browse"
	"churchcms/internal/content"
	"churchcms/internal/facet"
	"churchcms/internal/model"
)

// browseQuery is the query string of GET /api/{kind}. Filters arrive as
// repeated f=key:value pairs.
type browseQuery struct {
	Q       string   `schema:"q"`
	Tab     string   `schema:"tab"`
	Sort    string   `schema:"sort"`
	Dir     string   `schema:"dir"`
	From    string   `schema:"from"`
	To      string   `schema:"to"`
	Count   int      `schema:"count"`
	Filters []string `schema:"f"`
}

// state overlays the query on the screen's defaults. The result is
// normalized by Screen.Build.
func (q browseQuery) state(base facet.State) facet.State {
	st := base
	st.Search = q.Q
	if q.Tab != "" {
		st.Tab = q.Tab
	}
	if q.Sort != "" {
		st.SortField = q.Sort
	}
	if q.Dir != "" {
		st.SortDirection = facet.Direction(strings.ToLower(q.Dir))
	}
	st.DateFrom = q.From
	st.DateTo = q.To
	for _, f := range q.Filters {
		key, value, ok := strings.Cut(f, ":")
		if !ok {
			continue
		}
		st = st.WithFilter(key, value)
	}
	st.DisplayCount = q.Count
	return st
}

type aggregatesResponse struct {
	Kind       model.Kind            `json:"kind"`
	By         string                `json:"by"`
	Aggregates []aggregate.Aggregate `json:"aggregates"`
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return
	}
	var q browseQuery
	if err := s.decoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}

	switch kind {
	case model.KindStudies:
		serveBrowse(s, w, s.screens.Studies, s.lib.Studies(), q)
	case model.KindMessages:
		serveBrowse(s, w, s.screens.Messages, s.lib.Messages(), q)
	case model.KindVideos:
		serveBrowse(s, w, s.screens.Videos, s.lib.Videos(), q)
	case model.KindEvents:
		serveBrowse(s, w, s.screens.Events, s.lib.Events(), q)
	}
}

func serveBrowse[T any](s *Server, w http.ResponseWriter, sc browse.Screen[T], items []T, q browseQuery) {
	res := sc.Build(items, q.state(sc.NewState()))
	if s.metrics != nil {
		s.metrics.RecordView(string(sc.Kind), res.Empty)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return
	}
	by := r.URL.Query().Get("by")
	order := r.URL.Query().Get("order")

	var (
		aggs  []aggregate.Aggregate
		known bool
	)
	switch kind {
	case model.KindStudies:
		aggs, known = s.screens.Studies.Aggregates(s.lib.Studies(), by)
	case model.KindMessages:
		aggs, known = s.screens.Messages.Aggregates(s.lib.Messages(), by)
	case model.KindVideos:
		aggs, known = s.screens.Videos.Aggregates(s.lib.Videos(), by)
	case model.KindEvents:
		aggs, known = s.screens.Events.Aggregates(s.lib.Events(), by)
	}
	if !known {
		writeError(w, http.StatusBadRequest, "unknown aggregate field "+by)
		return
	}

	switch order {
	case "name":
		aggregate.SortByName(aggs)
	case "count":
		aggregate.SortByCount(aggs)
	}
	writeJSON(w, http.StatusOK, aggregatesResponse{Kind: kind, By: by, Aggregates: aggs})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return
	}
	id := chi.URLParam(r, "id")

	var (
		rec any
		err error
	)
	switch kind {
	case model.KindStudies:
		rec, err = content.Get[model.Study](s.lib, id)
	case model.KindMessages:
		rec, err = content.Get[model.Message](s.lib, id)
	case model.KindVideos:
		rec, err = content.Get[model.Video](s.lib, id)
	case model.KindEvents:
		rec, err = content.Get[model.Event](s.lib, id)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
