package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/httputil"
	"github.com/getmockd/schemafaker/pkg/store"
)

// HeaderTotalCount carries the number of matching items before paging.
const HeaderTotalCount = "X-Total-Count"

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /_reset", s.handleReset)
	mux.Handle("GET /_events", s.events)

	for _, res := range s.resources {
		base := "/" + res.col.Name()
		mux.HandleFunc("GET "+base, s.handleList(res))
		mux.HandleFunc("POST "+base, s.handleCreate(res))
		mux.HandleFunc("GET "+base+"/{key}", s.handleGet(res))
		mux.HandleFunc("PUT "+base+"/{key}", s.handleReplace(res))
		mux.HandleFunc("PATCH "+base+"/{key}", s.handlePatch(res))
		mux.HandleFunc("DELETE "+base+"/{key}", s.handleDelete(res))
	}
	return mux
}

// writeError renders err as an ErrorResponse with its status code.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := store.ToErrorResponse(unwrapStoreError(err))
	if resp.StatusCode >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	httputil.WriteJSON(w, resp.StatusCode, resp)
}

// unwrapStoreError finds the typed store error in err's chain, if any.
func unwrapStoreError(err error) error {
	var sc store.StatusCodeError
	if errors.As(err, &sc) {
		return sc
	}
	return err
}

func (s *Server) handleList(res *resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := res.col.ParseQuery(r.URL.Query())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		items, total, err := res.col.List(q)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set(HeaderTotalCount, strconv.Itoa(total))
		httputil.WriteOK(w, items)
	}
}

func (s *Server) handleGet(res *resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := res.col.Get(r.PathValue("key"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		httputil.WriteOK(w, item)
	}
}

// readBody decodes and validates a request body against v, returning it as
// a JSON object.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, res *resource, v *bodyValidator) (map[string]any, error) {
	body, err := httputil.ReadJSON(w, r, s.cfg.MaxBodySize)
	switch {
	case errors.Is(err, httputil.ErrBodyTooLarge):
		return nil, &store.PayloadTooLargeError{MaxSize: s.cfg.MaxBodySize}
	case err != nil:
		return nil, &store.ValidationError{
			Resource: res.col.Name(),
			Fields:   []store.FieldError{{Message: "invalid JSON body: " + err.Error()}},
		}
	}
	if err := v.Validate(body); err != nil {
		return nil, err
	}
	return body.(map[string]any), nil
}

// handleCreate overlays the body on a generated template. An integer id the
// client did not send is assigned by the collection.
func (s *Server) handleCreate(res *resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := s.readBody(w, r, res, res.partial)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		item, err := s.template(res.col.Schema())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if _, sent := body[store.IDField]; !sent && res.col.AssignsIDs() {
			item.Set(store.IDField, nil)
		}
		overlay(item, s.coerce.object(res.plan, body))

		created, err := res.col.Create(item, true)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		location := ""
		if key := res.col.KeyField(); key != "" {
			if v, _ := created.Get(key); v != nil {
				location = "/" + res.col.Name() + "/" + fmt.Sprint(generator.Plain(v))
			}
		}
		httputil.WriteCreated(w, location, created)
	}
}

// handleReplace validates a full body. Optional fields left out become null
// and defaulted fields left out take their default.
func (s *Server) handleReplace(res *resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := s.readBody(w, r, res, res.full)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		in := s.coerce.object(res.plan, body)
		item := generator.NewInstance(len(res.plan.Fields))
		for _, f := range res.plan.Fields {
			name := f.Field.Name
			if v, ok := in.Get(name); ok {
				item.Set(name, v)
				continue
			}
			if f.Field.HasDefault {
				item.Set(name, s.coerce.defaultValue(f.Type, f.Field.Default))
				continue
			}
			item.Set(name, nil)
		}

		replaced, err := res.col.Replace(r.PathValue("key"), item)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		httputil.WriteOK(w, replaced)
	}
}

func (s *Server) handlePatch(res *resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := s.readBody(w, r, res, res.partial)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		patched, err := res.col.Patch(r.PathValue("key"), s.coerce.object(res.plan, body))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		httputil.WriteOK(w, patched)
	}
}

func (s *Server) handleDelete(res *resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := res.col.Delete(r.PathValue("key")); err != nil {
			s.writeError(w, r, err)
			return
		}
		httputil.WriteNoContent(w)
	}
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, s.doc)
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      string                `json:"status"`
	Uptime      string                `json:"uptime"`
	Seed        uint64                `json:"seed"`
	Resources   map[string]int        `json:"resources"`
	TotalItems  int                   `json:"totalItems"`
	Subscribers int                   `json:"subscribers"`
	Metrics     store.MetricsSnapshot `json:"metrics"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	counts := make(map[string]int, len(s.resources))
	for _, res := range s.resources {
		counts[res.col.Name()] = res.col.Len()
	}
	httputil.WriteOK(w, HealthResponse{
		Status:      "ok",
		Uptime:      s.Uptime().Truncate(time.Second).String(),
		Seed:        s.session.Seed(),
		Resources:   counts,
		TotalItems:  s.store.TotalItems(),
		Subscribers: s.events.Subscribers(),
		Metrics:     s.metrics.Snapshot(),
	})
}

// handleReset restores seed data, for one resource when ?resource= is set
// and for all otherwise.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	reset, err := s.store.Reset(r.URL.Query().Get("resource"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, map[string]any{"reset": reset})
}

// overlay sets every field of src on dst.
func overlay(dst, src *generator.Instance) {
	for _, k := range src.Keys() {
		v, _ := src.Get(k)
		dst.Set(k, v)
	}
}
