package www

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pycramdb/action"
	"pycramdb/store"
)

const maxBodyBytes = 1 << 20

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	dbOK := h.db.PingContext(r.Context()) == nil
	messaging := false
	if h.msg != nil {
		messaging = h.msg.IsConnected()
	}
	h.jsonOK(w, map[string]any{
		"status":    "ok",
		"database":  dbOK,
		"driver":    h.db.Driver(),
		"messaging": messaging,
	})
}

type variantSchema struct {
	Kind   action.Kind    `json:"kind"`
	Table  string         `json:"table"`
	Fields []action.Field `json:"fields"`
}

func (h *Handlers) apiSchema(w http.ResponseWriter, r *http.Request) {
	variants := h.db.Registry().Variants()
	out := make([]variantSchema, 0, len(variants))
	for _, v := range variants {
		out = append(out, variantSchema{Kind: v.Kind, Table: v.Table, Fields: v.Fields})
	}
	h.jsonOK(w, out)
}

func (h *Handlers) apiListActions(w http.ResponseWriter, r *http.Request) {
	kind := action.Kind(r.URL.Query().Get("kind"))
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	actions, err := h.db.ListActions(r.Context(), kind, limit)
	if err != nil {
		h.apiError(w, err)
		return
	}
	if actions == nil {
		actions = []*store.ActionSummary{}
	}
	h.jsonOK(w, actions)
}

func (h *Handlers) apiInsertAction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.jsonError(w, "read body", http.StatusBadRequest)
		return
	}
	a, err := action.UnmarshalJSON(h.db.Registry(), body)
	if err != nil {
		h.apiError(w, err)
		return
	}
	id, err := h.db.InsertAction(r.Context(), a)
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonStatus(w, http.StatusCreated, map[string]any{"id": id, "kind": a.Kind()})
}

func (h *Handlers) apiGetAction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	a, err := h.db.LoadAction(r.Context(), id)
	if err != nil {
		h.apiError(w, err)
		return
	}
	data, err := action.MarshalJSON(a)
	if err != nil {
		h.apiError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *Handlers) apiDeleteAction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.db.DeleteAction(r.Context(), id); err != nil {
		h.apiError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) apiInsertValue(w http.ResponseWriter, r *http.Request) {
	kind := action.ValueKind(chi.URLParam(r, "kind"))
	v := action.NewValue(kind)
	if v == nil {
		h.jsonError(w, fmt.Sprintf("unknown value kind %q", kind), http.StatusNotFound)
		return
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.jsonError(w, "invalid "+string(kind)+": "+err.Error(), http.StatusBadRequest)
		return
	}
	id, err := h.db.InsertValue(r.Context(), kind, v)
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonStatus(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handlers) apiGetValue(w http.ResponseWriter, r *http.Request) {
	kind := action.ValueKind(chi.URLParam(r, "kind"))
	if action.NewValue(kind) == nil {
		h.jsonError(w, fmt.Sprintf("unknown value kind %q", kind), http.StatusNotFound)
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	v, err := h.db.Resolver().Fetch(r.Context(), kind, id)
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonOK(w, v)
}

func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// apiError maps store and schema errors onto HTTP status codes.
func (h *Handlers) apiError(w http.ResponseWriter, err error) {
	var (
		mismatch *action.SchemaMismatchError
		unknown  *action.UnknownVariantError
		notFound *store.NotFoundError
		corrupt  *store.CorruptDataError
		syntax   *json.SyntaxError
		badType  *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &notFound):
		h.jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &corrupt):
		log.WithError(err).Error("corrupt action data")
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
	case errors.As(err, &mismatch), errors.As(err, &unknown), errors.Is(err, store.ErrEmptyRef),
		errors.As(err, &syntax), errors.As(err, &badType):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		log.WithError(err).Error("api request failed")
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	h.jsonStatus(w, http.StatusOK, data)
}

func (h *Handlers) jsonStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	h.jsonStatus(w, code, map[string]string{"error": msg})
}
