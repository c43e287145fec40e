package httptransport

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"piverse/internal/app"
	"piverse/internal/indexer"
	"piverse/internal/types"
)

type Handlers struct {
	chain  ChainReader
	events EventReader
}

func NewHandlers(chain ChainReader, events EventReader) *Handlers {
	return &Handlers{chain: chain, events: events}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"ok": true, "height": h.chain.Height(), "indexer": "disabled"}
		if h.events != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := h.events.Ping(ctx); err != nil {
				resp["ok"] = false
				resp["indexer"] = "down"
				writeJSONStatus(w, http.StatusServiceUnavailable, resp)
				return
			}
			resp["indexer"] = "up"
		}
		writeJSON(w, resp)
	}
}

func (h *Handlers) Account() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.chain.Account(chi.URLParam(r, "addr")))
	}
}

func (h *Handlers) Games() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ids := h.chain.GameIDs()
		if ids == nil {
			ids = []uint64{}
		}
		writeJSON(w, map[string]any{"height": h.chain.Height(), "items": ids})
	}
}

func (h *Handlers) Game() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := gameIDParam(w, r)
		if !ok {
			return
		}
		resp, err := h.chain.Game(id)
		if err != nil {
			writeChainError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *Handlers) Market() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := gameIDParam(w, r)
		if !ok {
			return
		}
		resp, err := h.chain.Market(id)
		if err != nil {
			writeChainError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *Handlers) Prediction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := gameIDParam(w, r)
		if !ok {
			return
		}
		resp, err := h.chain.Prediction(id, chi.URLParam(r, "user"))
		if err != nil {
			writeChainError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

// Events lists archived events. Filters: type, game_id, user, from_height, limit.
func (h *Handlers) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.events == nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "indexer_disabled")
			return
		}
		q := r.URL.Query()
		f := indexer.EventFilter{
			Type:  strings.TrimSpace(q.Get("type")),
			User:  strings.TrimSpace(q.Get("user")),
			Limit: parseLimit(r, 50, 100),
		}
		if v := q.Get("game_id"); v != "" {
			id, err := app.ParseGameID(v)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_game_id")
				return
			}
			f.GameID = &id
		}
		if v := q.Get("from_height"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_from_height")
				return
			}
			f.FromHeight = n
		}
		items, err := h.events.ListEvents(r.Context(), f)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		if items == nil {
			items = []indexer.EventRow{}
		}
		writeJSON(w, map[string]any{"items": items})
	}
}

func gameIDParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := app.ParseGameID(chi.URLParam(r, "game_id"))
	if err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_game_id")
		return 0, false
	}
	return id, true
}

func writeChainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, types.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
