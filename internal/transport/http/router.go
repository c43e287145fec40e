package httptransport

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"piverse/internal/app"
	"piverse/internal/indexer"
)

// ChainReader is the read side of the state machine.
type ChainReader interface {
	Height() int64
	Account(addr string) app.AccountView
	GameIDs() []uint64
	Game(gameID uint64) (app.GameView, error)
	Market(gameID uint64) (app.MarketView, error)
	Prediction(gameID uint64, user string) (app.PredictionView, error)
}

// EventReader serves archived events. It is optional.
type EventReader interface {
	Ping(ctx context.Context) error
	ListEvents(ctx context.Context, f indexer.EventFilter) ([]indexer.EventRow, error)
}

func NewRouter(chain ChainReader, events EventReader, logOut io.Writer) *chi.Mux {
	h := NewHandlers(chain, events)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/healthz", h.Health())

	r.Route("/v1", func(r chi.Router) {
		r.Use(APILogMiddleware(logOut))
		r.Use(chimw.SetHeader("Content-Type", "application/json"))

		r.Get("/accounts/{addr}", h.Account())
		r.Get("/games", h.Games())
		r.Get("/games/{game_id}", h.Game())
		r.Get("/games/{game_id}/market", h.Market())
		r.Get("/games/{game_id}/predictions/{user}", h.Prediction())
		r.Get("/events", h.Events())
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	})
	return r
}
