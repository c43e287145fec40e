package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"piverse/internal/app"
	"piverse/internal/indexer"
	"piverse/internal/state"
	"piverse/internal/types"
)

type fakeChain struct {
	games map[uint64]state.Game
}

func (f *fakeChain) Height() int64 { return 12 }

func (f *fakeChain) Account(addr string) app.AccountView {
	return app.AccountView{Addr: addr, Balance: 42}
}

func (f *fakeChain) GameIDs() []uint64 {
	var ids []uint64
	for id := range f.games {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeChain) Game(id uint64) (app.GameView, error) {
	g, ok := f.games[id]
	if !ok {
		return app.GameView{}, errorsmod.Wrapf(types.ErrNotFound, "game %d", id)
	}
	return app.GameView{Game: g, GameVaultBalance: g.Jackpot}, nil
}

func (f *fakeChain) Market(id uint64) (app.MarketView, error) {
	g, ok := f.games[id]
	if !ok {
		return app.MarketView{}, errorsmod.Wrapf(types.ErrNotFound, "game %d", id)
	}
	return app.MarketView{
		GameID:           id,
		Status:           g.MarketStatus,
		PoolFail:         g.PoolFail,
		PoolBreach:       g.PoolBreach,
		Total:            sdkmath.NewIntFromUint64(g.PoolFail + g.PoolBreach),
		FailMultiplier:   "4.000000000000000000",
		BreachMultiplier: "1.333333333333333333",
	}, nil
}

func (f *fakeChain) Prediction(id uint64, user string) (app.PredictionView, error) {
	if user == "overflow" {
		return app.PredictionView{}, errorsmod.Wrap(types.ErrOverflow, "payout")
	}
	if _, ok := f.games[id]; !ok || user != "alice" {
		return app.PredictionView{}, errorsmod.Wrap(types.ErrNotFound, "prediction")
	}
	return app.PredictionView{
		Prediction:   state.Prediction{User: user, GameID: id, Amount: 100, Side: state.SideFail},
		PayoutIfWins: 400,
	}, nil
}

type fakeEvents struct {
	pingErr error
	last    indexer.EventFilter
	rows    []indexer.EventRow
}

func (f *fakeEvents) Ping(context.Context) error { return f.pingErr }

func (f *fakeEvents) ListEvents(_ context.Context, filter indexer.EventFilter) ([]indexer.EventRow, error) {
	f.last = filter
	return f.rows, nil
}

func newTestChain() *fakeChain {
	return &fakeChain{games: map[uint64]state.Game{
		1: {GameID: 1, IsActive: true, Jackpot: 80, PoolFail: 100, PoolBreach: 300, MarketStatus: state.MarketActive},
	}}
}

func do(t *testing.T, h http.Handler, path string) (*http.Response, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	res := rec.Result()
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return res, body
}

func TestRouter_ChainReads(t *testing.T) {
	r := NewRouter(newTestChain(), nil, io.Discard)

	res, body := do(t, r, "/v1/accounts/alice")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "alice", body["addr"])
	require.EqualValues(t, 42, body["balance"])

	_, body = do(t, r, "/v1/games")
	require.Equal(t, []any{float64(1)}, body["items"])

	res, body = do(t, r, "/v1/games/1")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.EqualValues(t, 80, body["jackpot"])
	require.EqualValues(t, 80, body["gameVaultBalance"])

	res, body = do(t, r, "/v1/games/1/market")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "400", body["total"])
	require.Equal(t, "4.000000000000000000", body["failMultiplier"])

	res, body = do(t, r, "/v1/games/1/predictions/alice")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.EqualValues(t, 400, body["payoutIfWins"])
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
}

func TestRouter_ErrorMapping(t *testing.T) {
	r := NewRouter(newTestChain(), nil, io.Discard)

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/v1/games/9", http.StatusNotFound, "not_found"},
		{"/v1/games/abc", http.StatusBadRequest, "invalid_game_id"},
		{"/v1/games/-1/market", http.StatusBadRequest, "invalid_game_id"},
		{"/v1/games/9/market", http.StatusNotFound, "not_found"},
		{"/v1/games/1/predictions/bob", http.StatusNotFound, "not_found"},
		{"/v1/games/1/predictions/overflow", http.StatusInternalServerError, "internal_error"},
		{"/v1/events", http.StatusServiceUnavailable, "indexer_disabled"},
		{"/nope", http.StatusNotFound, "not_found"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			res, body := do(t, r, tc.path)
			require.Equal(t, tc.status, res.StatusCode)
			require.Equal(t, tc.code, body["error"])
		})
	}
}

func TestRouter_Health(t *testing.T) {
	res, body := do(t, NewRouter(newTestChain(), nil, io.Discard), "/healthz")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, true, body["ok"])
	require.Equal(t, "disabled", body["indexer"])
	require.EqualValues(t, 12, body["height"])

	res, body = do(t, NewRouter(newTestChain(), &fakeEvents{}, io.Discard), "/healthz")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "up", body["indexer"])

	res, body = do(t, NewRouter(newTestChain(), &fakeEvents{pingErr: errors.New("down")}, io.Discard), "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.Equal(t, false, body["ok"])
	require.Equal(t, "down", body["indexer"])
}

func TestRouter_EventsFilter(t *testing.T) {
	gid := uint64(1)
	events := &fakeEvents{rows: []indexer.EventRow{{ID: "01J", Height: 3, Type: types.EventTypeAttempt, GameID: &gid}}}
	r := NewRouter(newTestChain(), events, io.Discard)

	res, body := do(t, r, "/v1/events?type=AttemptEvent&game_id=1&user=alice&from_height=2&limit=500")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, body["items"], 1)
	require.Equal(t, types.EventTypeAttempt, events.last.Type)
	require.Equal(t, "alice", events.last.User)
	require.Equal(t, int64(2), events.last.FromHeight)
	require.Equal(t, 100, events.last.Limit)
	require.NotNil(t, events.last.GameID)
	require.Equal(t, uint64(1), *events.last.GameID)

	_, _ = do(t, r, "/v1/events?game_id=18446744073709551615")
	require.NotNil(t, events.last.GameID)
	require.Equal(t, uint64(math.MaxUint64), *events.last.GameID)

	res, body = do(t, r, "/v1/events?game_id=x")
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, "invalid_game_id", body["error"])

	res, body = do(t, r, "/v1/events?from_height=-4")
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, "invalid_from_height", body["error"])

	events.rows = nil
	_, body = do(t, r, "/v1/events")
	require.Equal(t, []any{}, body["items"])
	require.Equal(t, 50, events.last.Limit)
}
