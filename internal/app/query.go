package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"

	"piverse/internal/state"
	"piverse/internal/types"
)

type AccountView struct {
	Addr    string `json:"addr"`
	Balance uint64 `json:"balance"`
}

type GameView struct {
	state.Game
	GameVaultBalance   uint64 `json:"gameVaultBalance"`
	MarketVaultBalance uint64 `json:"marketVaultBalance"`
}

type MarketView struct {
	GameID           uint64             `json:"gameId"`
	Status           state.MarketStatus `json:"status"`
	PoolFail         uint64             `json:"poolFail"`
	PoolBreach       uint64             `json:"poolBreach"`
	Total            sdkmath.Int        `json:"total"`
	FailMultiplier   string             `json:"failMultiplier"`
	BreachMultiplier string             `json:"breachMultiplier"`
	VaultBalance     uint64             `json:"vaultBalance"`
}

type PredictionView struct {
	state.Prediction
	// PayoutIfWins is what a claim would pay if the prediction's side wins
	// with the current pools.
	PayoutIfWins uint64 `json:"payoutIfWins"`
}

func (a *PiverseApp) Height() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.Height
}

func (a *PiverseApp) Account(addr string) AccountView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AccountView{Addr: addr, Balance: a.st.Balance(addr)}
}

func (a *PiverseApp) GameIDs() []uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.GameIDs()
}

func (a *PiverseApp) Game(gameID uint64) (GameView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	g, err := loadGame(a.st, gameID)
	if err != nil {
		return GameView{}, err
	}
	return GameView{
		Game:               *g,
		GameVaultBalance:   a.st.Balance(g.GameVault),
		MarketVaultBalance: a.st.Balance(g.MarketVault),
	}, nil
}

func (a *PiverseApp) Market(gameID uint64) (MarketView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	g, err := loadGame(a.st, gameID)
	if err != nil {
		return MarketView{}, err
	}
	total := poolTotal(g.PoolFail, g.PoolBreach)
	return MarketView{
		GameID:           g.GameID,
		Status:           g.MarketStatus,
		PoolFail:         g.PoolFail,
		PoolBreach:       g.PoolBreach,
		Total:            total,
		FailMultiplier:   impliedMultiplier(total, g.PoolFail),
		BreachMultiplier: impliedMultiplier(total, g.PoolBreach),
		VaultBalance:     a.st.Balance(g.MarketVault),
	}, nil
}

func (a *PiverseApp) Prediction(gameID uint64, user string) (PredictionView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	g, err := loadGame(a.st, gameID)
	if err != nil {
		return PredictionView{}, err
	}
	p, err := loadPrediction(a.st, g, user)
	if err != nil {
		return PredictionView{}, err
	}
	payout, err := parimutuelPayout(p.Amount, g.PoolFail, g.PoolBreach, g.Pool(p.Side))
	if err != nil {
		return PredictionView{}, err
	}
	return PredictionView{Prediction: *p, PayoutIfWins: payout}, nil
}

// Query serves:
// - /account/<addr>
// - /games
// - /game/<id>
// - /game/<id>/market
// - /prediction/<id>/<user>
func (a *PiverseApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	height := a.Height()
	v, err := a.query(strings.TrimSpace(req.Path))
	if err != nil {
		space, code, logMsg := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Codespace: space, Code: code, Log: logMsg, Height: height}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: height}, nil
}

func (a *PiverseApp) query(path string) (any, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "games":
		return a.GameIDs(), nil
	case len(parts) == 2 && parts[0] == "account":
		return a.Account(parts[1]), nil
	case len(parts) == 2 && parts[0] == "game":
		id, err := ParseGameID(parts[1])
		if err != nil {
			return nil, err
		}
		return a.Game(id)
	case len(parts) == 3 && parts[0] == "game" && parts[2] == "market":
		id, err := ParseGameID(parts[1])
		if err != nil {
			return nil, err
		}
		return a.Market(id)
	case len(parts) == 3 && parts[0] == "prediction":
		id, err := ParseGameID(parts[1])
		if err != nil {
			return nil, err
		}
		return a.Prediction(id, parts[2])
	default:
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "unknown query path %q", path)
	}
}

// ParseGameID parses a decimal game id from a path segment.
func ParseGameID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errorsmod.Wrapf(types.ErrInvalidRequest, "invalid game id %q", raw)
	}
	return id, nil
}
