package app

import (
	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"piverse/internal/codec"
	"piverse/internal/state"
	"piverse/internal/types"
)

func placePrediction(st *state.State, caller string, now int64, msg codec.MarketPlacePredictionTx) (*abci.ExecTxResult, error) {
	g, err := loadGame(st, msg.GameID)
	if err != nil {
		return nil, err
	}
	if err := requireLive(g, now); err != nil {
		return nil, err
	}
	side, err := state.ParseSide(msg.Side)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, err.Error())
	}
	if msg.Amount == 0 {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "amount must be positive")
	}
	pool, err := addUint64Checked(g.Pool(side), msg.Amount, "pool_"+string(side))
	if err != nil {
		return nil, err
	}

	addr, err := st.CreateRecord(types.PredictionSeed(g.Address, caller))
	if err != nil {
		return nil, errorsmod.Wrapf(err, "prediction for %q on game %d", caller, g.GameID)
	}
	if err := st.Transfer(caller, g.MarketVault, msg.Amount); err != nil {
		return nil, err
	}

	st.Predictions[addr] = &state.Prediction{
		Address: addr,
		User:    caller,
		GameID:  g.GameID,
		Amount:  msg.Amount,
		Side:    side,
	}
	switch side {
	case state.SideFail:
		g.PoolFail = pool
	case state.SideBreach:
		g.PoolBreach = pool
	}

	return eventResult(types.PredictionPlacedEvent{
		GameID: g.GameID,
		User:   caller,
		Side:   string(side),
		Amount: msg.Amount,
	}), nil
}

func claimWinnings(st *state.State, caller string, msg codec.MarketClaimWinningsTx) (*abci.ExecTxResult, error) {
	g, err := loadGame(st, msg.GameID)
	if err != nil {
		return nil, err
	}
	p, err := loadPrediction(st, g, caller)
	if err != nil {
		return nil, err
	}
	winSide, resolved := g.MarketStatus.WinningSide()
	if !resolved {
		return nil, errorsmod.Wrapf(types.ErrMarketNotResolved, "game %d", g.GameID)
	}
	if p.Claimed {
		return nil, errorsmod.Wrapf(types.ErrAlreadyClaimed, "%q on game %d", caller, g.GameID)
	}
	if p.Side != winSide {
		return nil, errorsmod.Wrapf(types.ErrPredictionLost, "predicted %s, market %s", p.Side, g.MarketStatus)
	}

	payout, err := parimutuelPayout(p.Amount, g.PoolFail, g.PoolBreach, g.Pool(winSide))
	if err != nil {
		return nil, err
	}
	if err := st.Transfer(g.MarketVault, caller, payout); err != nil {
		return nil, errorsmod.Wrap(err, "market payout")
	}
	p.Claimed = true

	return eventResult(types.WinningsClaimedEvent{
		GameID: g.GameID,
		User:   caller,
		Payout: payout,
	}), nil
}

func loadPrediction(st *state.State, g *state.Game, user string) (*state.Prediction, error) {
	addr, ok := st.LookupRecord(types.PredictionSeed(g.Address, user))
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrNotFound, "no prediction for %q on game %d", user, g.GameID)
	}
	p, ok := st.Predictions[addr]
	if !ok || p == nil {
		return nil, errorsmod.Wrapf(types.ErrNotFound, "prediction record %s", addr)
	}
	return p, nil
}
