package app

import (
	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"piverse/internal/codec"
	"piverse/internal/state"
	"piverse/internal/types"
)

func initializeGame(st *state.State, caller string, now int64, msg codec.GameInitializeTx) (*abci.ExecTxResult, error) {
	if msg.DurationSeconds <= 0 {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "durationSeconds must be positive, got %d", msg.DurationSeconds)
	}
	if err := requireUserAddress(msg.Ghost, "ghost"); err != nil {
		return nil, err
	}
	if err := requireUserAddress(msg.DevWallet, "devWallet"); err != nil {
		return nil, err
	}
	endTime, err := addInt64Checked(now, msg.DurationSeconds, "endTime")
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, err.Error())
	}

	addr, err := st.CreateRecord(types.GameSeed(msg.GameID))
	if err != nil {
		return nil, errorsmod.Wrapf(err, "game %d", msg.GameID)
	}
	gameVault, err := st.CreateRecord(types.GameVaultSeed(addr))
	if err != nil {
		return nil, err
	}
	marketVault, err := st.CreateRecord(types.MarketVaultSeed(addr))
	if err != nil {
		return nil, err
	}

	g := &state.Game{
		GameID:       msg.GameID,
		Address:      addr,
		Authority:    caller,
		Ghost:        msg.Ghost,
		DevWallet:    msg.DevWallet,
		GameVault:    gameVault,
		MarketVault:  marketVault,
		AttemptPrice: msg.AttemptPrice,
		StartTime:    now,
		EndTime:      endTime,
		IsActive:     true,
		MarketStatus: state.MarketActive,
	}
	st.Games[msg.GameID] = g

	return eventResult(types.GameInitializedEvent{
		GameID:       g.GameID,
		Authority:    g.Authority,
		Ghost:        g.Ghost,
		DevWallet:    g.DevWallet,
		GameVault:    g.GameVault,
		MarketVault:  g.MarketVault,
		EndTime:      g.EndTime,
		AttemptPrice: g.AttemptPrice,
	}), nil
}

func submitAttempt(st *state.State, caller string, now int64, msg codec.GameSubmitAttemptTx) (*abci.ExecTxResult, error) {
	g, err := loadGame(st, msg.GameID)
	if err != nil {
		return nil, err
	}
	if err := requireLive(g, now); err != nil {
		return nil, err
	}

	treasury, share := splitAttemptPrice(g.AttemptPrice)
	attempts, err := addUint64Checked(g.TotalAttempts, 1, "totalAttempts")
	if err != nil {
		return nil, err
	}
	jackpot, err := addUint64Checked(g.Jackpot, share, "jackpot")
	if err != nil {
		return nil, err
	}
	if bal := st.Balance(caller); bal < g.AttemptPrice {
		return nil, errorsmod.Wrapf(types.ErrInsufficientFunds, "attempt price %d, have=%d", g.AttemptPrice, bal)
	}

	if err := st.Transfer(caller, g.DevWallet, treasury); err != nil {
		return nil, errorsmod.Wrap(err, "treasury share")
	}
	if err := st.Transfer(caller, g.GameVault, share); err != nil {
		return nil, errorsmod.Wrap(err, "jackpot share")
	}
	g.TotalAttempts = attempts
	g.Jackpot = jackpot

	return eventResult(types.AttemptEvent{
		GameID:        g.GameID,
		User:          caller,
		MessageHash:   msg.MessageHash,
		Timestamp:     now,
		AttemptNumber: g.TotalAttempts,
		Price:         g.AttemptPrice,
	}), nil
}

func resolveGame(st *state.State, caller string, msg codec.GameResolveTx) (*abci.ExecTxResult, error) {
	g, err := loadGame(st, msg.GameID)
	if err != nil {
		return nil, err
	}
	if err := requireResolver(g, caller); err != nil {
		return nil, err
	}
	if err := requireActive(g); err != nil {
		return nil, err
	}
	outcome, err := state.ParseOutcome(msg.Outcome)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidOutcome, err.Error())
	}

	switch outcome {
	case state.MarketBreached:
		if msg.Winner == nil || *msg.Winner == "" {
			return nil, errorsmod.Wrapf(types.ErrWinnerRequired, "game %d", g.GameID)
		}
		winner := *msg.Winner
		if msg.WinnerAccount != winner || state.IsRecordAddress(winner) {
			return nil, errorsmod.Wrapf(types.ErrInvalidWinnerAccount, "winner=%q winnerAccount=%q", winner, msg.WinnerAccount)
		}
		if err := st.Transfer(g.GameVault, winner, st.Balance(g.GameVault)); err != nil {
			return nil, errorsmod.Wrap(err, "jackpot payout")
		}
		g.Winner = &winner
	case state.MarketFailed:
		// Jackpot stays in the game vault.
	}

	g.MarketStatus = outcome
	g.IsActive = false

	return eventResult(types.GameResolvedEvent{
		GameID:  g.GameID,
		Winner:  g.Winner,
		Amount:  g.Jackpot,
		Outcome: string(outcome),
	}), nil
}
