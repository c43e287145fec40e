package app

import (
	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"piverse/internal/codec"
	"piverse/internal/state"
	"piverse/internal/types"
)

// Emergency drains skip every lifecycle guard. They leave IsActive,
// MarketStatus and the pools as they are.

func emergencyWithdrawJackpot(st *state.State, caller string, msg codec.EmergencyWithdrawTx) (*abci.ExecTxResult, error) {
	g, err := loadGame(st, msg.GameID)
	if err != nil {
		return nil, err
	}
	if err := requireGhost(g, caller); err != nil {
		return nil, err
	}
	amount := st.Balance(g.GameVault)
	if err := st.Transfer(g.GameVault, g.Ghost, amount); err != nil {
		return nil, errorsmod.Wrap(err, "drain game vault")
	}
	g.Jackpot = 0

	return eventResult(types.EmergencyWithdrawalEvent{
		GameID: g.GameID,
		Vault:  types.VaultJackpot,
		Amount: amount,
		Ghost:  g.Ghost,
	}), nil
}

func emergencyWithdrawMarket(st *state.State, caller string, msg codec.EmergencyWithdrawTx) (*abci.ExecTxResult, error) {
	g, err := loadGame(st, msg.GameID)
	if err != nil {
		return nil, err
	}
	if err := requireGhost(g, caller); err != nil {
		return nil, err
	}
	amount := st.Balance(g.MarketVault)
	if err := st.Transfer(g.MarketVault, g.Ghost, amount); err != nil {
		return nil, errorsmod.Wrap(err, "drain market vault")
	}

	return eventResult(types.EmergencyWithdrawalEvent{
		GameID: g.GameID,
		Vault:  types.VaultMarket,
		Amount: amount,
		Ghost:  g.Ghost,
	}), nil
}
