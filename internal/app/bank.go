package app

import (
	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"piverse/internal/codec"
	"piverse/internal/state"
	"piverse/internal/types"
)

// bankMint is the localnet faucet. It is unsigned and only routed when the
// node runs with the faucet enabled.
func bankMint(st *state.State, msg codec.BankMintTx) (*abci.ExecTxResult, error) {
	if err := requireUserAddress(msg.To, "to"); err != nil {
		return nil, err
	}
	if msg.Amount == 0 {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "missing amount")
	}
	if err := st.Credit(msg.To, msg.Amount); err != nil {
		return nil, err
	}
	return eventResult(types.BankMintedEvent{To: msg.To, Amount: msg.Amount}), nil
}

func bankSend(st *state.State, caller string, msg codec.BankSendTx) (*abci.ExecTxResult, error) {
	if msg.From != caller {
		return nil, errorsmod.Wrapf(types.ErrUnauthorized, "tx signer mismatch: signer=%q from=%q", caller, msg.From)
	}
	if err := requireUserAddress(msg.To, "to"); err != nil {
		return nil, err
	}
	if msg.Amount == 0 {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "missing amount")
	}
	if err := st.Transfer(msg.From, msg.To, msg.Amount); err != nil {
		return nil, err
	}
	return eventResult(types.BankSentEvent{From: msg.From, To: msg.To, Amount: msg.Amount}), nil
}
