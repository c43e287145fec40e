package app

import (
	"context"
	"fmt"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"

	"piverse/internal/codec"
	"piverse/internal/state"
	"piverse/internal/types"
)

const (
	AppVersion uint64 = 1
)

type Options struct {
	// EnableFaucet routes unsigned bank/mint txs. Localnet only.
	EnableFaucet bool
}

// EventSink observes committed blocks. Publish is called with the app lock
// held and must not block.
type EventSink interface {
	Publish(block types.CommittedBlock)
}

type PiverseApp struct {
	*abci.BaseApplication

	db     dbm.DB
	logger log.Logger
	opts   Options
	sink   EventSink

	mu       sync.Mutex
	st       *state.State
	lastHash []byte
	pending  *types.CommittedBlock
}

func New(db dbm.DB, logger log.Logger, opts Options) (*PiverseApp, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st, err := state.Load(db)
	if err != nil {
		return nil, err
	}
	a := &PiverseApp{
		BaseApplication: abci.NewBaseApplication(),
		db:              db,
		logger:          logger.With("module", "app"),
		opts:            opts,
		st:              st,
		lastHash:        st.AppHash(),
	}
	return a, nil
}

// SetEventSink registers the observer fed after each Commit.
func (a *PiverseApp) SetEventSink(sink EventSink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sink = sink
}

func (a *PiverseApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             types.AppName,
		Version:          "v0",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

func (a *PiverseApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		space, code, logMsg := errorsmod.ABCIInfo(errorsmod.Wrap(types.ErrInvalidRequest, err.Error()), false)
		return &abci.CheckTxResponse{Codespace: space, Code: code, Log: logMsg}, nil
	}
	// Only structural validation; signatures and nonces are checked in FinalizeBlock.
	if env.Type == codec.TypeBankMint && !a.opts.EnableFaucet {
		space, code, logMsg := errorsmod.ABCIInfo(errorsmod.Wrap(types.ErrUnauthorized, "faucet disabled"), false)
		return &abci.CheckTxResponse{Codespace: space, Code: code, Log: logMsg}, nil
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *PiverseApp) InitChain(_ context.Context, _ *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	return &abci.InitChainResponse{}, nil
}

func (a *PiverseApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Height = req.Height
	nowUnix := req.Time.Unix()

	block := &types.CommittedBlock{Height: req.Height, Time: req.Time}
	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for i, txBytes := range req.Txs {
		res := a.deliverTx(txBytes, req.Height, nowUnix)
		if res.Code == 0 && len(res.Events) > 0 {
			block.Txs = append(block.Txs, types.TxEvents{Index: i, Events: res.Events})
		}
		txResults = append(txResults, res)
	}
	a.pending = block
	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *PiverseApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.st.Save(a.db); err != nil {
		// Returning the error halts the node loudly instead of diverging.
		a.logger.Error("persist state failed", "height", a.st.Height, "err", err)
		return nil, err
	}
	a.logger.Info("committed block", "height", a.st.Height, "app_hash", fmt.Sprintf("%X", a.lastHash))

	if a.pending != nil {
		if a.sink != nil && len(a.pending.Txs) > 0 {
			a.sink.Publish(*a.pending)
		}
		a.pending = nil
	}
	return &abci.CommitResponse{}, nil
}

// deliverTx executes one tx against a clone of state and swaps the clone in
// only on success.
func (a *PiverseApp) deliverTx(txBytes []byte, height int64, nowUnix int64) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return errResult(errorsmod.Wrap(types.ErrInvalidRequest, err.Error()))
	}

	next, err := a.st.Clone()
	if err != nil {
		a.logger.Error("clone state failed", "height", height, "err", err)
		return errResult(err)
	}
	res, err := a.execute(next, env, nowUnix)
	if err != nil {
		a.logger.Debug("tx rejected", "height", height, "type", env.Type, "signer", env.Signer, "err", err)
		return errResult(err)
	}
	a.st = next
	return res
}

func (a *PiverseApp) execute(st *state.State, env codec.TxEnvelope, now int64) (*abci.ExecTxResult, error) {
	switch env.Type {
	case codec.TypeBankMint:
		if !a.opts.EnableFaucet {
			return nil, errorsmod.Wrap(types.ErrUnauthorized, "faucet disabled")
		}
		var msg codec.BankMintTx
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return bankMint(st, msg)

	case codec.TypeAuthRegister:
		var msg codec.AuthRegisterAccountTx
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return registerAccount(st, env, msg)
	}

	caller, err := requireAccountAuth(st, env)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case codec.TypeBankSend:
		var msg codec.BankSendTx
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return bankSend(st, caller, msg)

	case codec.TypeGameInitialize:
		var msg codec.GameInitializeTx
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return initializeGame(st, caller, now, msg)

	case codec.TypeGameSubmitAttempt:
		var msg codec.GameSubmitAttemptTx
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return submitAttempt(st, caller, now, msg)

	case codec.TypeGameResolve:
		var msg codec.GameResolveTx
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return resolveGame(st, caller, msg)

	case codec.TypeMarketPlace:
		var msg codec.MarketPlacePredictionTx
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return placePrediction(st, caller, now, msg)

	case codec.TypeMarketClaim:
		var msg codec.MarketClaimWinningsTx
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return claimWinnings(st, caller, msg)

	case codec.TypeEmergencyJackpot:
		var msg codec.EmergencyWithdrawTx
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return emergencyWithdrawJackpot(st, caller, msg)

	case codec.TypeEmergencyMarket:
		var msg codec.EmergencyWithdrawTx
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return emergencyWithdrawMarket(st, caller, msg)

	default:
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "unknown tx type %q", env.Type)
	}
}

func decode(env codec.TxEnvelope, msg any) error {
	if err := codec.DecodeValue(env, msg); err != nil {
		return errorsmod.Wrap(types.ErrInvalidRequest, err.Error())
	}
	return nil
}

func errResult(err error) *abci.ExecTxResult {
	space, code, logMsg := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Codespace: space, Code: code, Log: logMsg}
}

type notification interface {
	ABCIEvent() abci.Event
}

func eventResult(evs ...notification) *abci.ExecTxResult {
	res := &abci.ExecTxResult{Code: 0}
	for _, ev := range evs {
		res.Events = append(res.Events, ev.ABCIEvent())
	}
	return res
}
