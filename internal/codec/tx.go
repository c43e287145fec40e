package codec

import (
	"encoding/json"
	"fmt"
)

// TxEnvelope is the v0 transaction container.
//
// CometBFT transactions are opaque bytes; piverse txs are JSON envelopes whose
// Value is decoded according to Type.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Signed txs:
	// - Nonce: decimal, must strictly increase per signer.
	// - Signer: account id the tx acts for.
	// - Sig: Ed25519 signature over (type, nonce, signer, sha256(value)).
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// DecodeValue decodes an envelope payload into msg.
func DecodeValue(env TxEnvelope, msg any) error {
	if len(env.Value) == 0 {
		return fmt.Errorf("missing tx.value")
	}
	if err := json.Unmarshal(env.Value, msg); err != nil {
		return fmt.Errorf("invalid %s value: %w", env.Type, err)
	}
	return nil
}

// Tx types.
const (
	TypeGameInitialize    = "game/initialize"
	TypeGameSubmitAttempt = "game/submit_attempt"
	TypeGameResolve       = "game/resolve"
	TypeMarketPlace       = "market/place_prediction"
	TypeMarketClaim       = "market/claim_winnings"
	TypeEmergencyJackpot  = "emergency/withdraw_jackpot"
	TypeEmergencyMarket   = "emergency/withdraw_market"
	TypeAuthRegister      = "auth/register_account"
	TypeBankMint          = "bank/mint"
	TypeBankSend          = "bank/send"
)

// ---- Bank ----

type BankMintTx struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type BankSendTx struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// ---- Auth ----

type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- Game ----

type GameInitializeTx struct {
	GameID          uint64 `json:"gameId"`
	DurationSeconds int64  `json:"durationSeconds"`
	AttemptPrice    uint64 `json:"attemptPrice"`
	Ghost           string `json:"ghost"`
	DevWallet       string `json:"devWallet"`
}

type GameSubmitAttemptTx struct {
	GameID      uint64 `json:"gameId"`
	MessageHash []byte `json:"messageHash"` // base64, opaque
}

type GameResolveTx struct {
	GameID        uint64  `json:"gameId"`
	Outcome       string  `json:"outcome"` // breached|failed
	Winner        *string `json:"winner,omitempty"`
	WinnerAccount string  `json:"winnerAccount,omitempty"`
}

// ---- Market ----

type MarketPlacePredictionTx struct {
	GameID uint64 `json:"gameId"`
	Side   string `json:"side"` // fail|breach
	Amount uint64 `json:"amount"`
}

type MarketClaimWinningsTx struct {
	GameID uint64 `json:"gameId"`
}

// ---- Emergency ----

type EmergencyWithdrawTx struct {
	GameID uint64 `json:"gameId"`
}
