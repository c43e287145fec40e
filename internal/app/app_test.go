package app

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"testing"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"

	"piverse/internal/codec"
	"piverse/internal/state"
)

const (
	testHeight = int64(1)
	testNow    = int64(1_700_000_000)

	testGameID   = uint64(1)
	testPrice    = uint64(100)
	testDuration = int64(3600)
)

var testNonce atomic.Uint64

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func txBytes(t *testing.T, typ string, value any) []byte {
	t.Helper()
	return mustMarshal(t, map[string]any{
		"type":  typ,
		"value": value,
	})
}

func testEd25519Key(name string) (ed25519.PublicKey, ed25519.PrivateKey) {
	seed := sha256.Sum256([]byte("piverse-test-key:" + name))
	priv := ed25519.NewKeyFromSeed(seed[:])
	return priv.Public().(ed25519.PublicKey), priv
}

func txBytesSignedNonce(t *testing.T, typ string, value any, signer string, nonce string) []byte {
	t.Helper()
	valueBytes := mustMarshal(t, value)
	_, priv := testEd25519Key(signer)
	sig := ed25519.Sign(priv, txAuthSignBytesV0(typ, valueBytes, nonce, signer))
	return mustMarshal(t, codec.TxEnvelope{
		Type:   typ,
		Value:  valueBytes,
		Nonce:  nonce,
		Signer: signer,
		Sig:    sig,
	})
}

// txBytesSigned signs with a fresh, globally increasing nonce.
func txBytesSigned(t *testing.T, typ string, value any, signer string) []byte {
	t.Helper()
	return txBytesSignedNonce(t, typ, value, signer, strconv.FormatUint(testNonce.Add(1), 10))
}

func findEvent(events []abci.Event, typ string) *abci.Event {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func attr(ev *abci.Event, key string) string {
	if ev == nil {
		return ""
	}
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func hasAttr(ev *abci.Event, key string) bool {
	if ev == nil {
		return false
	}
	for _, a := range ev.Attributes {
		if a.Key == key {
			return true
		}
	}
	return false
}

func newTestApp(t *testing.T) *PiverseApp {
	t.Helper()
	a, err := New(dbm.NewMemDB(), log.NewNopLogger(), Options{EnableFaucet: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func mustOk(t *testing.T, res *abci.ExecTxResult) *abci.ExecTxResult {
	t.Helper()
	if res.Code != 0 {
		t.Fatalf("expected ok, got code=%d log=%q", res.Code, res.Log)
	}
	return res
}

func mustFail(t *testing.T, res *abci.ExecTxResult, want *errorsmod.Error) *abci.ExecTxResult {
	t.Helper()
	if res.Code == 0 {
		t.Fatalf("expected %s, got ok", want)
	}
	if res.Codespace != want.Codespace() || res.Code != want.ABCICode() {
		t.Fatalf("expected %s (code=%d), got codespace=%q code=%d log=%q", want, want.ABCICode(), res.Codespace, res.Code, res.Log)
	}
	return res
}

func mintTestTokens(t *testing.T, a *PiverseApp, to string, amount uint64) {
	t.Helper()
	mustOk(t, a.deliverTx(txBytes(t, codec.TypeBankMint, map[string]any{"to": to, "amount": amount}), testHeight, testNow))
}

func registerTestAccount(t *testing.T, a *PiverseApp, account string) {
	t.Helper()
	pub, _ := testEd25519Key(account)
	mustOk(t, a.deliverTx(txBytesSigned(t, codec.TypeAuthRegister, map[string]any{
		"account": account,
		"pubKey":  []byte(pub),
	}, account), testHeight, testNow))
}

func fundedAccount(t *testing.T, a *PiverseApp, account string, amount uint64) {
	t.Helper()
	if amount > 0 {
		mintTestTokens(t, a, account, amount)
	}
	registerTestAccount(t, a, account)
}

// setupGame registers authority/ghost/dev and initializes testGameID at testNow.
func setupGame(t *testing.T) *PiverseApp {
	t.Helper()
	a := newTestApp(t)
	fundedAccount(t, a, "authority", 0)
	fundedAccount(t, a, "ghost", 0)

	mustOk(t, a.deliverTx(txBytesSigned(t, codec.TypeGameInitialize, map[string]any{
		"gameId":          testGameID,
		"durationSeconds": testDuration,
		"attemptPrice":    testPrice,
		"ghost":           "ghost",
		"devWallet":       "dev",
	}, "authority"), testHeight, testNow))
	return a
}

func game(t *testing.T, a *PiverseApp) *state.Game {
	t.Helper()
	g, ok := a.st.Games[testGameID]
	if !ok {
		t.Fatalf("game %d missing", testGameID)
	}
	return g
}

func submitAttemptTx(t *testing.T, user string) []byte {
	t.Helper()
	return txBytesSigned(t, codec.TypeGameSubmitAttempt, map[string]any{
		"gameId":      testGameID,
		"messageHash": []byte("hash-" + user),
	}, user)
}

func placePredictionTx(t *testing.T, user, side string, amount uint64) []byte {
	t.Helper()
	return txBytesSigned(t, codec.TypeMarketPlace, map[string]any{
		"gameId": testGameID,
		"side":   side,
		"amount": amount,
	}, user)
}

func resolveTx(t *testing.T, caller, outcome string, winner *string, winnerAccount string) []byte {
	t.Helper()
	value := map[string]any{
		"gameId":        testGameID,
		"outcome":       outcome,
		"winnerAccount": winnerAccount,
	}
	if winner != nil {
		value["winner"] = *winner
	}
	return txBytesSigned(t, codec.TypeGameResolve, value, caller)
}

func claimTx(t *testing.T, user string) []byte {
	t.Helper()
	return txBytesSigned(t, codec.TypeMarketClaim, map[string]any{"gameId": testGameID}, user)
}

func strPtr(s string) *string { return &s }
