package app

import (
	"testing"

	"piverse/internal/codec"
	"piverse/internal/state"
	"piverse/internal/types"
)

func withdrawTx(t *testing.T, typ, caller string) []byte {
	t.Helper()
	return txBytesSigned(t, typ, map[string]any{"gameId": testGameID}, caller)
}

func TestEmergencyWithdrawJackpot_GhostOnly(t *testing.T) {
	a := setupGame(t)
	fundedAccount(t, a, "player", 1000)
	mustOk(t, a.deliverTx(submitAttemptTx(t, "player"), testHeight, testNow))

	mustFail(t, a.deliverTx(withdrawTx(t, codec.TypeEmergencyJackpot, "authority"), testHeight, testNow), types.ErrUnauthorized)
	mustFail(t, a.deliverTx(withdrawTx(t, codec.TypeEmergencyJackpot, "player"), testHeight, testNow), types.ErrUnauthorized)

	res := mustOk(t, a.deliverTx(withdrawTx(t, codec.TypeEmergencyJackpot, "ghost"), testHeight, testNow))
	g := game(t, a)
	if a.st.Balance("ghost") != 80 || a.st.Balance(g.GameVault) != 0 || g.Jackpot != 0 {
		t.Fatalf("ghost=%d vault=%d jackpot=%d", a.st.Balance("ghost"), a.st.Balance(g.GameVault), g.Jackpot)
	}
	// Lifecycle is untouched.
	if !g.IsActive || g.MarketStatus != state.MarketActive {
		t.Fatalf("emergency drain must not change lifecycle: %+v", g)
	}
	ev := findEvent(res.Events, types.EventTypeEmergencyWithdrawal)
	if attr(ev, "vault") != types.VaultJackpot || attr(ev, "amount") != "80" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestEmergencyWithdrawJackpot_ThenResolve(t *testing.T) {
	a := setupGame(t)
	fundedAccount(t, a, "player", 1000)
	mustOk(t, a.deliverTx(submitAttemptTx(t, "player"), testHeight, testNow))
	mustOk(t, a.deliverTx(withdrawTx(t, codec.TypeEmergencyJackpot, "ghost"), testHeight, testNow))

	// The drained game still resolves; the winner receives the empty vault.
	res := mustOk(t, a.deliverTx(resolveTx(t, "authority", "breached", strPtr("winner"), "winner"), testHeight, testNow))
	if a.st.Balance("winner") != 0 {
		t.Fatalf("winner should receive nothing from a drained vault")
	}
	if attr(findEvent(res.Events, types.EventTypeGameResolved), "amount") != "0" {
		t.Fatalf("expected resolved amount 0 after drain")
	}
}

func TestEmergencyWithdrawMarket_ClaimsFailAfterDrain(t *testing.T) {
	a := setupGame(t)
	fundedAccount(t, a, "alice", 100)
	fundedAccount(t, a, "bob", 300)
	mustOk(t, a.deliverTx(placePredictionTx(t, "alice", "fail", 100), testHeight, testNow))
	mustOk(t, a.deliverTx(placePredictionTx(t, "bob", "breach", 300), testHeight, testNow))

	mustFail(t, a.deliverTx(withdrawTx(t, codec.TypeEmergencyMarket, "authority"), testHeight, testNow), types.ErrUnauthorized)
	mustOk(t, a.deliverTx(withdrawTx(t, codec.TypeEmergencyMarket, "ghost"), testHeight, testNow))

	g := game(t, a)
	if a.st.Balance(g.MarketVault) != 0 || a.st.Balance("ghost") != 400 {
		t.Fatalf("vault=%d ghost=%d", a.st.Balance(g.MarketVault), a.st.Balance("ghost"))
	}
	if g.PoolFail != 100 || g.PoolBreach != 300 {
		t.Fatalf("pools must survive a drain: fail=%d breach=%d", g.PoolFail, g.PoolBreach)
	}

	mustOk(t, a.deliverTx(resolveTx(t, "authority", "breached", strPtr("w"), "w"), testHeight, testNow))
	mustFail(t, a.deliverTx(claimTx(t, "bob"), testHeight, testNow), types.ErrInsufficientFunds)

	p, err := loadPrediction(a.st, game(t, a), "bob")
	if err != nil {
		t.Fatalf("loadPrediction: %v", err)
	}
	if p.Claimed {
		t.Fatalf("failed claim must not mark prediction claimed")
	}
}

func TestEmergencyWithdraw_AfterResolution(t *testing.T) {
	a := setupGame(t)
	fundedAccount(t, a, "player", 1000)
	mustOk(t, a.deliverTx(submitAttemptTx(t, "player"), testHeight, testNow))
	mustOk(t, a.deliverTx(resolveTx(t, "authority", "failed", nil, ""), testHeight, testNow+testDuration))

	mustOk(t, a.deliverTx(withdrawTx(t, codec.TypeEmergencyJackpot, "ghost"), testHeight, testNow+testDuration))
	if a.st.Balance("ghost") != 80 {
		t.Fatalf("ghost should recover the failed game's jackpot")
	}
	if game(t, a).MarketStatus != state.MarketFailed {
		t.Fatalf("market status changed by drain")
	}
}
