package types

import (
	"encoding/hex"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventTypeAttempt              = "AttemptEvent"
	EventTypeGameResolved         = "GameResolvedEvent"
	EventTypePredictionPlaced     = "PredictionPlacedEvent"
	EventTypeGameInitialized      = "GameInitialized"
	EventTypeWinningsClaimed      = "WinningsClaimed"
	EventTypeEmergencyWithdrawal  = "EmergencyWithdrawal"
	EventTypeBankMinted           = "BankMinted"
	EventTypeBankSent             = "BankSent"
	EventTypeAccountKeyRegistered = "AccountKeyRegistered"

	VaultJackpot = "jackpot"
	VaultMarket  = "market"
)

// AttemptEvent is emitted once per paid attempt.
type AttemptEvent struct {
	GameID        uint64
	User          string
	MessageHash   []byte
	Timestamp     int64
	AttemptNumber uint64
	Price         uint64
}

func (e AttemptEvent) ABCIEvent() abci.Event {
	return newEvent(EventTypeAttempt,
		attr("gameId", u64(e.GameID), true),
		attr("user", e.User, true),
		attr("messageHash", hex.EncodeToString(e.MessageHash), false),
		attr("timestamp", strconv.FormatInt(e.Timestamp, 10), false),
		attr("attemptNumber", u64(e.AttemptNumber), false),
		attr("price", u64(e.Price), false),
	)
}

// GameResolvedEvent reports the terminal outcome. Amount is the tracked
// jackpot at resolution time, not the vault balance.
type GameResolvedEvent struct {
	GameID  uint64
	Winner  *string
	Amount  uint64
	Outcome string
}

func (e GameResolvedEvent) ABCIEvent() abci.Event {
	attrs := []abci.EventAttribute{attr("gameId", u64(e.GameID), true)}
	if e.Winner != nil {
		attrs = append(attrs, attr("winner", *e.Winner, true))
	}
	attrs = append(attrs,
		attr("amount", u64(e.Amount), false),
		attr("outcome", e.Outcome, true),
	)
	return newEvent(EventTypeGameResolved, attrs...)
}

type PredictionPlacedEvent struct {
	GameID uint64
	User   string
	Side   string
	Amount uint64
}

func (e PredictionPlacedEvent) ABCIEvent() abci.Event {
	return newEvent(EventTypePredictionPlaced,
		attr("gameId", u64(e.GameID), true),
		attr("user", e.User, true),
		attr("side", e.Side, true),
		attr("amount", u64(e.Amount), false),
	)
}

type GameInitializedEvent struct {
	GameID       uint64
	Authority    string
	Ghost        string
	DevWallet    string
	GameVault    string
	MarketVault  string
	EndTime      int64
	AttemptPrice uint64
}

func (e GameInitializedEvent) ABCIEvent() abci.Event {
	return newEvent(EventTypeGameInitialized,
		attr("gameId", u64(e.GameID), true),
		attr("authority", e.Authority, true),
		attr("ghost", e.Ghost, false),
		attr("devWallet", e.DevWallet, false),
		attr("gameVault", e.GameVault, false),
		attr("marketVault", e.MarketVault, false),
		attr("endTime", strconv.FormatInt(e.EndTime, 10), false),
		attr("attemptPrice", u64(e.AttemptPrice), false),
	)
}

type WinningsClaimedEvent struct {
	GameID uint64
	User   string
	Payout uint64
}

func (e WinningsClaimedEvent) ABCIEvent() abci.Event {
	return newEvent(EventTypeWinningsClaimed,
		attr("gameId", u64(e.GameID), true),
		attr("user", e.User, true),
		attr("payout", u64(e.Payout), false),
	)
}

type EmergencyWithdrawalEvent struct {
	GameID uint64
	Vault  string
	Amount uint64
	Ghost  string
}

func (e EmergencyWithdrawalEvent) ABCIEvent() abci.Event {
	return newEvent(EventTypeEmergencyWithdrawal,
		attr("gameId", u64(e.GameID), true),
		attr("vault", e.Vault, true),
		attr("amount", u64(e.Amount), false),
		attr("ghost", e.Ghost, false),
	)
}

type BankMintedEvent struct {
	To     string
	Amount uint64
}

func (e BankMintedEvent) ABCIEvent() abci.Event {
	return newEvent(EventTypeBankMinted,
		attr("to", e.To, true),
		attr("amount", u64(e.Amount), false),
	)
}

type BankSentEvent struct {
	From   string
	To     string
	Amount uint64
}

func (e BankSentEvent) ABCIEvent() abci.Event {
	return newEvent(EventTypeBankSent,
		attr("from", e.From, true),
		attr("to", e.To, true),
		attr("amount", u64(e.Amount), false),
	)
}

type AccountKeyRegisteredEvent struct {
	Account string
}

func (e AccountKeyRegisteredEvent) ABCIEvent() abci.Event {
	return newEvent(EventTypeAccountKeyRegistered, attr("account", e.Account, true))
}

func newEvent(typ string, attrs ...abci.EventAttribute) abci.Event {
	return abci.Event{Type: typ, Attributes: attrs}
}

func attr(key, value string, index bool) abci.EventAttribute {
	return abci.EventAttribute{Key: key, Value: value, Index: index}
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
