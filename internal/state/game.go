package state

import "fmt"

// MarketStatus is the prediction market state of a game. It leaves
// MarketActive exactly once.
type MarketStatus string

const (
	MarketActive   MarketStatus = "active"
	MarketBreached MarketStatus = "breached"
	MarketFailed   MarketStatus = "failed"
)

// ParseOutcome accepts only the terminal statuses a resolver may declare.
func ParseOutcome(s string) (MarketStatus, error) {
	switch MarketStatus(s) {
	case MarketBreached, MarketFailed:
		return MarketStatus(s), nil
	default:
		return "", fmt.Errorf("unknown outcome %q", s)
	}
}

type PredictionSide string

const (
	SideFail   PredictionSide = "fail"
	SideBreach PredictionSide = "breach"
)

func ParseSide(s string) (PredictionSide, error) {
	switch PredictionSide(s) {
	case SideFail, SideBreach:
		return PredictionSide(s), nil
	default:
		return "", fmt.Errorf("unknown side %q", s)
	}
}

// WinningSide maps a terminal status to the side that gets paid.
func (m MarketStatus) WinningSide() (PredictionSide, bool) {
	switch m {
	case MarketBreached:
		return SideBreach, true
	case MarketFailed:
		return SideFail, true
	default:
		return "", false
	}
}

type Game struct {
	GameID      uint64 `json:"gameId"`
	Address     string `json:"address"`
	Authority   string `json:"authority"`
	Ghost       string `json:"ghost"`
	DevWallet   string `json:"devWallet"`
	GameVault   string `json:"gameVault"`
	MarketVault string `json:"marketVault"`

	Jackpot       uint64 `json:"jackpot"`
	TotalAttempts uint64 `json:"totalAttempts"`
	AttemptPrice  uint64 `json:"attemptPrice"`

	// Unix seconds.
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`

	IsActive bool    `json:"isActive"`
	Winner   *string `json:"winner,omitempty"`

	PoolFail     uint64       `json:"poolFail"`
	PoolBreach   uint64       `json:"poolBreach"`
	MarketStatus MarketStatus `json:"marketStatus"`
}

// Pool returns the pool total for side.
func (g *Game) Pool(side PredictionSide) uint64 {
	if side == SideBreach {
		return g.PoolBreach
	}
	return g.PoolFail
}

type Prediction struct {
	Address string         `json:"address"`
	User    string         `json:"user"`
	GameID  uint64         `json:"gameId"`
	Amount  uint64         `json:"amount"`
	Side    PredictionSide `json:"side"`
	Claimed bool           `json:"claimed"`
}
