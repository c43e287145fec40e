package types

import "fmt"

const (
	// Codespace is the ABCI codespace reported with every settlement error.
	Codespace = "piverse"

	// AppName is reported by ABCI Info.
	AppName = "piverse"
)

// Record seeds. The Account Store derives a record address from each seed;
// callers only ever see the returned address.

func GameSeed(gameID uint64) string {
	return fmt.Sprintf("game_state/%d", gameID)
}

func GameVaultSeed(gameAddr string) string {
	return "game_vault/" + gameAddr
}

func MarketVaultSeed(gameAddr string) string {
	return "market_vault/" + gameAddr
}

func PredictionSeed(gameAddr, user string) string {
	return "prediction/" + gameAddr + "/" + user
}
