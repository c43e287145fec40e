package types

import (
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
)

// TxEvents are the events emitted by one successful tx.
type TxEvents struct {
	Index  int
	Events []abci.Event
}

// CommittedBlock is what the app hands to observers after Commit.
type CommittedBlock struct {
	Height int64
	Time   time.Time
	Txs    []TxEvents
}

// EventCount returns the number of events across all txs.
func (b CommittedBlock) EventCount() int {
	n := 0
	for _, tx := range b.Txs {
		n += len(tx.Events)
	}
	return n
}
