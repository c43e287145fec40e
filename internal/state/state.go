package state

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	dbm "github.com/cosmos/cosmos-db"
)

var (
	keySnapshot = []byte("s/snapshot")
	keyHeight   = []byte("s/height")
)

type State struct {
	Height int64 `json:"height"`

	Accounts    map[string]uint64 `json:"accounts"`
	AccountKeys map[string][]byte `json:"accountKeys,omitempty"` // addr -> ed25519 pubkey (32 bytes)
	NonceMax    map[string]uint64 `json:"nonceMax,omitempty"`    // signer -> last accepted tx.nonce

	// Records maps a derived record address to the seed it was created from.
	Records map[string]string `json:"records,omitempty"`

	Games       map[uint64]*Game       `json:"games"`
	Predictions map[string]*Prediction `json:"predictions"` // record address -> prediction
}

func NewState() *State {
	st := &State{}
	st.normalize()
	return st
}

func (s *State) normalize() {
	if s.Accounts == nil {
		s.Accounts = map[string]uint64{}
	}
	if s.AccountKeys == nil {
		s.AccountKeys = map[string][]byte{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
	if s.Records == nil {
		s.Records = map[string]string{}
	}
	if s.Games == nil {
		s.Games = map[uint64]*Game{}
	}
	if s.Predictions == nil {
		s.Predictions = map[string]*Prediction{}
	}
}

// Load reads the last committed snapshot from db. An empty db yields a fresh
// state at height 0.
func Load(db dbm.DB) (*State, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	b, err := db.Get(keySnapshot)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if len(b) == 0 {
		return NewState(), nil
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.normalize()
	return &st, nil
}

// Save writes the snapshot and height in a single synced batch.
func (s *State) Save(db dbm.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], uint64(s.Height))

	batch := db.NewBatch()
	defer batch.Close()
	if err := batch.Set(keySnapshot, b); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := batch.Set(keyHeight, h[:]); err != nil {
		return fmt.Errorf("write height: %w", err)
	}
	if err := batch.WriteSync(); err != nil {
		return fmt.Errorf("commit state: %w", err)
	}
	return nil
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state clone: %w", err)
	}
	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode state clone: %w", err)
	}
	out.normalize()
	return &out, nil
}

func (s *State) AppHash() []byte {
	// Deterministic JSON hash over a normalized view: every map becomes a
	// slice sorted by key.
	type accountKV struct {
		Addr    string `json:"addr"`
		Balance uint64 `json:"balance"`
	}
	type accountKeyKV struct {
		Addr   string `json:"addr"`
		PubKey []byte `json:"pubKey"`
	}
	type nonceKV struct {
		Signer string `json:"signer"`
		Nonce  uint64 `json:"nonce"`
	}
	type recordKV struct {
		Addr string `json:"addr"`
		Seed string `json:"seed"`
	}

	accounts := make([]accountKV, 0, len(s.Accounts))
	for k, v := range s.Accounts {
		accounts = append(accounts, accountKV{Addr: k, Balance: v})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Addr < accounts[j].Addr })

	accountKeys := make([]accountKeyKV, 0, len(s.AccountKeys))
	for k, v := range s.AccountKeys {
		accountKeys = append(accountKeys, accountKeyKV{Addr: k, PubKey: v})
	}
	sort.Slice(accountKeys, func(i, j int) bool { return accountKeys[i].Addr < accountKeys[j].Addr })

	nonces := make([]nonceKV, 0, len(s.NonceMax))
	for k, v := range s.NonceMax {
		nonces = append(nonces, nonceKV{Signer: k, Nonce: v})
	}
	sort.Slice(nonces, func(i, j int) bool { return nonces[i].Signer < nonces[j].Signer })

	records := make([]recordKV, 0, len(s.Records))
	for k, v := range s.Records {
		records = append(records, recordKV{Addr: k, Seed: v})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Addr < records[j].Addr })

	games := make([]*Game, 0, len(s.Games))
	for _, id := range s.GameIDs() {
		games = append(games, s.Games[id])
	}

	predictions := make([]*Prediction, 0, len(s.Predictions))
	for _, p := range s.Predictions {
		predictions = append(predictions, p)
	}
	sort.Slice(predictions, func(i, j int) bool { return predictions[i].Address < predictions[j].Address })

	normalized := struct {
		Height      int64          `json:"height"`
		Accounts    []accountKV    `json:"accounts"`
		AccountKeys []accountKeyKV `json:"accountKeys,omitempty"`
		NonceMax    []nonceKV      `json:"nonceMax,omitempty"`
		Records     []recordKV     `json:"records,omitempty"`
		Games       []*Game        `json:"games"`
		Predictions []*Prediction  `json:"predictions"`
	}{
		Height:      s.Height,
		Accounts:    accounts,
		AccountKeys: accountKeys,
		NonceMax:    nonces,
		Records:     records,
		Games:       games,
		Predictions: predictions,
	}

	b, _ := json.Marshal(normalized)
	sum := sha256.Sum256(b)
	return sum[:]
}

// GameIDs returns all game ids in ascending order.
func (s *State) GameIDs() []uint64 {
	ids := make([]uint64, 0, len(s.Games))
	for id := range s.Games {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
