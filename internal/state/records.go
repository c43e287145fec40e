package state

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"piverse/internal/types"
)

// RecordAddrPrefix marks addresses derived from a seed. Record addresses have
// no signing key, so only the settlement handlers can move their funds.
const RecordAddrPrefix = "rec1"

// RecordAddress derives the address for seed without registering it.
func RecordAddress(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return RecordAddrPrefix + hex.EncodeToString(sum[:20])
}

// CreateRecord registers seed and returns its address. Creating the same seed
// twice fails with ErrDuplicateRecord.
func (s *State) CreateRecord(seed string) (string, error) {
	if seed == "" {
		return "", errorsmod.Wrap(types.ErrInvalidRequest, "empty record seed")
	}
	addr := RecordAddress(seed)
	if _, ok := s.Records[addr]; ok {
		return "", errorsmod.Wrapf(types.ErrDuplicateRecord, "seed %q", seed)
	}
	s.Records[addr] = seed
	return addr, nil
}

// LookupRecord returns the address for seed if it has been created.
func (s *State) LookupRecord(seed string) (string, bool) {
	addr := RecordAddress(seed)
	_, ok := s.Records[addr]
	return addr, ok
}

// IsRecordAddress reports whether addr is (or could be) a derived record
// address. The check is syntactic so that a vault address cannot be claimed
// by a user before the record exists.
func IsRecordAddress(addr string) bool {
	return strings.HasPrefix(addr, RecordAddrPrefix)
}
