package state

import (
	errorsmod "cosmossdk.io/errors"

	"piverse/internal/types"
)

func (s *State) Balance(addr string) uint64 {
	return s.Accounts[addr]
}

func (s *State) Credit(addr string, amount uint64) error {
	bal := s.Accounts[addr]
	if bal > ^uint64(0)-amount {
		return errorsmod.Wrapf(types.ErrOverflow, "balance overflow: have=%d add=%d", bal, amount)
	}
	s.Accounts[addr] = bal + amount
	return nil
}

func (s *State) Debit(addr string, amount uint64) error {
	bal := s.Accounts[addr]
	if bal < amount {
		return errorsmod.Wrapf(types.ErrInsufficientFunds, "have=%d need=%d", bal, amount)
	}
	s.Accounts[addr] = bal - amount
	return nil
}

// Transfer moves amount from one address to another. Both sides are checked
// before either balance is touched, so a failed transfer leaves no trace.
func (s *State) Transfer(from, to string, amount uint64) error {
	if from == "" || to == "" {
		return errorsmod.Wrap(types.ErrInvalidRequest, "transfer requires from and to")
	}
	fromBal := s.Accounts[from]
	if fromBal < amount {
		return errorsmod.Wrapf(types.ErrInsufficientFunds, "%s: have=%d need=%d", from, fromBal, amount)
	}
	if from == to || amount == 0 {
		return nil
	}
	toBal := s.Accounts[to]
	if toBal > ^uint64(0)-amount {
		return errorsmod.Wrapf(types.ErrOverflow, "%s: balance overflow: have=%d add=%d", to, toBal, amount)
	}
	s.Accounts[from] = fromBal - amount
	s.Accounts[to] = toBal + amount
	return nil
}
