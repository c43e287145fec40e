package app

import (
	errorsmod "cosmossdk.io/errors"

	"piverse/internal/state"
	"piverse/internal/types"
)

func loadGame(st *state.State, gameID uint64) (*state.Game, error) {
	g, ok := st.Games[gameID]
	if !ok || g == nil {
		return nil, errorsmod.Wrapf(types.ErrNotFound, "game %d", gameID)
	}
	return g, nil
}

// requireActive fails once the game has been resolved.
func requireActive(g *state.Game) error {
	if !g.IsActive {
		return errorsmod.Wrapf(types.ErrGameEnded, "game %d", g.GameID)
	}
	return nil
}

// requireOpenWindow fails at or after EndTime.
func requireOpenWindow(g *state.Game, now int64) error {
	if now >= g.EndTime {
		return errorsmod.Wrapf(types.ErrGameExpired, "game %d: now=%d endTime=%d", g.GameID, now, g.EndTime)
	}
	return nil
}

// requireLive gates attempts and predictions.
func requireLive(g *state.Game, now int64) error {
	if err := requireActive(g); err != nil {
		return err
	}
	return requireOpenWindow(g, now)
}

func requireResolver(g *state.Game, caller string) error {
	if caller == "" || (caller != g.Authority && caller != g.Ghost) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%q may not resolve game %d", caller, g.GameID)
	}
	return nil
}

func requireGhost(g *state.Game, caller string) error {
	if caller == "" || caller != g.Ghost {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%q is not the ghost of game %d", caller, g.GameID)
	}
	return nil
}

// requireUserAddress rejects empty and record addresses where a keyed account
// is expected.
func requireUserAddress(addr, field string) error {
	if addr == "" {
		return errorsmod.Wrapf(types.ErrInvalidRequest, "missing %s", field)
	}
	if state.IsRecordAddress(addr) {
		return errorsmod.Wrapf(types.ErrInvalidRequest, "%s %q is a record address", field, addr)
	}
	return nil
}
