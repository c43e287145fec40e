package app

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"piverse/internal/codec"
	"piverse/internal/state"
	"piverse/internal/types"
)

const txAuthDomainV0 = "piverse/tx/v0"

func txAuthSignBytesV0(typ string, value []byte, nonce string, signer string) []byte {
	// signBytes = DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomainV0)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(txAuthDomainV0)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return out
}

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return errorsmod.Wrap(types.ErrUnauthorized, "missing tx.nonce")
	}
	if env.Signer == "" {
		return errorsmod.Wrap(types.ErrUnauthorized, "missing tx.signer")
	}
	if len(env.Sig) == 0 {
		return errorsmod.Wrap(types.ErrUnauthorized, "missing tx.sig")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return errorsmod.Wrapf(types.ErrUnauthorized, "invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

func verifyEnvelope(pub []byte, env codec.TxEnvelope) error {
	msg := txAuthSignBytesV0(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, env.Sig) {
		return errorsmod.Wrap(types.ErrUnauthorized, "invalid signature")
	}
	return nil
}

// requireAccountAuth checks the envelope against the signer's registered key
// and returns the signer as the caller.
func requireAccountAuth(st *state.State, env codec.TxEnvelope) (string, error) {
	if err := requireSignedEnvelope(env); err != nil {
		return "", err
	}
	pub := st.AccountKeys[env.Signer]
	if len(pub) != ed25519.PublicKeySize {
		return "", errorsmod.Wrapf(types.ErrUnauthorized, "account %q missing pubKey (auth/register_account required)", env.Signer)
	}
	if err := verifyEnvelope(pub, env); err != nil {
		return "", err
	}
	if err := consumeNonce(st, env.Signer, env.Nonce); err != nil {
		return "", err
	}
	return env.Signer, nil
}

func requireRegisterAccountAuth(st *state.State, env codec.TxEnvelope, msg codec.AuthRegisterAccountTx) error {
	if msg.Account == "" {
		return errorsmod.Wrap(types.ErrInvalidRequest, "missing account")
	}
	if len(msg.PubKey) != ed25519.PublicKeySize {
		return errorsmod.Wrapf(types.ErrInvalidRequest, "pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != msg.Account {
		return errorsmod.Wrapf(types.ErrUnauthorized, "tx signer mismatch: signer=%q want=%q", env.Signer, msg.Account)
	}
	if err := verifyEnvelope(msg.PubKey, env); err != nil {
		return err
	}
	return consumeNonce(st, env.Signer, env.Nonce)
}

// consumeNonce enforces strictly increasing numeric nonces per signer.
func consumeNonce(st *state.State, signer, nonce string) error {
	n, err := strconv.ParseUint(nonce, 10, 64)
	if err != nil {
		return errorsmod.Wrapf(types.ErrUnauthorized, "invalid tx.nonce %q", nonce)
	}
	if last, ok := st.NonceMax[signer]; ok && n <= last {
		return errorsmod.Wrapf(types.ErrUnauthorized, "replayed tx.nonce: got %d, last accepted %d", n, last)
	}
	st.NonceMax[signer] = n
	return nil
}

func registerAccount(st *state.State, env codec.TxEnvelope, msg codec.AuthRegisterAccountTx) (*abci.ExecTxResult, error) {
	if err := requireUserAddress(msg.Account, "account"); err != nil {
		return nil, err
	}
	if err := requireRegisterAccountAuth(st, env, msg); err != nil {
		return nil, err
	}
	if existing, ok := st.AccountKeys[msg.Account]; ok && !bytes.Equal(existing, msg.PubKey) {
		return nil, errorsmod.Wrapf(types.ErrUnauthorized, "account %q already bound to a different key", msg.Account)
	}
	st.AccountKeys[msg.Account] = append([]byte(nil), msg.PubKey...)
	return eventResult(types.AccountKeyRegisteredEvent{Account: msg.Account}), nil
}
