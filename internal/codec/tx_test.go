package codec

import (
	"encoding/json"
	"testing"
)

func TestDecodeTxEnvelope_OK(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"type":   TypeGameSubmitAttempt,
		"value":  map[string]any{"gameId": 9, "messageHash": []byte{1, 2, 3}},
		"nonce":  "1",
		"signer": "alice",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	env, err := DecodeTxEnvelope(b)
	if err != nil {
		t.Fatalf("DecodeTxEnvelope: %v", err)
	}
	if env.Type != TypeGameSubmitAttempt {
		t.Fatalf("unexpected type: %q", env.Type)
	}
	if env.Signer != "alice" || env.Nonce != "1" {
		t.Fatalf("unexpected auth fields: signer=%q nonce=%q", env.Signer, env.Nonce)
	}

	var msg GameSubmitAttemptTx
	if err := DecodeValue(env, &msg); err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if msg.GameID != 9 || len(msg.MessageHash) != 3 {
		t.Fatalf("unexpected msg: %#v", msg)
	}
}

func TestDecodeTxEnvelope_MissingType(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"value": map[string]any{"gameId": 1},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := DecodeTxEnvelope(b); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodeTxEnvelope_InvalidJSON(t *testing.T) {
	if _, err := DecodeTxEnvelope([]byte("{not json")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodeValue_MissingValue(t *testing.T) {
	env := TxEnvelope{Type: TypeMarketClaim}
	var msg MarketClaimWinningsTx
	if err := DecodeValue(env, &msg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodeValue_WrongShape(t *testing.T) {
	env := TxEnvelope{Type: TypeMarketPlace, Value: json.RawMessage(`{"amount":"lots"}`)}
	var msg MarketPlacePredictionTx
	if err := DecodeValue(env, &msg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGameResolveTx_WinnerOptional(t *testing.T) {
	var msg GameResolveTx
	if err := json.Unmarshal([]byte(`{"gameId":1,"outcome":"failed"}`), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Winner != nil {
		t.Fatalf("expected nil winner, got %q", *msg.Winner)
	}

	if err := json.Unmarshal([]byte(`{"gameId":1,"outcome":"breached","winner":"bob","winnerAccount":"bob"}`), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Winner == nil || *msg.Winner != "bob" {
		t.Fatalf("unexpected winner: %#v", msg.Winner)
	}
}
