package events

import (
	"testing"
	"time"
)

func TestNewAndParsePayload(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	env, err := New("s1", TypeBidPlaced, at, BidPlacedPayload{Captain: "Alice", Player: "Bravo", Amount: 35, PlacedAt: at})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if env.ID == "" || env.SessionID != "s1" {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp location = %v, want UTC", env.Timestamp.Location())
	}

	payload, err := ParsePayload(env)
	if err != nil {
		t.Fatalf("ParsePayload() error = %v", err)
	}
	bid, ok := payload.(*BidPlacedPayload)
	if !ok {
		t.Fatalf("payload type = %T, want *BidPlacedPayload", payload)
	}
	if got := bid.Message(); got != "Alice bid 35 for Bravo" {
		t.Errorf("Message() = %q", got)
	}
}

func TestParsePayloadUnknownType(t *testing.T) {
	payload, err := ParsePayload(Envelope{Type: "Mystery", Data: []byte(`{}`)})
	if err != nil || payload != nil {
		t.Fatalf("ParsePayload() = %v, %v, want nil, nil", payload, err)
	}

	if _, err := ParsePayload(Envelope{Type: TypeRoundTick, Data: []byte(`{`)}); err == nil {
		t.Fatalf("ParsePayload() with malformed data should fail")
	}
}

func TestFanout(t *testing.T) {
	var first, second []Type
	sink := Fanout{
		SinkFunc(func(e Envelope) { first = append(first, e.Type) }),
		nil,
		SinkFunc(func(e Envelope) { second = append(second, e.Type) }),
	}

	for _, typ := range []Type{TypeDraftStarted, TypeDraftCompleted} {
		env, _ := New("s1", typ, time.Now(), struct{}{})
		sink.Emit(env)
	}
	Discard.Emit(Envelope{})

	if len(first) != 2 || len(second) != 2 || first[1] != TypeDraftCompleted || second[0] != TypeDraftStarted {
		t.Fatalf("fanout delivered %v and %v", first, second)
	}
}
