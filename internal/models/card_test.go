package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCard_UnmarshalJSON(t *testing.T) {
	var cards []Card

	payload := `[{"object":"card","set":"neo","name":"Æther"}, {"set":"MH2","cmc":2.0}]`
	if err := json.Unmarshal([]byte(payload), &cards); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(cards))
	}

	if cards[0].Set != "neo" {
		t.Errorf("Expected set 'neo', got '%s'", cards[0].Set)
	}

	if string(cards[0].Raw) != `{"object":"card","set":"neo","name":"Æther"}` {
		t.Errorf("Raw payload not preserved: %s", cards[0].Raw)
	}

	if string(cards[1].Raw) != `{"set":"MH2","cmc":2.0}` {
		t.Errorf("Number text not preserved: %s", cards[1].Raw)
	}
}

func TestCard_UnmarshalJSON_MissingSet(t *testing.T) {
	var cards []Card

	err := json.Unmarshal([]byte(`[{"name":"No Set"}]`), &cards)
	if !errors.Is(err, ErrMissingSet) {
		t.Fatalf("Expected ErrMissingSet, got %v", err)
	}
}

func TestCard_UnmarshalJSON_NonStringSet(t *testing.T) {
	var card Card

	if err := json.Unmarshal([]byte(`{"set":42}`), &card); err == nil {
		t.Fatal("Expected error for numeric set code")
	}
}

func TestCard_UnmarshalJSON_NotObject(t *testing.T) {
	var cards []Card

	err := json.Unmarshal([]byte(`["neo"]`), &cards)
	if !errors.Is(err, ErrNotObject) {
		t.Fatalf("Expected ErrNotObject, got %v", err)
	}
}
