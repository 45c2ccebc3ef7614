package obs

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestEventLinesAreJSON(t *testing.T) {
	Info("test event", "account_id", "100", "count", 3)

	lines := Tail(1)
	if len(lines) != 1 {
		t.Fatalf("Tail(1) returned %d lines, want 1", len(lines))
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("tail line is not JSON: %v", err)
	}
	if entry["msg"] != "test event" {
		t.Fatalf("msg = %v, want %q", entry["msg"], "test event")
	}
	if entry["level"] != "info" {
		t.Fatalf("level = %v, want info", entry["level"])
	}
	if entry["account_id"] != "100" {
		t.Fatalf("account_id = %v, want 100", entry["account_id"])
	}
}

func TestTailOrderAndBound(t *testing.T) {
	for i := 0; i < tailCapacity+25; i++ {
		Info(fmt.Sprintf("line %d", i))
	}

	lines := Tail(tailCapacity + 100)
	if len(lines) != tailCapacity {
		t.Fatalf("Tail returned %d lines, want %d", len(lines), tailCapacity)
	}

	var first, last map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal first: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &last); err != nil {
		t.Fatalf("unmarshal last: %v", err)
	}
	if first["msg"] == last["msg"] {
		t.Fatalf("expected distinct oldest/newest lines, both %v", first["msg"])
	}
	if last["msg"] != fmt.Sprintf("line %d", tailCapacity+24) {
		t.Fatalf("newest line = %v", last["msg"])
	}
}

func TestTailZero(t *testing.T) {
	if got := Tail(0); got != nil {
		t.Fatalf("Tail(0) = %v, want nil", got)
	}
}
