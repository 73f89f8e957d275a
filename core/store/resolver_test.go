package store

import (
	"bytes"
	"testing"

	"github.com/ksubased/hub/common/dbutils"
	"github.com/ksubased/hub/core/message"
)

func followMessage(t message.Type, ts uint32, hashByte byte, fid, target string) *message.Message {
	return &message.Message{
		Fid:       []byte(fid),
		Type:      t,
		Timestamp: ts,
		Hash:      bytes.Repeat([]byte{hashByte}, dbutils.HashLength),
		Body:      message.Body{User: []byte(target)},
	}
}

func TestResolveConflict(t *testing.T) {
	add := func(ts uint32, hashByte byte) *message.Message {
		return followMessage(message.TypeFollowAdd, ts, hashByte, "alice", "bob")
	}
	remove := func(ts uint32, hashByte byte) *message.Message {
		return followMessage(message.TypeFollowRemove, ts, hashByte, "alice", "bob")
	}

	// No existing message
	if d := resolveConflict(add(100, 0x01), nil, message.TypeFollowRemove); d != decisionAccept {
		t.Errorf("expected accept, got %d", d)
	}

	// Later timestamp wins
	if d := resolveConflict(add(101, 0x01), add(100, 0x02), message.TypeFollowRemove); d != decisionSupersede {
		t.Errorf("expected supersede, got %d", d)
	}

	// Earlier timestamp loses
	if d := resolveConflict(add(100, 0x02), add(101, 0x01), message.TypeFollowRemove); d != decisionDiscard {
		t.Errorf("expected discard, got %d", d)
	}

	// Same timestamp, hash breaks the tie
	if d := resolveConflict(add(100, 0x02), add(100, 0x01), message.TypeFollowRemove); d != decisionSupersede {
		t.Errorf("expected supersede on higher hash, got %d", d)
	}
	if d := resolveConflict(add(100, 0x01), add(100, 0x02), message.TypeFollowRemove); d != decisionDiscard {
		t.Errorf("expected discard on lower hash, got %d", d)
	}

	// Byte-identical message is a duplicate
	if d := resolveConflict(add(100, 0x01), add(100, 0x01), message.TypeFollowRemove); d != decisionDuplicate {
		t.Errorf("expected duplicate, got %d", d)
	}
	if d := resolveConflict(remove(100, 0x01), remove(100, 0x01), message.TypeFollowRemove); d != decisionDuplicate {
		t.Errorf("expected duplicate for removes, got %d", d)
	}

	// Later message wins across types in both directions
	if d := resolveConflict(remove(101, 0x01), add(100, 0x01), message.TypeFollowRemove); d != decisionSupersede {
		t.Errorf("expected remove at t+1 to supersede add, got %d", d)
	}
	if d := resolveConflict(add(101, 0x01), remove(100, 0x01), message.TypeFollowRemove); d != decisionSupersede {
		t.Errorf("expected add at t+1 to supersede remove, got %d", d)
	}

	// Exact tsHash tie across types: remove wins
	if d := resolveConflict(remove(100, 0x01), add(100, 0x01), message.TypeFollowRemove); d != decisionSupersede {
		t.Errorf("expected remove to win exact tie, got %d", d)
	}
	if d := resolveConflict(add(100, 0x01), remove(100, 0x01), message.TypeFollowRemove); d != decisionDiscard {
		t.Errorf("expected add to lose exact tie, got %d", d)
	}
}
