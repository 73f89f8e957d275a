package store

import (
	"bytes"

	"github.com/ksubased/hub/core/message"
)

// decision of resolveConflict for one incoming/existing pair.
type decision int

const (
	// decisionAccept - no conflicting message exists, install the incoming one.
	decisionAccept decision = iota
	// decisionDuplicate - the incoming message is already stored; success, no-op.
	decisionDuplicate
	// decisionDiscard - the incoming message loses the conflict; success, no-op.
	decisionDiscard
	// decisionSupersede - the incoming message wins; the existing one is
	// deleted in the same batch that installs the incoming one.
	decisionSupersede
)

// resolveConflict decides between an incoming message and the existing
// message for the same (fid, target) pair. Last write wins by (timestamp,
// hash); on an exact tsHash tie across types the remove wins. Both arguments
// must carry valid hashes; existing may be nil.
func resolveConflict(incoming, existing *message.Message, removeType message.Type) decision {
	if existing == nil {
		return decisionAccept
	}
	incomingTsHash, err := incoming.TsHash()
	if err != nil {
		return decisionDiscard
	}
	existingTsHash, err := existing.TsHash()
	if err != nil {
		return decisionSupersede
	}
	switch bytes.Compare(incomingTsHash, existingTsHash) {
	case -1:
		return decisionDiscard
	case 1:
		return decisionSupersede
	}
	// Same tsHash. Same type means the byte-identical message was merged
	// before; across types the remove is preferred.
	if incoming.Type == existing.Type {
		return decisionDuplicate
	}
	if incoming.Type == removeType {
		return decisionSupersede
	}
	return decisionDiscard
}
