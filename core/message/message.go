// Package message defines the signed message envelope the per-type stores
// persist. Envelope construction and signature validation happen upstream;
// here the hash is an opaque byte string with a total order.
package message

import (
	"bytes"
	"fmt"

	"github.com/ksubased/hub/common/dbutils"
)

// Type tags the payload kind of a message. Values are part of the wire and
// storage format and must never change.
type Type uint8

const (
	TypeCastAdd            Type = 1
	TypeCastRemove         Type = 2
	TypeReactionAdd        Type = 3
	TypeReactionRemove     Type = 4
	TypeFollowAdd          Type = 5
	TypeFollowRemove       Type = 6
	TypeVerificationAdd    Type = 7
	TypeVerificationRemove Type = 8
	TypeSignerAdd          Type = 9
	TypeSignerRemove       Type = 10
	TypeUserDataAdd        Type = 11
)

func (t Type) String() string {
	switch t {
	case TypeCastAdd:
		return "CastAdd"
	case TypeCastRemove:
		return "CastRemove"
	case TypeReactionAdd:
		return "ReactionAdd"
	case TypeReactionRemove:
		return "ReactionRemove"
	case TypeFollowAdd:
		return "FollowAdd"
	case TypeFollowRemove:
		return "FollowRemove"
	case TypeVerificationAdd:
		return "VerificationAdd"
	case TypeVerificationRemove:
		return "VerificationRemove"
	case TypeSignerAdd:
		return "SignerAdd"
	case TypeSignerRemove:
		return "SignerRemove"
	case TypeUserDataAdd:
		return "UserDataAdd"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Body carries the typed payload. For follow messages User is the target fid.
type Body struct {
	_struct bool   `codec:",toarray"`
	User    []byte `codec:"user"`
}

// Message is immutable once constructed. Timestamp is seconds in Farcaster
// time; Hash is a fixed-width digest of the signed envelope.
type Message struct {
	_struct   bool   `codec:",toarray"`
	Fid       []byte `codec:"fid"`
	Type      Type   `codec:"type"`
	Timestamp uint32 `codec:"ts"`
	Hash      []byte `codec:"hash"`
	Body      Body   `codec:"body"`
}

// TsHash - the message identity key: big-endian timestamp followed by hash.
func (m *Message) TsHash() ([]byte, error) {
	return dbutils.NewTsHash(m.Timestamp, m.Hash)
}

// TargetFid - accessor for body.user.
func (m *Message) TargetFid() []byte {
	return m.Body.User
}

// Equal reports whether two messages are byte-identical.
func (m *Message) Equal(other *Message) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(m.Fid, other.Fid) &&
		m.Type == other.Type &&
		m.Timestamp == other.Timestamp &&
		bytes.Equal(m.Hash, other.Hash) &&
		bytes.Equal(m.Body.User, other.Body.User)
}

// Validate checks the envelope fields every store relies on (fid and hash
// lengths). The payload, body.user included, is validated by the owning store.
func (m *Message) Validate() error {
	if len(m.Fid) == 0 || len(m.Fid) > dbutils.MaxFidLength {
		return fmt.Errorf("invalid fid length %d", len(m.Fid))
	}
	if len(m.Hash) != dbutils.HashLength {
		return fmt.Errorf("invalid hash length %d", len(m.Hash))
	}
	return nil
}
