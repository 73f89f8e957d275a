// Package store implements the per-message-type CRDT stores of the hub over
// an ordered key-value engine. Each store keeps a primary blob region plus
// derived indexes, resolves concurrent conflicts deterministically, and
// publishes change events after every commit.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledgerwatch/log/v3"

	"github.com/ksubased/hub/common/dbutils"
	"github.com/ksubased/hub/core/message"
	"github.com/ksubased/hub/hubdb"
)

var (
	// ErrBadRequest - the message or key arguments fail validation, or the
	// message type is not handled by the store.
	ErrBadRequest = errors.New("store: bad request")
	// ErrUnavailable - the underlying database returned an error.
	ErrUnavailable = errors.New("store: database unavailable")
)

// DefaultPruneSizeLimit - per-fid message cap when none is configured.
const DefaultPruneSizeLimit = 10_000

// Options configure a store at construction. Both prune limits are optional;
// when both are set both apply.
type Options struct {
	// PruneSizeLimit - max messages kept per fid. 0 means DefaultPruneSizeLimit.
	PruneSizeLimit int
	// PruneTimeLimit - max message age in Farcaster seconds. 0 disables the age cap.
	PruneTimeLimit uint32
	Logger         log.Logger
}

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, err)
}

// putMessage appends the blob write for m to the batch.
func putMessage(batch *hubdb.Batch, m *message.Message, postfix byte) error {
	tsHash, err := m.TsHash()
	if err != nil {
		return err
	}
	key, err := dbutils.MessageKey(m.Fid, postfix, tsHash)
	if err != nil {
		return err
	}
	data, err := message.Encode(m)
	if err != nil {
		return err
	}
	batch.Put(dbutils.UserDataBucket, key, data)
	return nil
}

// getMessage loads and decodes the blob under (fid, postfix, tsHash).
// Returns hubdb.ErrKeyNotFound when the key is absent.
func getMessage(ctx context.Context, db *hubdb.Database, fid []byte, postfix byte, tsHash []byte) (*message.Message, error) {
	key, err := dbutils.MessageKey(fid, postfix, tsHash)
	if err != nil {
		return nil, err
	}
	data, err := db.Get(ctx, dbutils.UserDataBucket, key)
	if err != nil {
		return nil, err
	}
	return message.Decode(data)
}

// deleteMessage appends the blob deletion for m to the batch.
func deleteMessage(batch *hubdb.Batch, m *message.Message, postfix byte) error {
	tsHash, err := m.TsHash()
	if err != nil {
		return err
	}
	key, err := dbutils.MessageKey(m.Fid, postfix, tsHash)
	if err != nil {
		return err
	}
	batch.Delete(dbutils.UserDataBucket, key)
	return nil
}
