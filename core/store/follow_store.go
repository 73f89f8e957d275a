package store

import (
	"context"
	"errors"

	"github.com/ledgerwatch/log/v3"

	"github.com/ksubased/hub/common/dbutils"
	"github.com/ksubased/hub/core/fartime"
	"github.com/ksubased/hub/core/message"
	"github.com/ksubased/hub/hubdb"
)

// FollowStore holds the follow relationships of every user as a replicated
// set: at most one active FollowAdd or FollowRemove per (fid, target) pair,
// last write winning by (timestamp, hash) with remove preferred on an exact
// tie. Merge and PruneMessages must be serialized per fid by the caller;
// reads may run concurrently.
type FollowStore struct {
	db  *hubdb.Database
	bus *EventBus
	log log.Logger

	pruneSizeLimit int
	pruneTimeLimit uint32
}

func NewFollowStore(db *hubdb.Database, bus *EventBus, opts Options) *FollowStore {
	logger := opts.Logger
	if logger == nil {
		logger = log.New("store", "follows")
	}
	if bus == nil {
		bus = NewEventBus(logger)
	}
	sizeLimit := opts.PruneSizeLimit
	if sizeLimit == 0 {
		sizeLimit = DefaultPruneSizeLimit
	}
	return &FollowStore{
		db:             db,
		bus:            bus,
		log:            logger,
		pruneSizeLimit: sizeLimit,
		pruneTimeLimit: opts.PruneTimeLimit,
	}
}

// Bus - the event bus the store publishes on.
func (s *FollowStore) Bus() *EventBus { return s.bus }

func pairPostfix(t message.Type) byte {
	if t == message.TypeFollowAdd {
		return dbutils.FollowAddsPostfix
	}
	return dbutils.FollowRemovesPostfix
}

// Merge installs m, resolving any conflict with the existing message for the
// same (fid, target) pair. Losing or duplicate merges succeed as no-ops.
// The blob and all indexes change in one atomic batch; events fire after the
// commit, displaced messages first.
func (s *FollowStore) Merge(ctx context.Context, m *message.Message) error {
	if m == nil {
		return badRequest("nil message")
	}
	if m.Type != message.TypeFollowAdd && m.Type != message.TypeFollowRemove {
		return badRequest("message type %s is not a follow", m.Type)
	}
	if err := m.Validate(); err != nil {
		return badRequest("%s", err)
	}
	target := m.TargetFid()
	if len(target) == 0 || len(target) > dbutils.MaxFidLength {
		return badRequest("invalid target fid length %d", len(target))
	}

	var displaced []*message.Message
	for _, postfix := range []byte{dbutils.FollowAddsPostfix, dbutils.FollowRemovesPostfix} {
		existing, err := s.getByPair(ctx, m.Fid, postfix, target)
		if err != nil {
			if errors.Is(err, hubdb.ErrKeyNotFound) {
				continue
			}
			return unavailable(err)
		}
		switch resolveConflict(m, existing, message.TypeFollowRemove) {
		case decisionDuplicate, decisionDiscard:
			return nil
		case decisionSupersede:
			displaced = append(displaced, existing)
		}
	}

	batch := new(hubdb.Batch)
	for _, d := range displaced {
		if err := s.deleteFollowOps(batch, d); err != nil {
			return err
		}
	}
	if err := s.putFollowOps(batch, m); err != nil {
		return err
	}
	if err := s.db.Commit(ctx, batch); err != nil {
		s.log.Warn("merge commit failed", "fid", m.Fid, "err", err)
		return unavailable(err)
	}

	for _, d := range displaced {
		revokeCounter.Inc()
		s.bus.publish(EventRevokeMessage, d)
	}
	mergeCounter.Inc()
	s.bus.publish(EventMergeMessage, m)
	return nil
}

// putFollowOps appends the blob, the pair index and (for adds) the inverse
// index writes for m.
func (s *FollowStore) putFollowOps(batch *hubdb.Batch, m *message.Message) error {
	if err := putMessage(batch, m, dbutils.FollowMessagePostfix); err != nil {
		return err
	}
	tsHash, err := m.TsHash()
	if err != nil {
		return err
	}
	pairKey, err := dbutils.PairKey(m.Fid, pairPostfix(m.Type), m.TargetFid())
	if err != nil {
		return err
	}
	batch.Put(dbutils.UserDataBucket, pairKey, tsHash)
	if m.Type == message.TypeFollowAdd {
		byTargetKey, err := dbutils.ByTargetKey(m.TargetFid(), m.Fid, tsHash)
		if err != nil {
			return err
		}
		batch.Put(dbutils.UserDataBucket, byTargetKey, []byte{})
	}
	return nil
}

// deleteFollowOps appends deletions of the blob, the pair index and (for
// adds) the inverse index entry of m.
func (s *FollowStore) deleteFollowOps(batch *hubdb.Batch, m *message.Message) error {
	if err := deleteMessage(batch, m, dbutils.FollowMessagePostfix); err != nil {
		return err
	}
	pairKey, err := dbutils.PairKey(m.Fid, pairPostfix(m.Type), m.TargetFid())
	if err != nil {
		return err
	}
	batch.Delete(dbutils.UserDataBucket, pairKey)
	if m.Type == message.TypeFollowAdd {
		tsHash, err := m.TsHash()
		if err != nil {
			return err
		}
		byTargetKey, err := dbutils.ByTargetKey(m.TargetFid(), m.Fid, tsHash)
		if err != nil {
			return err
		}
		batch.Delete(dbutils.UserDataBucket, byTargetKey)
	}
	return nil
}

// getByPair dereferences a pair index entry to its blob.
func (s *FollowStore) getByPair(ctx context.Context, fid []byte, postfix byte, target []byte) (*message.Message, error) {
	pairKey, err := dbutils.PairKey(fid, postfix, target)
	if err != nil {
		return nil, badRequest("%s", err)
	}
	tsHash, err := s.db.Get(ctx, dbutils.UserDataBucket, pairKey)
	if err != nil {
		return nil, err
	}
	return getMessage(ctx, s.db, fid, dbutils.FollowMessagePostfix, tsHash)
}

// GetFollowAdd returns the active FollowAdd for (fid, target), or
// hubdb.ErrKeyNotFound.
func (s *FollowStore) GetFollowAdd(ctx context.Context, fid, target []byte) (*message.Message, error) {
	return s.getByPair(ctx, fid, dbutils.FollowAddsPostfix, target)
}

// GetFollowRemove returns the active FollowRemove for (fid, target), or
// hubdb.ErrKeyNotFound.
func (s *FollowStore) GetFollowRemove(ctx context.Context, fid, target []byte) (*message.Message, error) {
	return s.getByPair(ctx, fid, dbutils.FollowRemovesPostfix, target)
}

// getPairsByUser scans one pair index of a user and dereferences every entry.
// Results come back in target-fid byte order.
func (s *FollowStore) getPairsByUser(ctx context.Context, fid []byte, postfix byte) ([]*message.Message, error) {
	prefix, err := dbutils.UserKeyPrefix(fid, postfix)
	if err != nil {
		return nil, badRequest("%s", err)
	}
	var tsHashes [][]byte
	if err := s.db.WalkPrefix(ctx, dbutils.UserDataBucket, prefix, func(k, v []byte) (bool, error) {
		tsHashes = append(tsHashes, append([]byte(nil), v...))
		return true, nil
	}); err != nil {
		return nil, unavailable(err)
	}
	msgs := make([]*message.Message, 0, len(tsHashes))
	for _, tsHash := range tsHashes {
		m, err := getMessage(ctx, s.db, fid, dbutils.FollowMessagePostfix, tsHash)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// GetFollowsByUser returns every active FollowAdd of a user, in target-fid
// order. Empty slice when there are none.
func (s *FollowStore) GetFollowsByUser(ctx context.Context, fid []byte) ([]*message.Message, error) {
	return s.getPairsByUser(ctx, fid, dbutils.FollowAddsPostfix)
}

// GetFollowRemovesByUser returns every active FollowRemove of a user, in
// target-fid order.
func (s *FollowStore) GetFollowRemovesByUser(ctx context.Context, fid []byte) ([]*message.Message, error) {
	return s.getPairsByUser(ctx, fid, dbutils.FollowRemovesPostfix)
}

// GetFollowsByTargetUser returns every active FollowAdd targeting a user, in
// follower-fid order.
func (s *FollowStore) GetFollowsByTargetUser(ctx context.Context, target []byte) ([]*message.Message, error) {
	prefix, err := dbutils.ByTargetPrefix(target)
	if err != nil {
		return nil, badRequest("%s", err)
	}
	type ref struct {
		fid    []byte
		tsHash []byte
	}
	var refs []ref
	if err := s.db.WalkPrefix(ctx, dbutils.UserDataBucket, prefix, func(k, v []byte) (bool, error) {
		_, fid, tsHash, err := dbutils.ParseByTargetKey(k)
		if err != nil {
			return false, err
		}
		refs = append(refs, ref{fid: fid, tsHash: tsHash})
		return true, nil
	}); err != nil {
		return nil, unavailable(err)
	}
	msgs := make([]*message.Message, 0, len(refs))
	for _, r := range refs {
		m, err := getMessage(ctx, s.db, r.fid, dbutils.FollowMessagePostfix, r.tsHash)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// GetAllMessagesByFid returns every follow message of a user in ascending
// tsHash order, the same order the pruner walks.
func (s *FollowStore) GetAllMessagesByFid(ctx context.Context, fid []byte) ([]*message.Message, error) {
	prefix, err := dbutils.UserKeyPrefix(fid, dbutils.FollowMessagePostfix)
	if err != nil {
		return nil, badRequest("%s", err)
	}
	var msgs []*message.Message
	if err := s.db.WalkPrefix(ctx, dbutils.UserDataBucket, prefix, func(k, v []byte) (bool, error) {
		m, err := message.Decode(v)
		if err != nil {
			return false, err
		}
		msgs = append(msgs, m)
		return true, nil
	}); err != nil {
		return nil, unavailable(err)
	}
	return msgs, nil
}

// PruneMessages evicts the oldest follow messages of a fid until the size
// and age caps hold. Each eviction commits its own batch, so evictions
// before a failure stay applied; a pruneMessage event fires after each
// commit.
func (s *FollowStore) PruneMessages(ctx context.Context, fid []byte) error {
	all, err := s.GetAllMessagesByFid(ctx, fid)
	if err != nil {
		return err
	}

	var now uint32
	if s.pruneTimeLimit > 0 {
		now, err = fartime.FarcasterTime()
		if err != nil {
			return err
		}
	}

	remaining := len(all)
	var evict []*message.Message
	for _, m := range all {
		// clock gone backwards reads as not stale
		stale := s.pruneTimeLimit > 0 && now > m.Timestamp && now-m.Timestamp > s.pruneTimeLimit
		oversize := s.pruneSizeLimit > 0 && remaining > s.pruneSizeLimit
		if !stale && !oversize {
			break
		}
		evict = append(evict, m)
		remaining--
	}

	for _, m := range evict {
		batch := new(hubdb.Batch)
		if err := s.deleteFollowOps(batch, m); err != nil {
			return err
		}
		if err := s.db.Commit(ctx, batch); err != nil {
			s.log.Warn("prune commit failed", "fid", fid, "err", err)
			return unavailable(err)
		}
		pruneCounter.Inc()
		s.bus.publish(EventPruneMessage, m)
	}
	return nil
}
