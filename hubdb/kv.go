package hubdb

import (
	"bytes"
	"context"
	"errors"

	"github.com/ksubased/hub/common"
)

// ErrKeyNotFound is returned by Get when the key is absent.
var ErrKeyNotFound = errors.New("db: key not found")

// KV is the handle to an ordered key-value engine. All buckets from
// dbutils.Buckets exist after Open.
type KV interface {
	View(ctx context.Context, f func(tx Tx) error) error
	Update(ctx context.Context, f func(tx Tx) error) error
	Close()
}

type Tx interface {
	Bucket(name string) Bucket
}

type Bucket interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Cursor() Cursor
}

// Cursor iterates a bucket in ascending key order. Returned slices are only
// valid until the next call; callers copy what they keep.
type Cursor interface {
	Seek(seek []byte) (key, value []byte, err error)
	Next() (key, value []byte, err error)
	Close()
}

// Batch accumulates puts and deletes to be applied in one atomic commit.
type Batch struct {
	ops []batchOp
}

type batchOp struct {
	bucket string
	key    []byte
	value  []byte
	del    bool
}

func (b *Batch) Put(bucket string, key, value []byte) {
	b.ops = append(b.ops, batchOp{bucket: bucket, key: common.CopyBytes(key), value: common.CopyBytes(value)})
}

func (b *Batch) Delete(bucket string, key []byte) {
	b.ops = append(b.ops, batchOp{bucket: bucket, key: common.CopyBytes(key), del: true})
}

func (b *Batch) Len() int { return len(b.ops) }

// Database is a thin object layer over a KV handle, in the spirit of the
// ObjectDatabase: copy-out point reads, prefix walks, atomic batch commits.
type Database struct {
	kv KV
}

func NewDatabase(kv KV) *Database {
	return &Database{kv: kv}
}

func (db *Database) KV() KV { return db.kv }

func (db *Database) Close() { db.kv.Close() }

// Get returns a copy of the value, or ErrKeyNotFound.
func (db *Database) Get(ctx context.Context, bucket string, key []byte) ([]byte, error) {
	var dat []byte
	err := db.kv.View(ctx, func(tx Tx) error {
		v, err := tx.Bucket(bucket).Get(key)
		if err != nil {
			return err
		}
		dat = common.CopyBytes(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dat, nil
}

// Walk iterates keys starting at startkey whose first fixedbits bits match it,
// calling walker for each pair. Walker returning false stops the walk.
func (db *Database) Walk(ctx context.Context, bucket string, startkey []byte, fixedbits int, walker func(k, v []byte) (bool, error)) error {
	fixedbytes, mask := common.Bytesmask(fixedbits)
	return db.kv.View(ctx, func(tx Tx) error {
		c := tx.Bucket(bucket).Cursor()
		defer c.Close()
		k, v, err := c.Seek(startkey)
		for k != nil {
			if err != nil {
				return err
			}
			if fixedbits > 0 {
				if len(k) < fixedbytes {
					break
				}
				if !bytes.Equal(k[:fixedbytes-1], startkey[:fixedbytes-1]) || (k[fixedbytes-1]&mask) != (startkey[fixedbytes-1]&mask) {
					break
				}
			}
			goOn, err := walker(k, v)
			if err != nil {
				return err
			}
			if !goOn {
				break
			}
			k, v, err = c.Next()
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// WalkPrefix is Walk over every key sharing the whole prefix.
func (db *Database) WalkPrefix(ctx context.Context, bucket string, prefix []byte, walker func(k, v []byte) (bool, error)) error {
	return db.Walk(ctx, bucket, prefix, 8*len(prefix), walker)
}

// Commit applies the batch atomically. Either every op is visible afterwards
// or none is.
func (db *Database) Commit(ctx context.Context, batch *Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}
	return db.kv.Update(ctx, func(tx Tx) error {
		for _, op := range batch.ops {
			b := tx.Bucket(op.bucket)
			if op.del {
				if err := b.Delete(op.key); err != nil {
					return err
				}
				continue
			}
			if err := b.Put(op.key, op.value); err != nil {
				return err
			}
		}
		return nil
	})
}
