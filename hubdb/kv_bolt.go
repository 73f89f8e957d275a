package hubdb

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledgerwatch/bolt"
	"github.com/ledgerwatch/log/v3"

	"github.com/ksubased/hub/common/dbutils"
)

// boltOpts - call chain: NewBolt().Path(p).Open() or NewBolt().InMem().MustOpen().
type boltOpts struct {
	path    string
	memOnly bool
}

func NewBolt() boltOpts { return boltOpts{} }

func (o boltOpts) Path(path string) boltOpts {
	o.path = path
	return o
}

func (o boltOpts) InMem() boltOpts {
	o.memOnly = true
	o.path = "in-memory"
	return o
}

func (o boltOpts) Open() (KV, error) {
	db, err := bolt.Open(o.path, 0600, &bolt.Options{
		MemOnly:                      o.memOnly,
		KeysPrefixCompressionDisable: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range dbutils.Buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name), false); err != nil {
				return err
			}
		}
		info := tx.Bucket([]byte(dbutils.DatabaseInfoBucket))
		return info.Put(dbutils.KeyCodecVersionKey, []byte{dbutils.KeyCodecVersion})
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &boltKV{db: db, log: log.New("db", "bolt")}, nil
}

func (o boltOpts) MustOpen() KV {
	kv, err := o.Open()
	if err != nil {
		panic(err)
	}
	return kv
}

type boltKV struct {
	db  *bolt.DB
	log log.Logger
}

func (kv *boltKV) View(_ context.Context, f func(tx Tx) error) error {
	return kv.db.View(func(tx *bolt.Tx) error {
		return f(&boltTx{tx: tx})
	})
}

func (kv *boltKV) Update(_ context.Context, f func(tx Tx) error) error {
	return kv.db.Update(func(tx *bolt.Tx) error {
		return f(&boltTx{tx: tx})
	})
}

func (kv *boltKV) Close() {
	if err := kv.db.Close(); err != nil {
		kv.log.Warn("failed to close db", "err", err)
	}
}

type boltTx struct {
	tx *bolt.Tx
}

func (tx *boltTx) Bucket(name string) Bucket {
	b := tx.tx.Bucket([]byte(name))
	if b == nil {
		panic(fmt.Sprintf("bucket %s is not in dbutils.Buckets", name))
	}
	return &boltBucket{b: b}
}

type boltBucket struct {
	b *bolt.Bucket
}

func (b *boltBucket) Get(key []byte) ([]byte, error) {
	k, v := b.b.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (b *boltBucket) Put(key, value []byte) error {
	return b.b.Put(key, value)
}

func (b *boltBucket) Delete(key []byte) error {
	return b.b.Delete(key)
}

func (b *boltBucket) Cursor() Cursor {
	return &boltCursor{c: b.b.Cursor()}
}

type boltCursor struct {
	c *bolt.Cursor
}

func (c *boltCursor) Seek(seek []byte) ([]byte, []byte, error) {
	k, v := c.c.Seek(seek)
	return k, v, nil
}

func (c *boltCursor) Next() ([]byte, []byte, error) {
	k, v := c.c.Next()
	return k, v, nil
}

func (c *boltCursor) Close() {}
