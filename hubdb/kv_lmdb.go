package hubdb

import (
	"context"
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/ledgerwatch/lmdb-go/lmdb"
	"github.com/ledgerwatch/log/v3"

	"github.com/ksubased/hub/common/dbutils"
)

// LMDBDefaultMapSize - LMDB needs the map size declared up front; the file
// only grows to what is actually written.
const LMDBDefaultMapSize = 2 * datasize.TB

type lmdbOpts struct {
	path    string
	mapSize datasize.ByteSize
	noSync  bool
}

func NewLMDB() lmdbOpts { return lmdbOpts{mapSize: LMDBDefaultMapSize} }

func (o lmdbOpts) Path(path string) lmdbOpts {
	o.path = path
	return o
}

func (o lmdbOpts) MapSize(sz datasize.ByteSize) lmdbOpts {
	o.mapSize = sz
	return o
}

// NoSync - trade durability for speed. Test databases only.
func (o lmdbOpts) NoSync() lmdbOpts {
	o.noSync = true
	return o
}

func (o lmdbOpts) Open() (KV, error) {
	env, err := lmdb.NewEnv()
	if err != nil {
		return nil, err
	}
	if err = env.SetMaxDBs(len(dbutils.Buckets) + len(dbutils.DeprecatedBuckets)); err != nil {
		return nil, err
	}
	if err = env.SetMapSize(int64(o.mapSize.Bytes())); err != nil {
		return nil, err
	}
	if err = os.MkdirAll(o.path, 0744); err != nil {
		return nil, err
	}
	var flags uint = lmdb.NoReadahead
	if o.noSync {
		flags |= lmdb.NoSync | lmdb.NoMetaSync
	}
	if err = env.Open(o.path, flags, 0664); err != nil {
		return nil, err
	}

	kv := &lmdbKV{
		env:  env,
		dbis: map[string]lmdb.DBI{},
		log:  log.New("db", "lmdb", "path", o.path),
	}
	if err := env.Update(func(txn *lmdb.Txn) error {
		for _, name := range dbutils.Buckets {
			dbi, err := txn.OpenDBI(name, lmdb.Create)
			if err != nil {
				return err
			}
			kv.dbis[name] = dbi
		}
		return txn.Put(kv.dbis[dbutils.DatabaseInfoBucket], dbutils.KeyCodecVersionKey, []byte{dbutils.KeyCodecVersion}, 0)
	}); err != nil {
		env.Close()
		return nil, err
	}
	return kv, nil
}

func (o lmdbOpts) MustOpen() KV {
	kv, err := o.Open()
	if err != nil {
		panic(err)
	}
	return kv
}

type lmdbKV struct {
	env  *lmdb.Env
	dbis map[string]lmdb.DBI
	log  log.Logger
}

func (kv *lmdbKV) View(_ context.Context, f func(tx Tx) error) error {
	return kv.env.View(func(txn *lmdb.Txn) error {
		txn.RawRead = true
		return f(&lmdbTx{kv: kv, txn: txn})
	})
}

func (kv *lmdbKV) Update(_ context.Context, f func(tx Tx) error) error {
	return kv.env.Update(func(txn *lmdb.Txn) error {
		txn.RawRead = true
		return f(&lmdbTx{kv: kv, txn: txn})
	})
}

func (kv *lmdbKV) Close() {
	if err := kv.env.Close(); err != nil {
		kv.log.Warn("failed to close environment", "err", err)
	}
}

type lmdbTx struct {
	kv  *lmdbKV
	txn *lmdb.Txn
}

func (tx *lmdbTx) Bucket(name string) Bucket {
	dbi, ok := tx.kv.dbis[name]
	if !ok {
		panic(fmt.Sprintf("bucket %s is not in dbutils.Buckets", name))
	}
	return &lmdbBucket{txn: tx.txn, dbi: dbi}
}

type lmdbBucket struct {
	txn *lmdb.Txn
	dbi lmdb.DBI
}

func (b *lmdbBucket) Get(key []byte) ([]byte, error) {
	v, err := b.txn.Get(b.dbi, key)
	if err != nil {
		if lmdb.IsNotFound(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return v, nil
}

func (b *lmdbBucket) Put(key, value []byte) error {
	return b.txn.Put(b.dbi, key, value, 0)
}

func (b *lmdbBucket) Delete(key []byte) error {
	err := b.txn.Del(b.dbi, key, nil)
	if lmdb.IsNotFound(err) {
		return nil
	}
	return err
}

func (b *lmdbBucket) Cursor() Cursor {
	c, err := b.txn.OpenCursor(b.dbi)
	if err != nil {
		panic(err)
	}
	return &lmdbCursor{c: c}
}

type lmdbCursor struct {
	c *lmdb.Cursor
}

func (c *lmdbCursor) Seek(seek []byte) ([]byte, []byte, error) {
	var k, v []byte
	var err error
	if len(seek) == 0 {
		k, v, err = c.c.Get(nil, nil, lmdb.First)
	} else {
		k, v, err = c.c.Get(seek, nil, lmdb.SetRange)
	}
	if err != nil {
		if lmdb.IsNotFound(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return k, v, nil
}

func (c *lmdbCursor) Next() ([]byte, []byte, error) {
	k, v, err := c.c.Get(nil, nil, lmdb.Next)
	if err != nil {
		if lmdb.IsNotFound(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return k, v, nil
}

func (c *lmdbCursor) Close() {
	c.c.Close()
}
