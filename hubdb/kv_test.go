package hubdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ksubased/hub/common/dbutils"
)

func TestGetPutDelete(t *testing.T) {
	db := NewMemDatabase()
	defer db.Close()
	ctx := context.Background()

	if _, err := db.Get(ctx, dbutils.UserDataBucket, []byte("k")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}

	var batch Batch
	batch.Put(dbutils.UserDataBucket, []byte("k"), []byte("v"))
	if err := db.Commit(ctx, &batch); err != nil {
		t.Fatalf("commit: %v", err)
	}

	v, err := db.Get(ctx, dbutils.UserDataBucket, []byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(v, []byte("v")) {
		t.Errorf("expected v, got %x", v)
	}

	var del Batch
	del.Delete(dbutils.UserDataBucket, []byte("k"))
	if err := db.Commit(ctx, &del); err != nil {
		t.Fatalf("commit delete: %v", err)
	}
	if _, err := db.Get(ctx, dbutils.UserDataBucket, []byte("k")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestBatchIsAtomicPerCommit(t *testing.T) {
	db := NewMemDatabase()
	defer db.Close()
	ctx := context.Background()

	// a delete of a missing key inside a batch must not fail the batch
	var batch Batch
	batch.Delete(dbutils.UserDataBucket, []byte("missing"))
	batch.Put(dbutils.UserDataBucket, []byte("a"), []byte("1"))
	batch.Put(dbutils.UserDataBucket, []byte("b"), []byte("2"))
	if err := db.Commit(ctx, &batch); err != nil {
		t.Fatalf("commit: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if _, err := db.Get(ctx, dbutils.UserDataBucket, []byte(k)); err != nil {
			t.Errorf("key %s missing after commit: %v", k, err)
		}
	}

	// empty batch is a no-op
	if err := db.Commit(ctx, &Batch{}); err != nil {
		t.Errorf("empty batch: %v", err)
	}
	if err := db.Commit(ctx, nil); err != nil {
		t.Errorf("nil batch: %v", err)
	}
}

func TestWalkPrefix(t *testing.T) {
	db := NewMemDatabase()
	defer db.Close()
	ctx := context.Background()

	var batch Batch
	for i := 0; i < 5; i++ {
		batch.Put(dbutils.UserDataBucket, []byte(fmt.Sprintf("aa%02d", i)), []byte{byte(i)})
	}
	batch.Put(dbutils.UserDataBucket, []byte("ab00"), []byte{0xff})
	batch.Put(dbutils.UserDataBucket, []byte("a"), []byte{0xfe})
	if err := db.Commit(ctx, &batch); err != nil {
		t.Fatalf("commit: %v", err)
	}

	var keys []string
	if err := db.WalkPrefix(ctx, dbutils.UserDataBucket, []byte("aa"), func(k, v []byte) (bool, error) {
		keys = append(keys, string(k))
		return true, nil
	}); err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(keys) != 5 {
		t.Fatalf("expected 5 keys, got %d: %v", len(keys), keys)
	}
	// ascending order
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("keys out of order: %v", keys)
		}
	}

	// early stop
	seen := 0
	if err := db.WalkPrefix(ctx, dbutils.UserDataBucket, []byte("aa"), func(k, v []byte) (bool, error) {
		seen++
		return seen < 2, nil
	}); err != nil {
		t.Fatalf("walk: %v", err)
	}
	if seen != 2 {
		t.Errorf("expected walk to stop after 2, saw %d", seen)
	}

	// walker errors propagate
	walkErr := errors.New("boom")
	if err := db.WalkPrefix(ctx, dbutils.UserDataBucket, []byte("aa"), func(k, v []byte) (bool, error) {
		return false, walkErr
	}); !errors.Is(err, walkErr) {
		t.Errorf("expected walker error, got %v", err)
	}
}
