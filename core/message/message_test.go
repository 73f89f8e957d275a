package message

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksubased/hub/common/dbutils"
)

func testMessage() *Message {
	return &Message{
		Fid:       []byte("alice"),
		Type:      TypeFollowAdd,
		Timestamp: 100,
		Hash:      bytes.Repeat([]byte{0xab}, dbutils.HashLength),
		Body:      Body{User: []byte("bob")},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := testMessage()
	data, err := Encode(m)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, m.Equal(back))
}

func TestEncodeIsByteStable(t *testing.T) {
	m := testMessage()
	first, err := Encode(m)
	require.NoError(t, err)

	back, err := Decode(first)
	require.NoError(t, err)
	second, err := Encode(back)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTsHash(t *testing.T) {
	m := testMessage()
	tsHash, err := m.TsHash()
	require.NoError(t, err)
	require.Len(t, tsHash, dbutils.TsHashLength)

	ts, hash, err := dbutils.SplitTsHash(tsHash)
	require.NoError(t, err)
	assert.Equal(t, m.Timestamp, ts)
	assert.Equal(t, m.Hash, hash)
}

func TestValidate(t *testing.T) {
	m := testMessage()
	require.NoError(t, m.Validate())

	bad := *m
	bad.Fid = nil
	assert.Error(t, bad.Validate())

	bad = *m
	bad.Fid = bytes.Repeat([]byte{1}, dbutils.MaxFidLength+1)
	assert.Error(t, bad.Validate())

	bad = *m
	bad.Hash = []byte{0x01}
	assert.Error(t, bad.Validate())
}

func TestEqual(t *testing.T) {
	m := testMessage()
	other := testMessage()
	assert.True(t, m.Equal(other))

	other.Timestamp++
	assert.False(t, m.Equal(other))
	assert.False(t, m.Equal(nil))
}
