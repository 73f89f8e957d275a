package dbutils

import (
	"encoding/binary"
	"fmt"
)

const (
	// MaxFidLength - fids are opaque byte strings of 1..MaxFidLength bytes.
	MaxFidLength = 32
	// FidSegLength - encoded fid segment: fid right-padded with zeros to
	// MaxFidLength, followed by one length byte. Padding makes every key
	// position fixed-width; because the padding follows the fid bytes and
	// the length byte breaks ties between fids that differ only in trailing
	// zeros, encoded segments sort in the plain byte order of the fids.
	FidSegLength = MaxFidLength + 1

	// HashLength - width of a message hash.
	HashLength = 20
	// TimestampLength - big-endian seconds in Farcaster time.
	TimestampLength = 4
	// TsHashLength - timestamp followed by hash; sorts chronologically with
	// the hash as tiebreak.
	TsHashLength = TimestampLength + HashLength
)

// EncodeFid - fixed-width fid segment: fid bytes, zero padding, length byte.
func EncodeFid(fid []byte) ([]byte, error) {
	if len(fid) == 0 || len(fid) > MaxFidLength {
		return nil, fmt.Errorf("invalid fid length %d", len(fid))
	}
	seg := make([]byte, FidSegLength)
	copy(seg[:len(fid)], fid)
	seg[MaxFidLength] = byte(len(fid))
	return seg, nil
}

// DecodeFid - inverse of EncodeFid.
func DecodeFid(seg []byte) ([]byte, error) {
	if len(seg) != FidSegLength {
		return nil, fmt.Errorf("invalid fid segment length %d", len(seg))
	}
	l := int(seg[MaxFidLength])
	if l == 0 || l > MaxFidLength {
		return nil, fmt.Errorf("invalid fid length byte %d", l)
	}
	fid := make([]byte, l)
	copy(fid, seg[:l])
	return fid, nil
}

// NewTsHash - 4-byte big-endian timestamp followed by the message hash.
func NewTsHash(timestamp uint32, hash []byte) ([]byte, error) {
	if len(hash) != HashLength {
		return nil, fmt.Errorf("invalid hash length %d", len(hash))
	}
	tsHash := make([]byte, TsHashLength)
	binary.BigEndian.PutUint32(tsHash[:TimestampLength], timestamp)
	copy(tsHash[TimestampLength:], hash)
	return tsHash, nil
}

// SplitTsHash - inverse of NewTsHash.
func SplitTsHash(tsHash []byte) (uint32, []byte, error) {
	if len(tsHash) != TsHashLength {
		return 0, nil, fmt.Errorf("invalid tsHash length %d", len(tsHash))
	}
	ts := binary.BigEndian.Uint32(tsHash[:TimestampLength])
	hash := make([]byte, HashLength)
	copy(hash, tsHash[TimestampLength:])
	return ts, hash, nil
}

// UserKeyPrefix - RootPrefixUser + fid + postfix. Prefix of every key one
// store owns for one user.
func UserKeyPrefix(fid []byte, postfix byte) ([]byte, error) {
	seg, err := EncodeFid(fid)
	if err != nil {
		return nil, err
	}
	key := make([]byte, 0, 1+FidSegLength+1)
	key = append(key, RootPrefixUser)
	key = append(key, seg...)
	key = append(key, postfix)
	return key, nil
}

// MessageKey - primary blob key: UserKeyPrefix + tsHash.
func MessageKey(fid []byte, postfix byte, tsHash []byte) ([]byte, error) {
	if len(tsHash) != TsHashLength {
		return nil, fmt.Errorf("invalid tsHash length %d", len(tsHash))
	}
	prefix, err := UserKeyPrefix(fid, postfix)
	if err != nil {
		return nil, err
	}
	return append(prefix, tsHash...), nil
}

// ParseMessageKey - extracts (fid, postfix, tsHash) from a primary blob key.
func ParseMessageKey(key []byte) ([]byte, byte, []byte, error) {
	if len(key) != 1+FidSegLength+1+TsHashLength || key[0] != RootPrefixUser {
		return nil, 0, nil, fmt.Errorf("invalid message key %x", key)
	}
	fid, err := DecodeFid(key[1 : 1+FidSegLength])
	if err != nil {
		return nil, 0, nil, err
	}
	postfix := key[1+FidSegLength]
	tsHash := make([]byte, TsHashLength)
	copy(tsHash, key[1+FidSegLength+1:])
	return fid, postfix, tsHash, nil
}

// PairKey - pair index key: UserKeyPrefix + targetFid. Value is the tsHash of
// the message the entry points at.
func PairKey(fid []byte, postfix byte, targetFid []byte) ([]byte, error) {
	prefix, err := UserKeyPrefix(fid, postfix)
	if err != nil {
		return nil, err
	}
	targetSeg, err := EncodeFid(targetFid)
	if err != nil {
		return nil, err
	}
	return append(prefix, targetSeg...), nil
}

// ParsePairKey - extracts (fid, postfix, targetFid) from a pair index key.
func ParsePairKey(key []byte) ([]byte, byte, []byte, error) {
	if len(key) != 1+FidSegLength+1+FidSegLength || key[0] != RootPrefixUser {
		return nil, 0, nil, fmt.Errorf("invalid pair key %x", key)
	}
	fid, err := DecodeFid(key[1 : 1+FidSegLength])
	if err != nil {
		return nil, 0, nil, err
	}
	postfix := key[1+FidSegLength]
	target, err := DecodeFid(key[1+FidSegLength+1:])
	if err != nil {
		return nil, 0, nil, err
	}
	return fid, postfix, target, nil
}

// ByTargetKey - inverse index key: RootPrefixByTarget + targetFid + fid +
// tsHash. Written only for adds; value is empty.
func ByTargetKey(targetFid, fid, tsHash []byte) ([]byte, error) {
	if len(tsHash) != TsHashLength {
		return nil, fmt.Errorf("invalid tsHash length %d", len(tsHash))
	}
	targetSeg, err := EncodeFid(targetFid)
	if err != nil {
		return nil, err
	}
	fidSeg, err := EncodeFid(fid)
	if err != nil {
		return nil, err
	}
	key := make([]byte, 0, 1+2*FidSegLength+TsHashLength)
	key = append(key, RootPrefixByTarget)
	key = append(key, targetSeg...)
	key = append(key, fidSeg...)
	key = append(key, tsHash...)
	return key, nil
}

// ByTargetPrefix - prefix of every inverse index entry for one target.
func ByTargetPrefix(targetFid []byte) ([]byte, error) {
	targetSeg, err := EncodeFid(targetFid)
	if err != nil {
		return nil, err
	}
	key := make([]byte, 0, 1+FidSegLength)
	key = append(key, RootPrefixByTarget)
	key = append(key, targetSeg...)
	return key, nil
}

// ParseByTargetKey - extracts (targetFid, fid, tsHash) from an inverse index key.
func ParseByTargetKey(key []byte) ([]byte, []byte, []byte, error) {
	if len(key) != 1+2*FidSegLength+TsHashLength || key[0] != RootPrefixByTarget {
		return nil, nil, nil, fmt.Errorf("invalid by-target key %x", key)
	}
	target, err := DecodeFid(key[1 : 1+FidSegLength])
	if err != nil {
		return nil, nil, nil, err
	}
	fid, err := DecodeFid(key[1+FidSegLength : 1+2*FidSegLength])
	if err != nil {
		return nil, nil, nil, err
	}
	tsHash := make([]byte, TsHashLength)
	copy(tsHash, key[1+2*FidSegLength:])
	return target, fid, tsHash, nil
}
