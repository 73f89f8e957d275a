package dbutils

import (
	"sort"
	"strings"
)

// Buckets
var (
	// UserDataBucket holds every key shape of the per-user message stores.
	/*
		Logical layout:
			Primary blobs:
			  key - RootPrefixUser + fid + message postfix + tsHash
			  value - message encoded with CBOR
			Pair indexes:
			  key - RootPrefixUser + fid + adds/removes postfix + targetFid
			  value - tsHash of the message the entry points at
			Inverse index:
			  key - RootPrefixByTarget + targetFid + fid + tsHash
			  value - empty (presence only, written for adds)

		All segments are fixed width (fids are padded, see composite_keys.go),
		so a prefix scan over [RootPrefixUser + fid + message postfix]
		enumerates one store's blobs for one user in tsHash (chronological)
		order, a scan over [RootPrefixUser + fid + adds/removes postfix]
		enumerates pair entries in target fid order, and a scan over
		[RootPrefixByTarget + targetFid] enumerates followers in fid order.
	*/
	UserDataBucket = "UserData"

	// DatabaseInfoBucket is used to store information about data layout.
	DatabaseInfoBucket = "DbInfo"
)

// Keys
var (
	// KeyCodecVersionKey - value is a single byte, currently KeyCodecVersion.
	// Bump it together with any change to fid padding or key widths.
	KeyCodecVersionKey = []byte("KeyCodecVersion")
)

// Root prefixes - first byte of every key in UserDataBucket.
// Values are arbitrary but must never change between versions.
const (
	RootPrefixUser     byte = 0x01
	RootPrefixByTarget byte = 0x02
)

// User postfixes - the byte after the fid segment, identifying which store
// and which index a key belongs to. Lower values are reserved for the cast
// and reaction stores.
const (
	FollowMessagePostfix byte = 0x05
	FollowAddsPostfix    byte = 0x06
	FollowRemovesPostfix byte = 0x07
)

// KeyCodecVersion - current version of the composite key encoding.
const KeyCodecVersion byte = 1

// Buckets - list of all buckets. Backends create every bucket in this list on
// open and will panic if asked for one that is not here.
// This list will be sorted in `init` method.
var Buckets = []string{
	UserDataBucket,
	DatabaseInfoBucket,
}

// DeprecatedBuckets - list of buckets which can be programmatically deleted,
// for example after a layout change. Empty for now.
var DeprecatedBuckets = []string{}

func sortBuckets() {
	sort.SliceStable(Buckets, func(i, j int) bool {
		return strings.Compare(Buckets[i], Buckets[j]) < 0
	})
}

func init() {
	sortBuckets()
}
