package fartime

import (
	"testing"
)

func TestRoundTrip(t *testing.T) {
	for _, ms := range []int64{FarcasterEpochMs, FarcasterEpochMs + 1000, FarcasterEpochMs + 3600*1000} {
		ft, err := ToFarcasterTime(ms)
		if err != nil {
			t.Fatalf("ToFarcasterTime(%d): %v", ms, err)
		}
		if back := FromFarcasterTime(ft); back != ms {
			t.Errorf("round trip %d -> %d -> %d", ms, ft, back)
		}
	}
}

func TestSubSecondTruncation(t *testing.T) {
	ft, err := ToFarcasterTime(FarcasterEpochMs + 1999)
	if err != nil {
		t.Fatal(err)
	}
	if ft != 1 {
		t.Errorf("expected 1, got %d", ft)
	}
}

func TestBeforeEpoch(t *testing.T) {
	if _, err := ToFarcasterTime(FarcasterEpochMs - 1); err == nil {
		t.Error("expected error for pre-epoch time")
	}
}

func TestFarcasterTimeIsRecent(t *testing.T) {
	now, err := FarcasterTime()
	if err != nil {
		t.Fatal(err)
	}
	if now == 0 {
		t.Error("expected non-zero current farcaster time")
	}
}
