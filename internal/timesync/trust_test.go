package timesync

import "testing"

func TestClassify_Boundaries(t *testing.T) {
	const base = Instant(1_700_000_000)
	cases := []struct {
		ageSec int64
		want   TrustLevel
	}{
		{0, TrustFresh},
		{3599, TrustFresh},
		{3600, TrustMarginal},
		{86399, TrustMarginal},
		{86400, TrustLost},
		{1_000_000, TrustLost},
	}
	for _, tc := range cases {
		got := Classify(base+Instant(tc.ageSec), base)
		if got != tc.want {
			t.Errorf("Classify(age=%d) = %v, want %v", tc.ageSec, got, tc.want)
		}
	}
}

func TestClassify_NeverSynced(t *testing.T) {
	if got := Classify(1_700_000_000, 0); got != TrustLost {
		t.Fatalf("Classify with unset lastSync = %v, want lost", got)
	}
}

func TestClassify_MonotonicNonIncreasing(t *testing.T) {
	const base = Instant(1_700_000_000)
	prev := Classify(base, base)
	for age := int64(1); age <= 100_000; age += 997 {
		cur := Classify(base+Instant(age), base)
		if cur > prev {
			t.Fatalf("trust increased with age: %v -> %v at age %d", prev, cur, age)
		}
		prev = cur
	}
}
