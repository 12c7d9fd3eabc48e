package rostime

import "testing"

func TestTimeNormalization(t *testing.T) {
	tests := []struct {
		name     string
		sec      uint32
		nsec     uint32
		wantSec  uint32
		wantNsec uint32
	}{
		{"already normalized", 5, 100, 5, 100},
		{"exact overflow", 100, 2_000_003_000, 102, 3000},
		{"zero", 0, 0, 0, 0},
		{"one full second", 0, 1_000_000_000, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTime(tt.sec, tt.nsec)
			if got.Sec != tt.wantSec || got.Nsec != tt.wantNsec {
				t.Errorf("NewTime(%d,%d) = (%d,%d), want (%d,%d)",
					tt.sec, tt.nsec, got.Sec, got.Nsec, tt.wantSec, tt.wantNsec)
			}
		})
	}
}

func TestTimeAddDuration(t *testing.T) {
	tests := []struct {
		name string
		t    Time
		d    Duration
		want Time
	}{
		{"whole seconds", NewTime(100, 0), NewDuration(100, 0), NewTime(200, 0)},
		{"sub-second", NewTime(0, 100000), NewDuration(0, 100), NewTime(0, 100100)},
		{"carries into seconds", NewTime(0, 0), NewDuration(10, 2_000_003_000), NewTime(12, 3000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.t.Add(tt.d)
			if got != tt.want {
				t.Errorf("%v.Add(%v) = %v, want %v", tt.t, tt.d, got, tt.want)
			}
		})
	}
}

func TestTimeSubDuration(t *testing.T) {
	got := NewTime(30, 0).SubDuration(NewDuration(10, 2_000_003_000))
	want := NewTime(17, 999_997_000)
	if got != want {
		t.Errorf("SubDuration = %v, want %v", got, want)
	}
}

func TestTimeRoundTripFromSec(t *testing.T) {
	values := []Time{
		NewTime(0, 0),
		NewTime(1, 500_000_000),
		NewTime(1_700_000_000, 123_456_789),
	}
	for _, v := range values {
		got := FromSec(v.ToSec()).ToSec()
		if got != v.ToSec() {
			t.Errorf("round trip: FromSec(%v.ToSec()).ToSec() = %v, want %v", v, got, v.ToSec())
		}
	}
}

func TestDurationAdditiveInverse(t *testing.T) {
	d := NewDuration(5, 250_000_000)
	sum := d.Add(d.Neg())
	if !sum.IsZero() {
		t.Errorf("d + (-d) = %v, want zero", sum)
	}
}

func TestDurationAddSubIdentity(t *testing.T) {
	a := NewDuration(3, 100)
	b := NewDuration(7, 900_000_000)
	got := a.Add(b).Sub(b)
	if got.Compare(a) != 0 {
		t.Errorf("(a+b)-b = %v, want %v", got, a)
	}
}

func TestTimeCompareTotalOrder(t *testing.T) {
	a := NewTime(5, 0)
	b := NewTime(5, 1)
	c := NewTime(6, 0)
	if a.Compare(b) >= 0 {
		t.Errorf("expected a < b")
	}
	if b.Compare(c) >= 0 {
		t.Errorf("expected b < c")
	}
	if a.Compare(a) != 0 {
		t.Errorf("expected a == a")
	}
}

func TestTimeIsZero(t *testing.T) {
	if !(Time{}).IsZero() {
		t.Error("zero-value Time should be IsZero")
	}
	if NewTime(0, 1).IsZero() {
		t.Error("Time{0,1} should not be IsZero")
	}
}
