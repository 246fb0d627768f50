package record

import (
	"math"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"nil equal", nil, nil, 0},
		{"nil before bool", nil, false, -1},
		{"false before true", false, true, -1},
		{"bool before number", true, int64(0), -1},
		{"int and float numeric", 2, 2.0, 0},
		{"int less than float", 1, 1.5, -1},
		{"number before string", 100, "1", -1},
		{"strings bytewise", "b", "a", 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compare(tc.a, tc.b); got != tc.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCompareKeys(t *testing.T) {
	if CompareKeys(Key{1, "a"}, Key{1, "b"}) >= 0 {
		t.Error("expected (1, a) < (1, b)")
	}
	if CompareKeys(Key{}, Key{}) != 0 {
		t.Error("expected empty keys to be equal")
	}
	if CompareKeys(Key{1}, Key{1, nil}) >= 0 {
		t.Error("expected shorter prefix to sort first")
	}
}

func TestKeyString_EqualKeysRenderIdentically(t *testing.T) {
	a, b := Key{int64(3)}, Key{3.0}
	if a.String() != b.String() {
		t.Errorf("expected %s and %s to match", a, b)
	}
	if (Key{"3"}).String() == (Key{3}).String() {
		t.Error("string and number keys must differ")
	}
}

func TestNormalize(t *testing.T) {
	if _, ok := Normalize(7).(int64); !ok {
		t.Error("expected int to normalize to int64")
	}
	if _, ok := Normalize(float32(1.5)).(float64); !ok {
		t.Error("expected float32 to normalize to float64")
	}
	if Normalize("x") != "x" {
		t.Error("expected strings to pass through")
	}
}

func TestNormalize_LargeUnsigned(t *testing.T) {
	if got := Normalize(uint64(math.MaxInt64)); got != int64(math.MaxInt64) {
		t.Errorf("expected MaxInt64 to stay int64, got %T %v", got, got)
	}
	big := Normalize(uint64(math.MaxUint64))
	f, ok := big.(float64)
	if !ok || f <= 0 {
		t.Fatalf("expected a positive float64, got %T %v", big, big)
	}
	if Compare(uint64(math.MaxUint64), int64(1)) <= 0 {
		t.Error("expected the large unsigned value to sort after 1")
	}
}
