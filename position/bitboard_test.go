package position

import (
	"math/bits"
	"testing"
)

func TestBitboardMasks(t *testing.T) {
	var tests = []struct {
		name string
		mask uint64
	}{
		{"A", FileAMask}, {"B", FileBMask}, {"C", FileCMask}, {"D", FileDMask},
		{"E", FileEMask}, {"F", FileFMask}, {"G", FileGMask}, {"H", FileHMask},
		{"1", Rank1Mask}, {"2", Rank2Mask}, {"3", Rank3Mask}, {"4", Rank4Mask},
		{"5", Rank5Mask}, {"6", Rank6Mask}, {"7", Rank7Mask}, {"8", Rank8Mask},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if bits.OnesCount64(tt.mask) != 8 {
				t.Errorf("%s mask has %d bits set, want 8", tt.name, bits.OnesCount64(tt.mask))
			}
		})
	}
}

func TestMoreThanOne(t *testing.T) {
	var tests = []struct {
		name  string
		value uint64
		want  bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"far one", 1 << 5, false},
		{"farthest one", 1 << 63, false},
		{"two ones", 3, true},
		{"two ones apart", 1<<6 | 1<<25, true},
		{"three ones apart", 1<<6 | 1<<25 | 1<<36, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoreThanOne(tt.value); got != tt.want {
				t.Errorf("MoreThanOne(%#x) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFirstOne(t *testing.T) {
	var tests = []struct {
		name  string
		value uint64
	}{
		{"A", FileAMask}, {"B", FileBMask}, {"bishop", 0x0004085000500800},
		{"single low bit", 1}, {"single high bit", 1 << 63},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, want := FirstOne(tt.value), bits.TrailingZeros64(tt.value); got != want {
				t.Errorf("FirstOne(%#x) = %d, want %d", tt.value, got, want)
			}
		})
	}
}

func BenchmarkFirstOne(b *testing.B) {
	var value = uint64(0x0004085000500800)
	for n := 0; n < b.N; n++ {
		FirstOne(value)
	}
}
