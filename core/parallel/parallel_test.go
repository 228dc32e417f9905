package parallel

import (
	"sync/atomic"
	"testing"
)

func TestChunks(t *testing.T) {
	tests := []struct {
		name           string
		items, workers int
		want           [][2]int
	}{
		{"empty", 0, 4, nil},
		{"even", 6, 3, [][2]int{{0, 2}, {2, 4}, {4, 6}}},
		{"remainder first", 7, 3, [][2]int{{0, 3}, {3, 5}, {5, 7}}},
		{"more workers than items", 2, 8, [][2]int{{0, 1}, {1, 2}}},
		{"no workers", 3, 0, [][2]int{{0, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunks(tt.items, tt.workers)
			if len(got) != len(tt.want) {
				t.Fatalf("Chunks(%d, %d) = %v, want %v", tt.items, tt.workers, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParallelizeCoversEveryIndexOnce(t *testing.T) {
	for _, items := range []int{1, 5, 64, 1001} {
		hits := make([]int32, items)
		ParallelizeN(items, 7, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("items=%d: index %d visited %d times", items, i, h)
			}
		}
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(10, 10, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		if start != 0 || end != 10 {
			t.Errorf("sequential path got range [%d, %d)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("below threshold fn called %d times, want 1", calls)
	}

	ParallelizeWithThreshold(0, 0, func(int, int) {
		t.Error("fn must not run for zero items")
	})

	var total int64
	ParallelizeWithThreshold(100, 1, func(start, end int) {
		atomic.AddInt64(&total, int64(end-start))
	})
	if total != 100 {
		t.Errorf("parallel path covered %d items, want 100", total)
	}
}
