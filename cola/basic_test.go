package cola

import (
	"math/rand"
	"testing"
)

func TestBasicAddContains(t *testing.T) {
	b := NewBasic()
	for _, v := range []int64{1, 2, 6, 4, 3, 10} {
		b.Add(v)
	}
	for _, v := range []int64{1, 2, 3, 4, 6, 10} {
		if !b.Contains(v) {
			t.Fatalf("Contains(%d) = false, want true", v)
		}
	}
	for _, v := range []int64{0, 5, 7, 8, 9, 11} {
		if b.Contains(v) {
			t.Fatalf("Contains(%d) = true, want false", v)
		}
	}
}

func TestBasicSizeAndGrowth(t *testing.T) {
	b := NewBasic()
	for i := int64(0); i < 1000; i++ {
		b.Add(i)
		if b.Size() != uint64(i+1) {
			t.Fatalf("Size() = %d, want %d", b.Size(), i+1)
		}
	}
	if b.Capacity() < b.Size() {
		t.Fatalf("Capacity() = %d < Size() = %d", b.Capacity(), b.Size())
	}
	for i := int64(0); i < 1000; i++ {
		if !b.Contains(i) {
			t.Fatalf("Contains(%d) = false after bulk insert", i)
		}
	}
}

func TestBasicDuplicateKeys(t *testing.T) {
	b := NewBasic()
	for i := 0; i < 500; i++ {
		b.Add(42)
	}
	if b.Size() != 500 {
		t.Fatalf("Size() = %d, want 500", b.Size())
	}
	if !b.Contains(42) {
		t.Fatalf("Contains(42) = false, want true")
	}

	count := 0
	for it := b.Begin(); it.Valid(); it.Next() {
		if it.Value() != 42 {
			t.Fatalf("Value() = %d, want 42", it.Value())
		}
		count++
	}
	if count != 500 {
		t.Fatalf("iterated %d values, want 500", count)
	}
}

func TestBasicIterationCoversAllInserts(t *testing.T) {
	b := NewBasic()
	rng := rand.New(rand.NewSource(1))
	want := make([]int64, 0, 300)
	for i := 0; i < 300; i++ {
		v := rng.Int63n(1000)
		b.Add(v)
		want = append(want, v)
	}

	var got []int64
	for it := b.Begin(); it.Valid(); it.Next() {
		got = append(got, it.Value())
	}
	assertInt64MultisetEqual(t, got, want)
}

func TestBasicIteratorReversible(t *testing.T) {
	b := NewBasic()
	for i := int64(0); i < 64; i++ {
		b.Add(i)
	}

	var forward []int64
	it := b.Begin()
	for it.Valid() {
		forward = append(forward, it.Value())
		it.Next()
	}

	var backward []int64
	for i := len(forward) - 1; i >= 0; i-- {
		it.Prev()
		backward = append(backward, it.Value())
	}
	for i := range backward {
		if backward[i] != forward[len(forward)-1-i] {
			t.Fatalf("Prev() mismatch at %d: got %d, want %d", i, backward[i], forward[len(forward)-1-i])
		}
	}
}

func TestBasicClone(t *testing.T) {
	b := NewBasic()
	for i := int64(0); i < 50; i++ {
		b.Add(i)
	}
	clone := b.Clone()
	clone.Add(1000)

	if b.Contains(1000) {
		t.Fatalf("mutating the clone affected the original")
	}
	if !clone.Contains(1000) || clone.Size() != b.Size()+1 {
		t.Fatalf("clone did not record its own insert")
	}
	for i := int64(0); i < 50; i++ {
		if !clone.Contains(i) {
			t.Fatalf("clone missing original value %d", i)
		}
	}
}

func TestBasicRunsAreSorted(t *testing.T) {
	b := NewBasic()
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		b.Add(rng.Int63n(10000))
	}

	iEnd := b.capacity
	for iEnd != 0 {
		iStart := iEnd >> 1
		if (iEnd & b.size) > iStart {
			run := b.data[iStart:iEnd]
			for i := 1; i < len(run); i++ {
				if run[i-1] > run[i] {
					t.Fatalf("run [%d:%d] not sorted at offset %d", iStart, iEnd, i)
				}
			}
		}
		iEnd = iStart
	}
}
