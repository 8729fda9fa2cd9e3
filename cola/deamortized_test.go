package cola

import (
	"math/rand"
	"testing"
)

func TestDeamortizedAddContains(t *testing.T) {
	d := NewDeamortized()
	for _, v := range []int64{1, 2, 6, 4, 3, 10} {
		d.Add(v)
	}
	for _, v := range []int64{1, 2, 3, 4, 6, 10} {
		if !d.Contains(v) {
			t.Fatalf("Contains(%d) = false, want true", v)
		}
	}
	for _, v := range []int64{0, 5, 7, 8, 9, 11} {
		if d.Contains(v) {
			t.Fatalf("Contains(%d) = true, want false", v)
		}
	}
}

func TestDeamortizedSizeAndBulkInsert(t *testing.T) {
	d := NewDeamortized()
	for i := int64(0); i < 1000; i++ {
		d.Add(i)
		if d.Size() != uint64(i+1) {
			t.Fatalf("Size() = %d, want %d", d.Size(), i+1)
		}
	}
	for i := int64(0); i < 1000; i++ {
		if !d.Contains(i) {
			t.Fatalf("Contains(%d) = false after bulk insert", i)
		}
	}
}

// TestDeamortizedWorkBound exercises the property deamortization exists
// for: no single Add may cost more than the fixed per-insert budget,
// regardless of how many prior inserts are pending a cascading merge.
func TestDeamortizedWorkBound(t *testing.T) {
	d := NewDeamortized()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200000; i++ {
		d.Add(rng.Int63n(1 << 30))
		budget := (uint64(d.layerCount) << 1) + 2
		if d.LastInsertMoves() > budget {
			t.Fatalf("insert %d moved %d elements, want <= %d", i, d.LastInsertMoves(), budget)
		}
	}
}

func TestDeamortizedDuplicateKeys(t *testing.T) {
	d := NewDeamortized()
	for i := 0; i < 500; i++ {
		d.Add(7)
	}
	if d.Size() != 500 {
		t.Fatalf("Size() = %d, want 500", d.Size())
	}
	count := 0
	for it := d.Begin(); it.Valid(); it.Next() {
		if it.Value() != 7 {
			t.Fatalf("Value() = %d, want 7", it.Value())
		}
		count++
	}
	if count != 500 {
		t.Fatalf("iterated %d values, want 500", count)
	}
}

func TestDeamortizedIterationCoversAllInserts(t *testing.T) {
	d := NewDeamortized()
	rng := rand.New(rand.NewSource(4))
	want := make([]int64, 0, 500)
	for i := 0; i < 500; i++ {
		v := rng.Int63n(2000)
		d.Add(v)
		want = append(want, v)
	}

	var got []int64
	for it := d.Begin(); it.Valid(); it.Next() {
		got = append(got, it.Value())
	}
	assertInt64MultisetEqual(t, got, want)
}

func TestDeamortizedIteratorReversible(t *testing.T) {
	d := NewDeamortized()
	for i := int64(0); i < 128; i++ {
		d.Add(i)
	}

	var forward []int64
	it := d.Begin()
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

func TestDeamortizedClone(t *testing.T) {
	d := NewDeamortized()
	for i := int64(0); i < 200; i++ {
		d.Add(i)
	}
	clone := d.Clone()
	clone.Add(5000)

	if d.Contains(5000) {
		t.Fatalf("mutating the clone affected the original")
	}
	if !clone.Contains(5000) || clone.Size() != d.Size()+1 {
		t.Fatalf("clone did not record its own insert")
	}
	for i := int64(0); i < 200; i++ {
		if !clone.Contains(i) {
			t.Fatalf("clone missing original value %d", i)
		}
	}
}
