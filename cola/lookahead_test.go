package cola

import (
	"math/rand"
	"testing"
)

func TestLookaheadAddContains(t *testing.T) {
	l := NewLookahead()
	for _, v := range []int64{1, 2, 6, 4, 3, 10} {
		l.Add(v)
	}
	for _, v := range []int64{1, 2, 3, 4, 6, 10} {
		if !l.Contains(v) {
			t.Fatalf("Contains(%d) = false, want true", v)
		}
	}
	for _, v := range []int64{0, 5, 7, 8, 9, 11} {
		if l.Contains(v) {
			t.Fatalf("Contains(%d) = true, want false", v)
		}
	}
}

func TestLookaheadPredecessor(t *testing.T) {
	l := NewLookahead()
	for _, v := range []int64{1, 2, 6, 4, 3, 10} {
		l.Add(v)
	}

	cases := []struct {
		query  int64
		want   int64
		wantOK bool
	}{
		{1, 1, true},
		{5, 4, true},
		{6, 6, true},
		{9, 6, true},
		{11, 10, true},
		{0, 0, false},
	}
	for _, c := range cases {
		got, ok := l.Predecessor(c.query)
		if ok != c.wantOK {
			t.Fatalf("Predecessor(%d) ok = %v, want %v", c.query, ok, c.wantOK)
		}
		if ok && got != c.want {
			t.Fatalf("Predecessor(%d) = %d, want %d", c.query, got, c.want)
		}
	}
}

func TestLookaheadSizeAndBulkInsert(t *testing.T) {
	l := NewLookahead()
	for i := int64(0); i < 1000; i++ {
		l.Add(i)
		if l.Size() != uint64(i+1) {
			t.Fatalf("Size() = %d, want %d", l.Size(), i+1)
		}
	}
	for i := int64(0); i < 1000; i++ {
		if !l.Contains(i) {
			t.Fatalf("Contains(%d) = false after bulk insert", i)
		}
	}
	for i := int64(0); i < 1000; i++ {
		got, ok := l.Predecessor(i)
		if !ok || got != i {
			t.Fatalf("Predecessor(%d) = (%d, %v), want (%d, true)", i, got, ok, i)
		}
	}
}

func TestLookaheadDuplicateKeys(t *testing.T) {
	l := NewLookahead()
	for i := 0; i < 500; i++ {
		l.Add(3)
	}
	if l.Size() != 500 {
		t.Fatalf("Size() = %d, want 500", l.Size())
	}
	if !l.Contains(3) {
		t.Fatalf("Contains(3) = false, want true")
	}
	count := 0
	for it := l.Begin(); it.Valid(); it.Next() {
		if it.Value() != 3 {
			t.Fatalf("Value() = %d, want 3", it.Value())
		}
		count++
	}
	if count != 500 {
		t.Fatalf("iterated %d values, want 500", count)
	}
}

func TestLookaheadIterationCoversAllInserts(t *testing.T) {
	l := NewLookahead()
	rng := rand.New(rand.NewSource(5))
	want := make([]int64, 0, 400)
	for i := 0; i < 400; i++ {
		v := rng.Int63n(5000)
		l.Add(v)
		want = append(want, v)
	}

	var got []int64
	for it := l.Begin(); it.Valid(); it.Next() {
		got = append(got, it.Value())
	}
	assertInt64MultisetEqual(t, got, want)
}

func TestLookaheadIteratorReversible(t *testing.T) {
	l := NewLookahead()
	for i := int64(0); i < 64; i++ {
		l.Add(i)
	}

	var forward []int64
	it := l.Begin()
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

func TestLookaheadClone(t *testing.T) {
	l := NewLookahead()
	for i := int64(0); i < 150; i++ {
		l.Add(i)
	}
	clone := l.Clone()
	clone.Add(9000)

	if l.Contains(9000) {
		t.Fatalf("mutating the clone affected the original")
	}
	if !clone.Contains(9000) || clone.Size() != l.Size()+1 {
		t.Fatalf("clone did not record its own insert")
	}
	for i := int64(0); i < 150; i++ {
		if !clone.Contains(i) {
			t.Fatalf("clone missing original value %d", i)
		}
	}
}
