package cola

import (
	"math/rand"
	"sort"
	"testing"
)

func TestVectorizedBasicAddContains(t *testing.T) {
	v := NewVectorizedBasic()
	for _, x := range []int32{1, 2, 6, 4, 3, 10} {
		v.Add(x)
	}
	for _, x := range []int32{1, 2, 3, 4, 6, 10} {
		if !v.Contains(x) {
			t.Fatalf("Contains(%d) = false, want true", x)
		}
	}
	for _, x := range []int32{0, 5, 7, 8, 9, 11} {
		if v.Contains(x) {
			t.Fatalf("Contains(%d) = true, want false", x)
		}
	}
}

func TestVectorizedBasicScalarAndVectorizedAgree(t *testing.T) {
	v := NewVectorizedBasic()
	rng := rand.New(rand.NewSource(6))
	values := make([]int32, 0, 2000)
	for i := 0; i < 2000; i++ {
		x := int32(rng.Intn(10000))
		v.Add(x)
		values = append(values, x)
	}

	for _, x := range values {
		scalar := v.containsScalar(x)
		vectorized := v.containsVectorized(x)
		if scalar != vectorized {
			t.Fatalf("containsScalar(%d) = %v, containsVectorized(%d) = %v, want equal", x, scalar, x, vectorized)
		}
	}
	for _, x := range []int32{-1, 10001, 123456} {
		if v.containsScalar(x) != v.containsVectorized(x) {
			t.Fatalf("scalar/vectorized disagreement for missing value %d", x)
		}
	}
}

func TestVectorizedBasicSizeAndBulkInsert(t *testing.T) {
	v := NewVectorizedBasic()
	for i := int32(0); i < 1000; i++ {
		v.Add(i)
		if v.Size() != uint32(i+1) {
			t.Fatalf("Size() = %d, want %d", v.Size(), i+1)
		}
	}
	for i := int32(0); i < 1000; i++ {
		if !v.Contains(i) {
			t.Fatalf("Contains(%d) = false after bulk insert", i)
		}
	}
}

func TestVectorizedBasicDuplicateKeys(t *testing.T) {
	v := NewVectorizedBasic()
	for i := 0; i < 500; i++ {
		v.Add(99)
	}
	if v.Size() != 500 {
		t.Fatalf("Size() = %d, want 500", v.Size())
	}
	count := 0
	for it := v.Begin(); it.Valid(); it.Next() {
		if it.Value() != 99 {
			t.Fatalf("Value() = %d, want 99", it.Value())
		}
		count++
	}
	if count != 500 {
		t.Fatalf("iterated %d values, want 500", count)
	}
}

func TestVectorizedBasicIterationCoversAllInserts(t *testing.T) {
	v := NewVectorizedBasic()
	rng := rand.New(rand.NewSource(7))
	want := make([]int32, 0, 600)
	for i := 0; i < 600; i++ {
		x := int32(rng.Intn(3000))
		v.Add(x)
		want = append(want, x)
	}

	var got []int32
	for it := v.Begin(); it.Valid(); it.Next() {
		got = append(got, it.Value())
	}
	assertInt32MultisetEqual(t, got, want)
}

func TestVectorizedBasicIteratorReversible(t *testing.T) {
	v := NewVectorizedBasic()
	for i := int32(0); i < 64; i++ {
		v.Add(i)
	}

	var forward []int32
	it := v.Begin()
	for it.Valid() {
		forward = append(forward, it.Value())
		it.Next()
	}

	var backward []int32
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

func TestVectorizedBasicClone(t *testing.T) {
	v := NewVectorizedBasic()
	for i := int32(0); i < 80; i++ {
		v.Add(i)
	}
	clone := v.Clone()
	clone.Add(5000)

	if v.Contains(5000) {
		t.Fatalf("mutating the clone affected the original")
	}
	if !clone.Contains(5000) || clone.Size() != v.Size()+1 {
		t.Fatalf("clone did not record its own insert")
	}
	for i := int32(0); i < 80; i++ {
		if !clone.Contains(i) {
			t.Fatalf("clone missing original value %d", i)
		}
	}
}

func TestMergeTwoSortedVectorizedMatchesScalar(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for _, n := range []int{8, 16, 32, 64} {
		a := sortedRandomInt32(rng, n)
		b := sortedRandomInt32(rng, n)

		scalarDst := make([]int32, 2*n)
		mergeTwoSortedScalar(scalarDst, a, b)

		vectorDst := make([]int32, 2*n)
		mergeTwoSortedEqualPow2Vectorized(vectorDst, a, b)

		for i := range scalarDst {
			if scalarDst[i] != vectorDst[i] {
				t.Fatalf("n=%d: mismatch at %d: scalar=%d vector=%d", n, i, scalarDst[i], vectorDst[i])
			}
		}
	}
}

func sortedRandomInt32(rng *rand.Rand, n int) []int32 {
	v := make([]int32, n)
	for i := range v {
		v[i] = int32(rng.Intn(1000))
	}
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
	return v
}
