// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package cola

import (
	"github.com/s184222/cola-structure/bitmath"
	"github.com/s184222/cola-structure/cpufeature"
)

const vectorizedBasicDefaultCapacity = 16

// VectorizedBasic is Basic with its two hot loops replaced: the merge
// runs 8-lane bitonic-merge steps once a layer reaches
// bitonicLanes elements, and Contains runs a Cannizzo-style LEADBIT
// search across bitonicLanes runs at a time. Runs are packed 0-origin,
// with slot 0 left unused so the layout aligns cleanly: run l occupies
// [2^l, 2^(l+1)).
type VectorizedBasic struct {
	data       []int32
	size       uint32
	capacity   uint32
	vectorized bool
}

// NewVectorizedBasic returns an empty VectorizedBasic COLA. On a CPU
// lacking the required SIMD feature set it still works correctly,
// falling back to the scalar merge and search paths.
func NewVectorizedBasic() *VectorizedBasic {
	return NewVectorizedBasicWithCapacity(vectorizedBasicDefaultCapacity)
}

// NewVectorizedBasicWithCapacity returns an empty VectorizedBasic COLA
// whose capacity is hint rounded up to a power of two (at least 16).
// Slot 0 is unused, so it holds capacity-1 keys before growing.
func NewVectorizedBasicWithCapacity(hint uint32) *VectorizedBasic {
	if hint < 1 {
		hint = 1
	}
	capacity := bitmath.NextPowerOfTwoMinusOne(hint-1) + 1
	if capacity < vectorizedBasicDefaultCapacity {
		capacity = vectorizedBasicDefaultCapacity
	}
	return &VectorizedBasic{
		data:       alignedInt32(int(capacity)),
		capacity:   capacity,
		vectorized: cpufeature.HasAVX2Int256(),
	}
}

// Clone deep-copies v, including its owned buffer.
func (v *VectorizedBasic) Clone() *VectorizedBasic {
	data := alignedInt32(len(v.data))
	copy(data, v.data)
	return &VectorizedBasic{data: data, size: v.size, capacity: v.capacity, vectorized: v.vectorized}
}

// Size returns the number of keys currently stored.
func (v *VectorizedBasic) Size() uint32 { return v.size }

// Capacity returns the current backing capacity, 2^L.
func (v *VectorizedBasic) Capacity() uint32 { return v.capacity }

// Add inserts value, growing the container and cascading a merge of
// every full run below the first empty one.
func (v *VectorizedBasic) Add(value int32) {
	nSize := v.size + 1
	if nSize >= v.capacity {
		v.grow(v.capacity << 1)
	}

	m := bitmath.LeastZeroBits(nSize) + 1
	mEnd := m << 1
	v.data[mEnd-1] = value

	i := uint32(1)
	for i != m {
		iEnd := i << 1
		j := mEnd - i
		k := mEnd - iEnd
		mergeTwoSorted(v.data[k:mEnd], v.data[i:iEnd], v.data[j:mEnd], v.vectorized)
		i = iEnd
	}

	v.size = nSize
}

// Contains reports whether value is present in any occupied run.
func (v *VectorizedBasic) Contains(value int32) bool {
	if v.vectorized {
		return v.containsVectorized(value)
	}
	return v.containsScalar(value)
}

// containsScalar is Cannizzo's LEADBIT binary search run sequentially,
// one run at a time. See https://arxiv.org/pdf/1506.08620.pdf.
func (v *VectorizedBasic) containsScalar(value int32) bool {
	p := (bitmath.NextPowerOfTwoMinusOne(v.size) >> 1) + 1
	for p != 0 {
		i := p
		k := i >> 1
		if v.size&p != 0 {
			for {
				r := i | k
				if value >= v.data[r] {
					i = r
				}
				k >>= 1
				if k == 0 {
					break
				}
			}
			if v.data[i] == value {
				return true
			}
		}
		p >>= 1
	}
	return false
}

// containsVectorized runs LEADBIT over bitonicLanes runs at a time. A
// lane whose run is empty is masked out of the final equality check
// (not the search itself), matching §9's correctness note: applying the
// emptiness mask before the equality test risks a false positive from a
// stale/garbage slot at the masked-off lane's gathered address.
func (v *VectorizedBasic) containsVectorized(value int32) bool {
	p := (bitmath.NextPowerOfTwoMinusOne(v.size) >> 1) + 1
	for p != 0 {
		var lanePresent [bitonicLanes]bool
		var i [bitonicLanes]uint32
		var k [bitonicLanes]uint32
		active := false
		for l := 0; l < bitonicLanes; l++ {
			lp := p >> uint(l)
			i[l] = lp
			k[l] = lp >> 1
			lanePresent[l] = lp != 0 && v.size&lp != 0
			active = active || lanePresent[l]
		}

		if active {
			for {
				allDone := true
				for l := 0; l < bitonicLanes; l++ {
					if k[l] == 0 {
						continue
					}
					r := i[l] | k[l]
					if value >= v.data[r] {
						i[l] = r
					}
					k[l] >>= 1
					if k[l] != 0 {
						allDone = false
					}
				}
				if allDone {
					break
				}
			}
			for l := 0; l < bitonicLanes; l++ {
				if lanePresent[l] && v.data[i[l]] == value {
					return true
				}
			}
		}

		p >>= bitonicLanes
	}
	return false
}

func (v *VectorizedBasic) grow(newCapacity uint32) {
	data := alignedInt32(int(newCapacity))
	copy(data, v.data)
	v.data = data
	v.capacity = newCapacity
}

// VectorizedBasicIterator walks each run in ascending order, from the
// smallest occupied run to the largest.
type VectorizedBasicIterator struct {
	data  []int32
	size  uint32
	index uint32
}

const vectorizedBasicEndIndex = uint32(0)

// Begin returns an iterator at the first slot of the smallest occupied
// run, or End if the container is empty.
func (v *VectorizedBasic) Begin() VectorizedBasicIterator {
	if v.size == 0 {
		return v.End()
	}
	return VectorizedBasicIterator{data: v.data, size: v.size, index: bitmath.LeastZeroBits(v.size) + 1}
}

// End returns the out-of-range sentinel iterator. Slot 0 is never used
// by a real run in the 0-origin layout, so it doubles as the sentinel.
func (v *VectorizedBasic) End() VectorizedBasicIterator {
	return VectorizedBasicIterator{data: v.data, size: v.size, index: vectorizedBasicEndIndex}
}

// Valid reports whether it is dereferenceable.
func (it VectorizedBasicIterator) Valid() bool { return it.index != vectorizedBasicEndIndex }

// Value dereferences it.
func (it VectorizedBasicIterator) Value() int32 { return it.data[it.index] }

// Equal reports whether it and other reference the same slot.
func (it VectorizedBasicIterator) Equal(other VectorizedBasicIterator) bool {
	return it.index == other.index
}

// Next advances it to the next slot, jumping to the first slot of the
// next occupied run when the current run is exhausted.
func (it *VectorizedBasicIterator) Next() {
	it.index++
	if bitmath.IsPowerOfTwo(it.index) {
		next := bitmath.LeastZeroBits(it.size &^ (it.index - 1))
		if next == ^uint32(0) {
			it.index = vectorizedBasicEndIndex
			return
		}
		it.index = next + 1
	}
}

// Prev moves it to the previous slot. Calling Prev on Begin is undefined.
func (it *VectorizedBasicIterator) Prev() {
	if bitmath.IsPowerOfTwo(it.index) {
		it.index = bitmath.NextPowerOfTwoMinusOne(it.size&(it.index-1)) + 1
	}
	it.index--
}
