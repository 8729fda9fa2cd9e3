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

// Package cola implements the Cache-Oblivious Lookahead Array container
// family: layered sorted runs that amortize insertion cost across a
// cascading merge and answer membership by searching each occupied run.
package cola

import "github.com/s184222/cola-structure/bitmath"

const basicDefaultCapacity = 15

// Basic is the reference COLA: an amortized O(log N) insert, an
// O(log^2 N) membership search, runs packed 1-origin into a single
// array so run l occupies [2^l-1, 2^(l+1)-1).
type Basic struct {
	data     []int64
	size     uint64
	capacity uint64
}

// NewBasic returns an empty Basic COLA with room for one occupied run.
func NewBasic() *Basic {
	return NewBasicWithCapacity(basicDefaultCapacity)
}

// NewBasicWithCapacity returns an empty Basic COLA whose capacity is
// rounded up to the variant's natural boundary, 2^k-1.
func NewBasicWithCapacity(hint uint64) *Basic {
	capacity := bitmath.NextPowerOfTwoMinusOne(hint)
	if capacity < basicDefaultCapacity {
		capacity = basicDefaultCapacity
	}
	return &Basic{data: make([]int64, capacity), capacity: capacity}
}

// Clone deep-copies b, including every owned buffer.
func (b *Basic) Clone() *Basic {
	data := make([]int64, len(b.data))
	copy(data, b.data)
	return &Basic{data: data, size: b.size, capacity: b.capacity}
}

// Size returns the number of keys currently stored.
func (b *Basic) Size() uint64 { return b.size }

// Capacity returns the current backing capacity, 2^L-1.
func (b *Basic) Capacity() uint64 { return b.capacity }

// Add inserts value, growing the container and cascading a merge of
// every full run below the first empty one.
func (b *Basic) Add(value int64) {
	nSize := b.size + 1
	if nSize > b.capacity {
		b.grow((b.capacity << 1) + 1)
	}

	m := bitmath.LeastZeroBits(nSize)
	mEnd := (m << 1) + 1
	b.data[mEnd-1] = value

	i := uint64(0)
	for i != m {
		iEnd := (i << 1) + 1
		j := mEnd - i - 1
		k := mEnd - iEnd - 1

		for i != iEnd && j != mEnd {
			if b.data[i] <= b.data[j] {
				b.data[k] = b.data[i]
				k++
				i++
			} else {
				b.data[k] = b.data[j]
				k++
				j++
			}
		}
		for i != iEnd {
			b.data[k] = b.data[i]
			k++
			i++
		}
	}

	b.size = nSize
}

// Contains reports whether value is present in any occupied run.
func (b *Basic) Contains(value int64) bool {
	iEnd := bitmath.NextPowerOfTwoMinusOne(b.size)
	for iEnd != 0 {
		iStart := iEnd >> 1
		if (iEnd & b.size) > iStart {
			if bitmath.BinarySearch(value, b.data, int(iStart), int(iEnd)) {
				return true
			}
		}
		iEnd = iStart
	}
	return false
}

func (b *Basic) grow(newCapacity uint64) {
	data := make([]int64, newCapacity)
	copy(data, b.data)
	b.data = data
	b.capacity = newCapacity
}

// BasicIterator walks each run in ascending order, from the smallest
// occupied run to the largest. Runs are concatenated, not merged, so the
// full traversal is not globally sorted.
type BasicIterator struct {
	data  []int64
	size  uint64
	index uint64
}

const basicEndIndex = ^uint64(0)

// Begin returns an iterator positioned at the first slot of the
// smallest occupied run, or End if the container is empty.
func (b *Basic) Begin() BasicIterator {
	return BasicIterator{data: b.data, size: b.size, index: bitmath.LeastZeroBits(b.size)}
}

// End returns the out-of-range sentinel iterator.
func (b *Basic) End() BasicIterator {
	return BasicIterator{data: b.data, size: b.size, index: basicEndIndex}
}

// Valid reports whether it is dereferenceable.
func (it BasicIterator) Valid() bool { return it.index != basicEndIndex }

// Value dereferences it. It is undefined to call this on an invalid iterator.
func (it BasicIterator) Value() int64 { return it.data[it.index] }

// Equal reports whether it and other reference the same slot.
func (it BasicIterator) Equal(other BasicIterator) bool { return it.index == other.index }

// Next advances it to the next slot, jumping to the first slot of the
// next occupied run when the current run is exhausted.
func (it *BasicIterator) Next() {
	it.index++
	if bitmath.IsPowerOfTwo(it.index + 1) {
		it.index = bitmath.LeastZeroBits(it.size &^ it.index)
	}
}

// Prev moves it to the previous slot. Calling Prev on Begin is undefined.
func (it *BasicIterator) Prev() {
	if bitmath.IsPowerOfTwo(it.index + 1) {
		it.index = bitmath.NextPowerOfTwoMinusOne(it.size & it.index)
	}
	it.index--
}
