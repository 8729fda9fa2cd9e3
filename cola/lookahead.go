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

import "github.com/s184222/cola-structure/bitmath"

const (
	fakeElementInterval = 4
	fakeElementFlag     = uint64(1) << 63
	realPointerMask     = ^fakeElementFlag
)

type lookaheadEntry struct {
	value   int64
	pointer uint64
}

// Lookahead reduces membership search from O(log^2 N) to O(log N) by
// annotating every fakeElementInterval slots of a run with a forwarding
// pointer into the next-larger run, at roughly 2x storage and a more
// delicate merge. It is the only variant that exposes Predecessor.
type Lookahead struct {
	data     []lookaheadEntry
	capacity uint64
	size     uint64
}

// NewLookahead returns an empty Lookahead COLA with room for one
// occupied run.
func NewLookahead() *Lookahead {
	return NewLookaheadWithCapacity(basicDefaultCapacity)
}

// NewLookaheadWithCapacity returns an empty Lookahead COLA whose slot
// capacity is hint rounded up to 2^k-1 (at least 15). Each key can take
// up to two slots, so it holds (capacity-1)/2 keys before growing.
func NewLookaheadWithCapacity(hint uint64) *Lookahead {
	capacity := bitmath.NextPowerOfTwoMinusOne(hint)
	if capacity < basicDefaultCapacity {
		capacity = basicDefaultCapacity
	}
	l := &Lookahead{data: make([]lookaheadEntry, capacity), capacity: capacity}
	// Sentinel fake element at slot 0 so add/contains on an empty cola
	// are well-defined without special-casing size == 0 everywhere.
	l.data[0].pointer = fakeElementFlag
	return l
}

// Clone deep-copies l, including every slot.
func (l *Lookahead) Clone() *Lookahead {
	data := make([]lookaheadEntry, len(l.data))
	copy(data, l.data)
	return &Lookahead{data: data, size: l.size, capacity: l.capacity}
}

// Size returns the number of keys currently stored.
func (l *Lookahead) Size() uint64 { return l.size }

// Capacity returns the current backing capacity.
func (l *Lookahead) Capacity() uint64 { return l.capacity }

// Add inserts value, shifting it into run 0 and cascading the merge
// upward while maintaining each run's leading fake forwarding pointers.
func (l *Lookahead) Add(value int64) {
	nSize := l.size + 1
	// At most half the slots of a full cola are fake, so 2N+1 bounds
	// the physical slot count.
	if (nSize<<1)+1 > l.capacity {
		l.grow((l.capacity << 1) + 1)
	}

	m := bitmath.LeastZeroBits(nSize << 1)
	mEnd := (m << 1) + 1

	var s uint64
	if bitmath.IsPowerOfTwo(nSize) {
		s = mEnd
	} else {
		s = m + l.data[m].pointer
	}

	l.data[s-1].pointer = 0
	j := s
	for j < mEnd && l.data[j].value < value {
		l.data[j-1] = l.data[j]
		j++
	}
	l.data[j-1].value = value
	l.data[j-1].pointer &= realPointerMask

	s--

	i := uint64(0)
	for i != m {
		iEnd := (i << 1) + 1
		j = s
		k := s - ((i + 1) >> 1)
		s = k

		if l.data[i].pointer&fakeElementFlag == 0 {
			i += l.data[i].pointer
		}

		p := uint64(0)
		for i != iEnd && j != mEnd {
			if l.data[i].pointer&fakeElementFlag != 0 {
				i++
			} else {
				if l.data[i].value <= l.data[j].value {
					l.data[k] = lookaheadEntry{value: l.data[i].value, pointer: p}
					k++
					i++
				} else {
					p = l.data[j].pointer & realPointerMask
					l.data[k] = l.data[j]
					k++
					j++
				}
			}
		}
		for i != iEnd {
			if l.data[i].pointer&fakeElementFlag != 0 {
				i++
			} else {
				l.data[k] = lookaheadEntry{value: l.data[i].value, pointer: p}
				k++
				i++
			}
		}
	}

	if s != m || l.data[m].pointer&fakeElementFlag == 0 {
		l.data[m].pointer = s - m
	}

	for i = m; i != 0; {
		c := bitmath.CeilDiv((i<<1)+1-s, uint64(fakeElementInterval))
		for j = i - c; j < i; j++ {
			l.data[j].value = l.data[s].value
			l.data[j].pointer = s | fakeElementFlag
			s += fakeElementInterval
		}
		s = i - c
		i >>= 1
		if s != i {
			l.data[i].pointer = s - i
		}
	}

	l.size = nSize
}

// Contains reports whether value is present.
func (l *Lookahead) Contains(value int64) bool {
	if l.size > 0 && l.data[0].value >= value {
		return value == l.data[0].value
	}

	pointer := l.data[0].pointer & realPointerMask
	for pointer != 0 {
		for i := uint64(1); i < fakeElementInterval; i++ {
			if bitmath.IsPowerOfTwoMinusOne(pointer+1) || l.data[pointer+1].value > value {
				break
			}
			pointer++
		}
		if l.data[pointer].value == value {
			return true
		}
		pointer = l.data[pointer].pointer & realPointerMask
	}
	return false
}

// Predecessor returns the largest stored value <= value, and whether
// such a value exists.
func (l *Lookahead) Predecessor(value int64) (int64, bool) {
	if l.size == 0 || l.data[0].value > value {
		return 0, false
	}

	best := l.data[0].value
	pointer := l.data[0].pointer & realPointerMask
	for pointer != 0 && value != best {
		for i := uint64(1); i < fakeElementInterval; i++ {
			if bitmath.IsPowerOfTwoMinusOne(pointer+1) || l.data[pointer+1].value > value {
				break
			}
			pointer++
		}
		if l.data[pointer].value > best {
			best = l.data[pointer].value
		}
		pointer = l.data[pointer].pointer & realPointerMask
	}
	return best, true
}

func (l *Lookahead) grow(newCapacity uint64) {
	data := make([]lookaheadEntry, newCapacity)
	copy(data, l.data)
	l.data = data
	l.capacity = newCapacity
}

// LookaheadIterator walks each run in ascending order, skipping fake
// forwarding slots and leading padding.
type LookaheadIterator struct {
	data  []lookaheadEntry
	size  uint64
	index uint64
}

// Begin returns an iterator at the first real slot, or End if empty.
func (l *Lookahead) Begin() LookaheadIterator {
	if l.size == 0 {
		return l.End()
	}
	index := bitmath.LeastZeroBits(l.size << 1)
	if l.data[index].pointer&fakeElementFlag == 0 {
		index += l.data[index].pointer
	}
	for l.data[index].pointer&fakeElementFlag != 0 {
		index++
	}
	return LookaheadIterator{data: l.data, size: l.size, index: index}
}

// End returns the out-of-range sentinel iterator.
func (l *Lookahead) End() LookaheadIterator {
	return LookaheadIterator{data: l.data, size: l.size, index: basicEndIndex}
}

// Valid reports whether it is dereferenceable.
func (it LookaheadIterator) Valid() bool { return it.index != basicEndIndex }

// Value dereferences it.
func (it LookaheadIterator) Value() int64 { return it.data[it.index].value }

// Equal reports whether it and other reference the same slot.
func (it LookaheadIterator) Equal(other LookaheadIterator) bool { return it.index == other.index }

// Next advances it to the next real slot, skipping fakes and jumping to
// the next occupied run when the current run is exhausted.
func (it *LookaheadIterator) Next() {
	nSize := it.size << 1
	for {
		it.index++
		if bitmath.IsPowerOfTwo(it.index + 1) {
			it.index = bitmath.LeastZeroBits(nSize &^ it.index)
			if it.index == basicEndIndex {
				return
			}
			if it.data[it.index].pointer&fakeElementFlag == 0 {
				it.index += it.data[it.index].pointer
			}
			for it.data[it.index].pointer&fakeElementFlag != 0 {
				it.index++
			}
			return
		}
		if it.data[it.index].pointer&fakeElementFlag == 0 {
			return
		}
	}
}

// Prev moves it to the previous real slot. Calling Prev on Begin is undefined.
func (it *LookaheadIterator) Prev() {
	nSize := it.size << 1
	for {
		if bitmath.IsPowerOfTwo(it.index + 1) {
			it.index = bitmath.NextPowerOfTwoMinusOne(nSize & it.index)
		}
		it.index--
		if it.data[it.index].pointer&fakeElementFlag == 0 {
			return
		}
	}
}
