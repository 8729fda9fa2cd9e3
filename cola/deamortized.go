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

const deamortizedMinLayers = 4

type deamortizedLayer struct {
	data                            []int64
	mergeLeft, mergeRight, mergeDst uint64
}

// Deamortized bounds per-insert work to O(L) by spreading each
// cascading merge over the inserts that follow it, rather than
// performing it eagerly. Worst-case insert cost is O(log N); search
// remains O(log^2 N), same as Basic.
type Deamortized struct {
	leftFull, rightFull, mergeFlags uint64
	layerCount                      uint8
	layers                          []deamortizedLayer

	lastMoves                     uint64
	remainingBudgetAfterLastMerge uint64
}

// NewDeamortized returns an empty Deamortized COLA with room for one
// occupied run.
func NewDeamortized() *Deamortized {
	return NewDeamortizedWithCapacity(basicDefaultCapacity)
}

// NewDeamortizedWithCapacity returns an empty Deamortized COLA sized to
// hold at least hint keys.
func NewDeamortizedWithCapacity(hint uint64) *Deamortized {
	layerCount := bitmath.PopCount(bitmath.NextPowerOfTwoMinusOne(hint))
	if layerCount < deamortizedMinLayers {
		layerCount = deamortizedMinLayers
	}
	d := &Deamortized{layerCount: uint8(layerCount), layers: make([]deamortizedLayer, layerCount)}
	for l := range d.layers {
		d.layers[l].data = make([]int64, uint64(2)<<uint(l))
	}
	return d
}

// Clone deep-copies d, including every layer buffer and in-progress
// merge cursor state.
func (d *Deamortized) Clone() *Deamortized {
	out := &Deamortized{
		leftFull:   d.leftFull,
		rightFull:  d.rightFull,
		mergeFlags: d.mergeFlags,
		layerCount: d.layerCount,
		layers:     make([]deamortizedLayer, d.layerCount),
	}
	for l, src := range d.layers {
		data := make([]int64, len(src.data))
		copy(data, src.data)
		out.layers[l] = deamortizedLayer{
			data:       data,
			mergeLeft:  src.mergeLeft,
			mergeRight: src.mergeRight,
			mergeDst:   src.mergeDst,
		}
	}
	return out
}

// Size returns the number of keys currently stored.
func (d *Deamortized) Size() uint64 { return d.leftFull + d.rightFull }

// Capacity returns the current usable capacity, 2^L-1.
func (d *Deamortized) Capacity() uint64 { return (uint64(1) << d.layerCount) - 1 }

// LastInsertMoves returns the number of element moves the most recent
// Add performed, for exercising the O(L) work-bound property.
func (d *Deamortized) LastInsertMoves() uint64 { return d.lastMoves }

// Add inserts value into layer 0 and advances any in-progress merges by
// a budget of 2L+2 moves.
func (d *Deamortized) Add(value int64) {
	nSize := d.Size() + 1
	if nSize > d.Capacity() {
		d.growLayers(d.layerCount + 1)
	}

	if d.leftFull&1 != 0 {
		d.layers[0].data[1] = value
		d.rightFull |= 1
		d.prepareMerge(0)
	} else {
		d.layers[0].data[0] = value
		d.leftFull |= 1
	}

	budget := (uint64(d.layerCount) << 1) + 2
	d.mergeLayers(budget)
	d.lastMoves = budget - d.remainingBudgetAfterLastMerge
}

func (d *Deamortized) prepareMerge(l uint8) {
	flag := uint64(1) << l
	d.mergeFlags |= flag

	layer := &d.layers[l]
	layer.mergeLeft = 0
	layer.mergeRight = flag
	layer.mergeDst = d.leftFull & (flag << 1)
}

func (d *Deamortized) mergeLayers(m uint64) {
	l := uint8(0)
	for m > 0 && (d.mergeFlags>>l) != 0 {
		if (d.mergeFlags>>l)&1 != 0 {
			src := &d.layers[l]
			dst := &d.layers[l+1]

			iEnd := uint64(1) << l
			jEnd := uint64(2) << l

			for m > 0 && src.mergeLeft != iEnd && src.mergeRight != jEnd {
				if src.data[src.mergeLeft] <= src.data[src.mergeRight] {
					dst.data[src.mergeDst] = src.data[src.mergeLeft]
					src.mergeLeft++
				} else {
					dst.data[src.mergeDst] = src.data[src.mergeRight]
					src.mergeRight++
				}
				src.mergeDst++
				m--
			}
			for m > 0 && src.mergeLeft != iEnd {
				dst.data[src.mergeDst] = src.data[src.mergeLeft]
				src.mergeLeft++
				src.mergeDst++
				m--
			}
			for m > 0 && src.mergeRight != jEnd {
				dst.data[src.mergeDst] = src.data[src.mergeRight]
				src.mergeRight++
				src.mergeDst++
				m--
			}

			if src.mergeLeft == iEnd && src.mergeRight == jEnd {
				flag := uint64(1) << l
				d.leftFull &^= flag
				d.rightFull &^= flag
				d.mergeFlags &^= flag

				if (src.mergeDst >> l) == 2 {
					d.leftFull |= flag << 1
				} else {
					d.rightFull |= flag << 1
				}

				if (d.leftFull>>(l+1))&1 != 0 && (d.rightFull>>(l+1))&1 != 0 {
					d.prepareMerge(l + 1)
				}
			}
		}
		l++
	}
	d.remainingBudgetAfterLastMerge = m
}

// Contains reports whether value is present in any occupied sub-array.
func (d *Deamortized) Contains(value int64) bool {
	for l := uint8(0); l < d.layerCount; l++ {
		arraySize := uint64(1) << l
		if (d.leftFull>>l)&1 != 0 {
			if bitmath.BinarySearch(value, d.layers[l].data, 0, int(arraySize)) {
				return true
			}
		}
		if (d.rightFull>>l)&1 != 0 {
			if bitmath.BinarySearch(value, d.layers[l].data, int(arraySize), int(arraySize<<1)) {
				return true
			}
		}
	}
	return false
}

func (d *Deamortized) growLayers(layerCount uint8) {
	layers := make([]deamortizedLayer, layerCount)
	for l := uint8(0); l < layerCount; l++ {
		if l < d.layerCount {
			layers[l] = d.layers[l]
		} else {
			layers[l].data = make([]int64, uint64(2)<<l)
		}
	}
	d.layers = layers
	d.layerCount = layerCount
}

// DeamortizedIterator walks each sub-array in ascending layer order:
// layer 0 left, layer 0 right, layer 1 left, layer 1 right, ...
type DeamortizedIterator struct {
	leftFull, rightFull uint64
	layerCount          uint8
	layers              []deamortizedLayer
	layer               uint8
	index                uint64
}

const deamortizedEndLayer = ^uint8(0)

// Begin returns an iterator at the first slot of the smallest occupied
// sub-array, or End if the container is empty.
func (d *Deamortized) Begin() DeamortizedIterator {
	it := DeamortizedIterator{
		leftFull: d.leftFull, rightFull: d.rightFull,
		layerCount: d.layerCount, layers: d.layers,
	}
	it.layer = 0
	it.index = 0
	if !it.currentOccupied() {
		it.advanceToOccupied()
	}
	return it
}

// End returns the out-of-range sentinel iterator.
func (d *Deamortized) End() DeamortizedIterator {
	return DeamortizedIterator{
		leftFull: d.leftFull, rightFull: d.rightFull,
		layerCount: d.layerCount, layers: d.layers,
		layer: deamortizedEndLayer,
	}
}

func (it *DeamortizedIterator) currentOccupied() bool {
	if it.layer >= it.layerCount {
		return false
	}
	arraySize := uint64(1) << it.layer
	if it.index < arraySize {
		return (it.leftFull>>it.layer)&1 != 0
	}
	return (it.rightFull>>it.layer)&1 != 0
}

func (it *DeamortizedIterator) advanceToOccupied() {
	for {
		arraySize := uint64(1) << it.layer
		if it.index < arraySize {
			it.index = arraySize
			if (it.rightFull>>it.layer)&1 != 0 {
				return
			}
		}
		it.layer++
		it.index = 0
		if it.layer >= it.layerCount {
			it.layer = deamortizedEndLayer
			return
		}
		if (it.leftFull>>it.layer)&1 != 0 {
			return
		}
	}
}

// Valid reports whether it is dereferenceable.
func (it DeamortizedIterator) Valid() bool { return it.layer != deamortizedEndLayer }

// Value dereferences it.
func (it DeamortizedIterator) Value() int64 { return it.layers[it.layer].data[it.index] }

// Equal reports whether it and other reference the same slot.
func (it DeamortizedIterator) Equal(other DeamortizedIterator) bool {
	return it.layer == other.layer && it.index == other.index
}

// Next advances it to the next occupied slot.
func (it *DeamortizedIterator) Next() {
	it.index++
	arraySize := uint64(1) << it.layer
	if it.index == arraySize<<1 || (it.index == arraySize && (it.rightFull>>it.layer)&1 == 0) {
		it.advanceToOccupied()
	}
}

// Prev moves it to the previous occupied slot. Calling Prev on Begin is undefined.
func (it *DeamortizedIterator) Prev() {
	if it.layer == deamortizedEndLayer {
		it.layer = it.layerCount - 1
		for it.layer > 0 && (it.rightFull>>it.layer)&1 == 0 && (it.leftFull>>it.layer)&1 == 0 {
			it.layer--
		}
		arraySize := uint64(1) << it.layer
		if (it.rightFull>>it.layer)&1 != 0 {
			it.index = arraySize<<1 - 1
		} else {
			it.index = arraySize - 1
		}
		return
	}

	arraySize := uint64(1) << it.layer
	if it.index == arraySize {
		// stepping back from the right sub-array's first slot onto the
		// left sub-array's last slot, or back into a lower layer.
		if (it.leftFull>>it.layer)&1 != 0 {
			it.index = arraySize - 1
			return
		}
		it.retreatLayer()
		return
	}
	if it.index == 0 {
		it.retreatLayer()
		return
	}
	it.index--
}

func (it *DeamortizedIterator) retreatLayer() {
	for it.layer > 0 {
		it.layer--
		if (it.rightFull>>it.layer)&1 != 0 {
			it.index = (uint64(2) << it.layer) - 1
			return
		}
		if (it.leftFull>>it.layer)&1 != 0 {
			it.index = (uint64(1) << it.layer) - 1
			return
		}
	}
}
