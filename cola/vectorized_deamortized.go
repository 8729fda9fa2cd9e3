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

const vectorizedDeamortizedMinLayers = 4

type vectorizedDeamortizedLayer struct {
	data                            []int32
	mergeLeft, mergeRight, mergeDst uint32
}

// VectorizedDeamortized is Deamortized over int32 keys with a
// CPU-dispatched Contains: on a CPU with the SIMD feature set it probes
// up to bitonicLanes occupied sub-arrays per round, each lane running
// its own binary search, instead of walking sub-arrays one at a time.
// The merge itself stays scalar: resuming a
// bitonic carry mid-merge across Add calls would need the 32-byte carry
// register persisted as container state, which adds a second kind of
// partial-progress bookkeeping on top of the per-layer cursors already
// required for deamortization, for a merge step that is never more than
// O(L) work per insert regardless.
type VectorizedDeamortized struct {
	leftFull, rightFull, mergeFlags uint32
	layerCount                      uint8
	layers                          []vectorizedDeamortizedLayer
	vectorized                      bool

	lastMoves                     uint32
	remainingBudgetAfterLastMerge uint32
}

// NewVectorizedDeamortized returns an empty VectorizedDeamortized COLA
// with room for one occupied run.
func NewVectorizedDeamortized() *VectorizedDeamortized {
	return NewVectorizedDeamortizedWithCapacity(vectorizedBasicDefaultCapacity)
}

// NewVectorizedDeamortizedWithCapacity returns an empty
// VectorizedDeamortized COLA sized to hold at least hint keys.
func NewVectorizedDeamortizedWithCapacity(hint uint32) *VectorizedDeamortized {
	layerCount := bitmath.PopCount(bitmath.NextPowerOfTwoMinusOne(hint))
	if layerCount < vectorizedDeamortizedMinLayers {
		layerCount = vectorizedDeamortizedMinLayers
	}
	d := &VectorizedDeamortized{
		layerCount: uint8(layerCount),
		layers:     make([]vectorizedDeamortizedLayer, layerCount),
		vectorized: cpufeature.HasAVX2Int256(),
	}
	for l := range d.layers {
		d.layers[l].data = alignedInt32(int(uint32(2) << uint(l)))
	}
	return d
}

// Clone deep-copies d, including every layer buffer and in-progress
// merge cursor state.
func (d *VectorizedDeamortized) Clone() *VectorizedDeamortized {
	out := &VectorizedDeamortized{
		leftFull:   d.leftFull,
		rightFull:  d.rightFull,
		mergeFlags: d.mergeFlags,
		layerCount: d.layerCount,
		layers:     make([]vectorizedDeamortizedLayer, d.layerCount),
		vectorized: d.vectorized,
	}
	for l, src := range d.layers {
		data := alignedInt32(len(src.data))
		copy(data, src.data)
		out.layers[l] = vectorizedDeamortizedLayer{
			data:       data,
			mergeLeft:  src.mergeLeft,
			mergeRight: src.mergeRight,
			mergeDst:   src.mergeDst,
		}
	}
	return out
}

// Size returns the number of keys currently stored.
func (d *VectorizedDeamortized) Size() uint32 { return d.leftFull + d.rightFull }

// Capacity returns the current usable capacity, 2^L-1.
func (d *VectorizedDeamortized) Capacity() uint32 { return (uint32(1) << d.layerCount) - 1 }

// LastInsertMoves returns the number of element moves the most recent
// Add performed, for exercising the O(L) work-bound property.
func (d *VectorizedDeamortized) LastInsertMoves() uint32 { return d.lastMoves }

// Add inserts value into layer 0 and advances any in-progress merges by
// a budget of 2L+2 moves.
func (d *VectorizedDeamortized) Add(value int32) {
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

	budget := (uint32(d.layerCount) << 1) + 2
	d.mergeLayers(budget)
	d.lastMoves = budget - d.remainingBudgetAfterLastMerge
}

func (d *VectorizedDeamortized) prepareMerge(l uint8) {
	flag := uint32(1) << l
	d.mergeFlags |= flag

	layer := &d.layers[l]
	layer.mergeLeft = 0
	layer.mergeRight = flag
	layer.mergeDst = d.leftFull & (flag << 1)
}

func (d *VectorizedDeamortized) mergeLayers(m uint32) {
	l := uint8(0)
	for m > 0 && (d.mergeFlags>>l) != 0 {
		if (d.mergeFlags>>l)&1 != 0 {
			src := &d.layers[l]
			dst := &d.layers[l+1]

			iEnd := uint32(1) << l
			jEnd := uint32(2) << l

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
				flag := uint32(1) << l
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
func (d *VectorizedDeamortized) Contains(value int32) bool {
	if d.vectorized {
		return d.containsVectorized(value)
	}
	return d.containsScalar(value)
}

func (d *VectorizedDeamortized) containsScalar(value int32) bool {
	for l := uint8(0); l < d.layerCount; l++ {
		arraySize := uint32(1) << l
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

// containsVectorized probes up to bitonicLanes sub-arrays per round,
// each lane running its own binary search over a possibly
// different-sized range; lanes whose sub-array is empty, or shorter
// than the round's longest active search, simply idle once their range
// collapses, since binary search over an empty [lo,hi) terminates
// immediately and leaves the lane's equality check false.
func (d *VectorizedDeamortized) containsVectorized(value int32) bool {
	type probe struct {
		data   []int32
		lo, hi int
		active bool
	}

	var probes []probe
	for l := uint8(0); l < d.layerCount; l++ {
		arraySize := int(uint32(1) << l)
		if (d.leftFull>>l)&1 != 0 {
			probes = append(probes, probe{data: d.layers[l].data, lo: 0, hi: arraySize, active: true})
		}
		if (d.rightFull>>l)&1 != 0 {
			probes = append(probes, probe{data: d.layers[l].data, lo: arraySize, hi: arraySize << 1, active: true})
		}
	}

	for base := 0; base < len(probes); base += bitonicLanes {
		end := base + bitonicLanes
		if end > len(probes) {
			end = len(probes)
		}
		lanes := probes[base:end]
		for {
			anyActive := false
			for i := range lanes {
				p := &lanes[i]
				if !p.active {
					continue
				}
				if p.lo >= p.hi {
					p.active = false
					continue
				}
				mid := p.lo + (p.hi-p.lo)/2
				v := p.data[mid]
				switch {
				case v == value:
					return true
				case v < value:
					p.lo = mid + 1
				default:
					p.hi = mid
				}
				if p.lo < p.hi {
					anyActive = true
				}
			}
			if !anyActive {
				break
			}
		}
	}
	return false
}

func (d *VectorizedDeamortized) growLayers(layerCount uint8) {
	layers := make([]vectorizedDeamortizedLayer, layerCount)
	for l := uint8(0); l < layerCount; l++ {
		if l < d.layerCount {
			layers[l] = d.layers[l]
		} else {
			layers[l].data = alignedInt32(int(uint32(2) << l))
		}
	}
	d.layers = layers
	d.layerCount = layerCount
}

// VectorizedDeamortizedIterator walks each sub-array in ascending layer
// order: layer 0 left, layer 0 right, layer 1 left, layer 1 right, ...
type VectorizedDeamortizedIterator struct {
	leftFull, rightFull uint32
	layerCount          uint8
	layers              []vectorizedDeamortizedLayer
	layer               uint8
	index               uint32
}

const vectorizedDeamortizedEndLayer = ^uint8(0)

// Begin returns an iterator at the first slot of the smallest occupied
// sub-array, or End if the container is empty.
func (d *VectorizedDeamortized) Begin() VectorizedDeamortizedIterator {
	it := VectorizedDeamortizedIterator{
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
func (d *VectorizedDeamortized) End() VectorizedDeamortizedIterator {
	return VectorizedDeamortizedIterator{
		leftFull: d.leftFull, rightFull: d.rightFull,
		layerCount: d.layerCount, layers: d.layers,
		layer: vectorizedDeamortizedEndLayer,
	}
}

func (it *VectorizedDeamortizedIterator) currentOccupied() bool {
	if it.layer >= it.layerCount {
		return false
	}
	arraySize := uint32(1) << it.layer
	if it.index < arraySize {
		return (it.leftFull>>it.layer)&1 != 0
	}
	return (it.rightFull>>it.layer)&1 != 0
}

func (it *VectorizedDeamortizedIterator) advanceToOccupied() {
	for {
		arraySize := uint32(1) << it.layer
		if it.index < arraySize {
			it.index = arraySize
			if (it.rightFull>>it.layer)&1 != 0 {
				return
			}
		}
		it.layer++
		it.index = 0
		if it.layer >= it.layerCount {
			it.layer = vectorizedDeamortizedEndLayer
			return
		}
		if (it.leftFull>>it.layer)&1 != 0 {
			return
		}
	}
}

// Valid reports whether it is dereferenceable.
func (it VectorizedDeamortizedIterator) Valid() bool {
	return it.layer != vectorizedDeamortizedEndLayer
}

// Value dereferences it.
func (it VectorizedDeamortizedIterator) Value() int32 { return it.layers[it.layer].data[it.index] }

// Equal reports whether it and other reference the same slot.
func (it VectorizedDeamortizedIterator) Equal(other VectorizedDeamortizedIterator) bool {
	return it.layer == other.layer && it.index == other.index
}

// Next advances it to the next occupied slot.
func (it *VectorizedDeamortizedIterator) Next() {
	it.index++
	arraySize := uint32(1) << it.layer
	if it.index == arraySize<<1 || (it.index == arraySize && (it.rightFull>>it.layer)&1 == 0) {
		it.advanceToOccupied()
	}
}

// Prev moves it to the previous occupied slot. Calling Prev on Begin is undefined.
func (it *VectorizedDeamortizedIterator) Prev() {
	if it.layer == vectorizedDeamortizedEndLayer {
		it.layer = it.layerCount - 1
		for it.layer > 0 && (it.rightFull>>it.layer)&1 == 0 && (it.leftFull>>it.layer)&1 == 0 {
			it.layer--
		}
		arraySize := uint32(1) << it.layer
		if (it.rightFull>>it.layer)&1 != 0 {
			it.index = arraySize<<1 - 1
		} else {
			it.index = arraySize - 1
		}
		return
	}

	arraySize := uint32(1) << it.layer
	if it.index == arraySize {
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

func (it *VectorizedDeamortizedIterator) retreatLayer() {
	for it.layer > 0 {
		it.layer--
		if (it.rightFull>>it.layer)&1 != 0 {
			it.index = (uint32(2) << it.layer) - 1
			return
		}
		if (it.leftFull>>it.layer)&1 != 0 {
			it.index = (uint32(1) << it.layer) - 1
			return
		}
	}
}
