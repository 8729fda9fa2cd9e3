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

const bitonicLanes = 8

// bitonicMerge8 merges two ascending 8-lane vectors into one sorted
// 16-element sequence, returning it split back into two 8-lane halves.
// It is the scalar stand-in for the branchless bitonic-merge network
// the vectorized variants' merge inner loop is modeled on: reverse the
// second vector to form a bitonic sequence with the first, then run
// compare-exchange stages at strides 8, 4, 2, 1 (the "swap 128-bit
// halves", "shuffle 64-bit halves", and "shuffle adjacent 32-bit lanes"
// phases collapse to the same stride-halving compare network on scalar
// lanes).
func bitonicMerge8(a, b [bitonicLanes]int32) (lower, upper [bitonicLanes]int32) {
	var seq [2 * bitonicLanes]int32
	copy(seq[0:bitonicLanes], a[:])
	for i := 0; i < bitonicLanes; i++ {
		seq[bitonicLanes+i] = b[bitonicLanes-1-i]
	}

	for stride := bitonicLanes; stride >= 1; stride >>= 1 {
		for i := 0; i < 2*bitonicLanes; i++ {
			if i&stride == 0 {
				j := i | stride
				if seq[i] > seq[j] {
					seq[i], seq[j] = seq[j], seq[i]
				}
			}
		}
	}

	copy(lower[:], seq[0:bitonicLanes])
	copy(upper[:], seq[bitonicLanes:2*bitonicLanes])
	return lower, upper
}

// mergeTwoSortedScalar merges two ascending slices into dst (len(dst)
// == len(a)+len(b)), preferring a on ties so duplicate keys keep their
// relative insertion order within a run.
func mergeTwoSortedScalar(dst, a, b []int32) {
	ai, bi, di := 0, 0, 0
	for ai < len(a) && bi < len(b) {
		if a[ai] <= b[bi] {
			dst[di] = a[ai]
			ai++
		} else {
			dst[di] = b[bi]
			bi++
		}
		di++
	}
	for ai < len(a) {
		dst[di] = a[ai]
		ai++
		di++
	}
	for bi < len(b) {
		dst[di] = b[bi]
		bi++
		di++
	}
}

// mergeTwoSortedEqualPow2Vectorized merges two ascending slices of equal
// length, a multiple of bitonicLanes, using repeated 8-lane bitonic
// merges instead of element-at-a-time comparisons. Every cascading-merge
// step in the vectorized-basic container merges exactly two runs of
// equal size 2^l (an invariant of the COLA layer-doubling layout), so
// this case is the only one the vectorized path needs to handle; smaller
// runs fall back to the scalar merge.
func mergeTwoSortedEqualPow2Vectorized(dst, a, b []int32) {
	ai, bi, di := 0, 0, 0

	takeNext := func() [bitonicLanes]int32 {
		var v [bitonicLanes]int32
		if bi >= len(b) || (ai < len(a) && a[ai] <= b[bi]) {
			copy(v[:], a[ai:ai+bitonicLanes])
			ai += bitonicLanes
		} else {
			copy(v[:], b[bi:bi+bitonicLanes])
			bi += bitonicLanes
		}
		return v
	}

	carry := takeNext()
	totalChunks := 2 * (len(a) / bitonicLanes)
	for c := 1; c < totalChunks; c++ {
		next := takeNext()
		lower, upper := bitonicMerge8(carry, next)
		copy(dst[di:di+bitonicLanes], lower[:])
		di += bitonicLanes
		carry = upper
	}
	copy(dst[di:di+bitonicLanes], carry[:])
}

// mergeTwoSorted dispatches to the vectorized merge when both inputs
// are equal-length, at least bitonicLanes long, and the caller has
// selected the vectorized code path; otherwise it falls back to the
// scalar merge.
func mergeTwoSorted(dst, a, b []int32, vectorized bool) {
	if vectorized && len(a) == len(b) && len(a) >= bitonicLanes {
		mergeTwoSortedEqualPow2Vectorized(dst, a, b)
		return
	}
	mergeTwoSortedScalar(dst, a, b)
}
