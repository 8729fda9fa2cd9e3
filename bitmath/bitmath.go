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

// Package bitmath holds the handful of bit tricks every COLA variant
// cascades and searches with. None of it is variant-specific; it is
// pulled out so the layer-indexing arithmetic is defined exactly once.
package bitmath

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// NextPowerOfTwoMinusOne returns the smallest value of the form 2^k-1
// that is >= x (the classic "fill every bit below the highest set bit"
// trick, with no +1 needed since 2^k-1 is already all-ones).
func NextPowerOfTwoMinusOne[T constraints.Unsigned](x T) T {
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	return x
}

// NextPowerOfTwo returns the smallest power of two >= x. x == 0 yields 0.
func NextPowerOfTwo[T constraints.Unsigned](x T) T {
	if x == 0 {
		return 0
	}
	return NextPowerOfTwoMinusOne(x-1) + 1
}

// IsPowerOfTwo reports whether x is a power of two. Zero reports true;
// callers that care about the zero case must guard for it themselves.
func IsPowerOfTwo[T constraints.Unsigned](x T) bool {
	return x&(x-1) == 0
}

// IsPowerOfTwoMinusOne reports whether x+1 is a power of two.
func IsPowerOfTwoMinusOne[T constraints.Unsigned](x T) bool {
	return IsPowerOfTwo(x + 1)
}

// LeastZeroBits isolates the lowest set bit of x and subtracts one,
// producing a mask of every bit below it. Zero maps to all-ones, which
// iterators rely on as the "no further occupied run" sentinel.
func LeastZeroBits[T constraints.Unsigned](x T) T {
	return (x & -x) - 1
}

// PopCount returns the number of set bits in x.
func PopCount[T constraints.Unsigned](x T) int {
	switch v := any(x).(type) {
	case uint8:
		return bits.OnesCount8(v)
	case uint16:
		return bits.OnesCount16(v)
	case uint32:
		return bits.OnesCount32(v)
	case uint64:
		return bits.OnesCount64(v)
	case uint:
		return bits.OnesCount(v)
	default:
		return bits.OnesCount64(uint64(x))
	}
}

// CeilDiv returns ceil(a/b) for positive b.
func CeilDiv[T constraints.Unsigned](a, b T) T {
	return (a + b - 1) / b
}

// BinarySearch performs a standard three-way binary search for value in
// buf[lo:hi], reporting membership.
func BinarySearch[T constraints.Signed](value T, buf []T, lo, hi int) bool {
	for lo < hi {
		mid := lo + (hi-lo)/2
		switch {
		case buf[mid] == value:
			return true
		case buf[mid] < value:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return false
}
