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

// Package cpufeature answers one question, once: does this CPU support
// the 256-bit integer SIMD operations (gather, min/max, blend, permute,
// compare) that the vectorized COLA variants need. It exists so the two
// vectorized containers can feature-gate at construction instead of
// faulting mid-merge, mirroring the call-once-and-branch shape
// templexxx/xorsimd uses to pick an AVX512/AVX2/SSE2/generic XOR routine.
package cpufeature

import "github.com/klauspost/cpuid/v2"

// HasAVX2Int256 reports whether the host CPU supports the 256-bit
// integer SIMD feature set (AVX2) the vectorized variants' merge and
// search inner loops are modeled on.
func HasAVX2Int256() bool {
	return cpuid.CPU.Supports(cpuid.AVX2, cpuid.AVX)
}
