package cola

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// assertInt64MultisetEqual fails t unless got and want contain the same
// int64 values with the same multiplicities, order ignored.
func assertInt64MultisetEqual(t *testing.T, got, want []int64) {
	t.Helper()
	lessInt64 := func(a, b int64) bool { return a < b }
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(lessInt64)); diff != "" {
		t.Fatalf("multiset mismatch (-want +got):\n%s", diff)
	}
}

// assertInt32MultisetEqual is the int32 counterpart of
// assertInt64MultisetEqual, used by the vectorized variants' tests.
func assertInt32MultisetEqual(t *testing.T, got, want []int32) {
	t.Helper()
	lessInt32 := func(a, b int32) bool { return a < b }
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(lessInt32)); diff != "" {
		t.Fatalf("multiset mismatch (-want +got):\n%s", diff)
	}
}
