package stageflow_test

import (
	"testing"

	"github.com/xraph/stageflow"
)

func TestZeroFieldMergeStruct(t *testing.T) {
	type payload struct {
		Base     int
		Tax      int
		Shipping int
	}
	merge := stageflow.ZeroFieldMerge[payload]()

	original := payload{Base: 1}
	got := merge(original, []payload{
		{Base: 1, Tax: 10},
		{Base: 1, Shipping: 30},
	})
	want := payload{Base: 1, Tax: 10, Shipping: 30}
	if got != want {
		t.Errorf("merge = %+v, want %+v", got, want)
	}
}

func TestZeroFieldMergeLaterBranchWins(t *testing.T) {
	type payload struct{ N int }
	merge := stageflow.ZeroFieldMerge[payload]()

	got := merge(payload{N: 1}, []payload{{N: 2}, {N: 3}})
	if got.N != 3 {
		t.Errorf("N = %d, want 3: later branches win on conflict", got.N)
	}
}

func TestZeroFieldMergeKeepsOriginalForZeroBranchField(t *testing.T) {
	type payload struct {
		Keep int
		Set  int
	}
	merge := stageflow.ZeroFieldMerge[payload]()

	got := merge(payload{Keep: 7}, []payload{{Set: 2}})
	if got.Keep != 7 || got.Set != 2 {
		t.Errorf("merge = %+v, want Keep 7 and Set 2", got)
	}
}

func TestZeroFieldMergeNonStruct(t *testing.T) {
	merge := stageflow.ZeroFieldMerge[int]()
	if got := merge(1, []int{2, 3}); got != 3 {
		t.Errorf("merge = %d, want the last branch result 3", got)
	}
	if got := merge(1, nil); got != 1 {
		t.Errorf("merge = %d, want the original 1", got)
	}
}
