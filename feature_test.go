package stageflow_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/stageflow"
	"github.com/xraph/stageflow/either"
	"github.com/xraph/stageflow/hook"
)

func TestGroupFeature(t *testing.T) {
	wf := newBuilder().
		Do("total", pass(func(c checkout) checkout { c.Total = c.Amount; return c })).
		Group("coupon-perks", func(c checkout) bool { return c.Coupon },
			pass(func(c checkout) checkout { c.Total -= 5; return c }),
			pass(func(c checkout) checkout { c.Shipping = 0; return c }),
		).
		MustBuild()

	t.Run("condition true runs the chain", func(t *testing.T) {
		res := wf.Execute(context.Background(), order{amount: 50, coupon: true})
		if total := res.MustRight(); total != 45 {
			t.Errorf("total = %d, want 45", total)
		}
	})

	t.Run("condition false skips the chain", func(t *testing.T) {
		res := wf.Execute(context.Background(), order{amount: 50})
		if total := res.MustRight(); total != 50 {
			t.Errorf("total = %d, want 50", total)
		}
	})
}

func TestGroupFailureAborts(t *testing.T) {
	var after atomic.Int32
	wf := newBuilder().
		Group("doomed", nil,
			failWith("in-group"),
			pass(func(c checkout) checkout {
				after.Add(1)
				return c
			}),
		).
		MustBuild()

	res := wf.Execute(context.Background(), order{})
	cause, ok := res.Left()
	if !ok {
		t.Fatal("Execute returned Right, want Left")
	}
	if cause.code != "in-group" {
		t.Errorf("cause = %q, want %q", cause.code, "in-group")
	}
	if n := after.Load(); n != 0 {
		t.Errorf("activity after group failure ran %d times, want 0", n)
	}
}

// tally is feature-local state for the context feature tests.
type tally struct {
	items int
	cost  int
}

func TestContextFeature(t *testing.T) {
	b := newBuilder().
		Do("total", pass(func(c checkout) checkout { c.Total = c.Amount; return c }))

	b = stageflow.WithContext(b, "price-breakdown", nil,
		func(c checkout) *tally { return &tally{items: 1} },
		func(_ context.Context, c checkout, l *tally) either.Either[flowErr, stageflow.Scoped[checkout, *tally]] {
			l.cost = c.Total * l.items
			return either.Right[flowErr](stageflow.Scoped[checkout, *tally]{Payload: c, Local: l})
		},
		func(_ context.Context, c checkout, l *tally) either.Either[flowErr, stageflow.Scoped[checkout, *tally]] {
			c.Total = l.cost + 7
			return either.Right[flowErr](stageflow.Scoped[checkout, *tally]{Payload: c, Local: l})
		},
	)
	wf := b.MustBuild()

	res := wf.Execute(context.Background(), order{amount: 20})
	if total := res.MustRight(); total != 27 {
		t.Errorf("total = %d, want 27: local state must thread through the chain", total)
	}
}

func TestContextFeatureFailure(t *testing.T) {
	b := newBuilder()
	b = stageflow.WithContext(b, "doomed", nil,
		func(c checkout) int { return 0 },
		func(_ context.Context, _ checkout, _ int) either.Either[flowErr, stageflow.Scoped[checkout, int]] {
			return either.Left[flowErr, stageflow.Scoped[checkout, int]](flowErr{code: "in-context"})
		},
	)
	wf := b.MustBuild()

	res := wf.Execute(context.Background(), order{})
	if cause, ok := res.Left(); !ok || cause.code != "in-context" {
		t.Errorf("Execute = %v, want Left(in-context)", res)
	}
}

func TestParallelMerge(t *testing.T) {
	wf := newBuilder().
		Do("total", pass(func(c checkout) checkout { c.Total = c.Amount; return c })).
		Parallel("enrich", nil, stageflow.ZeroFieldMerge[checkout](),
			stageflow.NewBranch("tax",
				pass(func(c checkout) checkout { c.Tax = 10; return c })),
			stageflow.NewBranch("shipping",
				pass(func(c checkout) checkout { c.Shipping = 30; return c })),
		).
		Do("sum", pass(func(c checkout) checkout { c.Total += c.Tax + c.Shipping; return c })).
		MustBuild()

	res := wf.Execute(context.Background(), order{amount: 100})
	if total := res.MustRight(); total != 140 {
		t.Errorf("total = %d, want 140: both branch edits must merge", total)
	}
}

func TestParallelBranchesSeeSameSnapshot(t *testing.T) {
	var mu sync.Mutex
	var seen []int

	wf := newBuilder().
		Do("total", pass(func(c checkout) checkout { c.Total = 42; return c })).
		Parallel("observe", nil, func(original checkout, _ []checkout) checkout { return original },
			stageflow.NewBranch("a", pass(func(c checkout) checkout {
				mu.Lock()
				seen = append(seen, c.Total)
				mu.Unlock()
				c.Total = 1
				return c
			})),
			stageflow.NewBranch("b", pass(func(c checkout) checkout {
				mu.Lock()
				seen = append(seen, c.Total)
				mu.Unlock()
				c.Total = 2
				return c
			})),
		).
		MustBuild()

	res := wf.Execute(context.Background(), order{})
	if total := res.MustRight(); total != 42 {
		t.Errorf("total = %d, want 42: merge kept the original", total)
	}
	mu.Lock()
	defer mu.Unlock()
	for _, v := range seen {
		if v != 42 {
			t.Errorf("branch observed Total = %d, want the pre-parallel snapshot 42", v)
		}
	}
}

func TestParallelFailureDiscardsEdits(t *testing.T) {
	var finallySaw atomic.Int64
	wf := newBuilder().
		Do("total", pass(func(c checkout) checkout { c.Total = 100; return c })).
		Parallel("enrich", nil, stageflow.ZeroFieldMerge[checkout](),
			stageflow.NewBranch("edits",
				pass(func(c checkout) checkout { c.Total = 999; return c })),
			stageflow.NewBranch("fails", failWith("branch-down")),
		).
		Finally("observe", pass(func(c checkout) checkout {
			finallySaw.Store(int64(c.Total))
			return c
		})).
		MustBuild()

	res := wf.Execute(context.Background(), order{})
	if cause, ok := res.Left(); !ok || cause.code != "branch-down" {
		t.Fatalf("Execute = %v, want Left(branch-down)", res)
	}
	if got := finallySaw.Load(); got != 100 {
		t.Errorf("finally observed Total = %d, want pre-parallel 100: edits of a failed fan-out must be discarded", got)
	}
}

func TestParallelLowestIndexFailureWins(t *testing.T) {
	wf := newBuilder().
		Parallel("fanout", nil, stageflow.ZeroFieldMerge[checkout](),
			stageflow.NewBranch("ok", pass(func(c checkout) checkout { return c })),
			stageflow.NewBranch("slow-failure", func(_ context.Context, _ checkout) either.Either[flowErr, checkout] {
				time.Sleep(30 * time.Millisecond)
				return either.Left[flowErr, checkout](flowErr{code: "slow"})
			}),
			stageflow.NewBranch("fast-failure", failWith("fast")),
		).
		MustBuild()

	res := wf.Execute(context.Background(), order{})
	cause, ok := res.Left()
	if !ok {
		t.Fatal("Execute returned Right, want Left")
	}
	if cause.code != "slow" {
		t.Errorf("cause = %q, want %q: lowest branch index wins regardless of completion order", cause.code, "slow")
	}
}

func TestMaxParallelBoundsConcurrency(t *testing.T) {
	var current, peak atomic.Int32
	branch := func(name string) stageflow.Branch[checkout, flowErr] {
		return stageflow.NewBranch(name, func(_ context.Context, c checkout) either.Either[flowErr, checkout] {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return either.Right[flowErr](c)
		})
	}

	wf := newBuilder().
		MaxParallel(1).
		Parallel("bounded", nil, stageflow.ZeroFieldMerge[checkout](),
			branch("a"), branch("b"), branch("c"), branch("d"),
		).
		MustBuild()

	if res := wf.Execute(context.Background(), order{}); res.IsLeft() {
		t.Fatalf("Execute returned Left(%v)", res.MustLeft())
	}
	if p := peak.Load(); p != 1 {
		t.Errorf("peak concurrency = %d, want 1", p)
	}
}

// handleCapture collects Handles delivered for detached work.
type handleCapture struct {
	ch chan hook.Handle
}

func (h *handleCapture) Name() string { return "handle-capture" }

func (h *handleCapture) OnDetachedSpawned(_ context.Context, _ *hook.StageInfo, hd hook.Handle) error {
	h.ch <- hd
	return nil
}

func waitHandle(t *testing.T, h hook.Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("detached chain %q did not finish", h.Stage())
	}
}

func TestDetachedNeverChangesResult(t *testing.T) {
	reg := hook.NewRegistry(nil)
	capture := &handleCapture{ch: make(chan hook.Handle, 1)}
	reg.Register(capture)

	wf := newBuilder().
		Do("total", pass(func(c checkout) checkout { c.Total = 5; return c })).
		Detach("audit", nil,
			pass(func(c checkout) checkout { c.Total = 999; return c }),
			failWith("audit-down"),
		).
		Do("after", pass(func(c checkout) checkout { c.Total++; return c })).
		WithHooks(reg).
		MustBuild()

	res := wf.Execute(context.Background(), order{})
	if total := res.MustRight(); total != 6 {
		t.Errorf("total = %d, want 6: detached work must not touch the run", total)
	}

	h := <-capture.ch
	waitHandle(t, h)
	if !h.Failed() {
		t.Error("handle.Failed() = false, want true")
	}
	if cause, ok := h.Cause().(flowErr); !ok || cause.code != "audit-down" {
		t.Errorf("handle.Cause() = %v, want audit-down", h.Cause())
	}
}

func TestDetachedSurvivesRunCancellation(t *testing.T) {
	reg := hook.NewRegistry(nil)
	capture := &handleCapture{ch: make(chan hook.Handle, 1)}
	reg.Register(capture)

	ctx, cancel := context.WithCancel(context.Background())
	wf := newBuilder().
		Detach("slow", nil, func(ctx context.Context, c checkout) either.Either[flowErr, checkout] {
			select {
			case <-ctx.Done():
				return either.Left[flowErr, checkout](flowErr{code: "killed"})
			case <-time.After(20 * time.Millisecond):
				return either.Right[flowErr](c)
			}
		}).
		WithHooks(reg).
		MustBuild()

	res := wf.Execute(ctx, order{})
	cancel()
	if res.IsLeft() {
		t.Fatalf("Execute returned Left(%v)", res.MustLeft())
	}

	h := <-capture.ch
	waitHandle(t, h)
	if h.Failed() {
		t.Errorf("detached chain failed with %v: cancellation of the run must not reach it", h.Cause())
	}
}

func TestParallelDetach(t *testing.T) {
	reg := hook.NewRegistry(nil)
	capture := &handleCapture{ch: make(chan hook.Handle, 2)}
	reg.Register(capture)

	var ran atomic.Int32
	branch := func(name string) stageflow.Branch[checkout, flowErr] {
		return stageflow.NewBranch(name, pass(func(c checkout) checkout {
			ran.Add(1)
			return c
		}))
	}

	wf := newBuilder().
		Do("total", pass(func(c checkout) checkout { c.Total = 11; return c })).
		ParallelDetach("notify", nil, branch("email"), branch("sms")).
		WithHooks(reg).
		MustBuild()

	res := wf.Execute(context.Background(), order{})
	if total := res.MustRight(); total != 11 {
		t.Errorf("total = %d, want 11", total)
	}

	for range 2 {
		waitHandle(t, <-capture.ch)
	}
	if n := ran.Load(); n != 2 {
		t.Errorf("detached branches ran %d times, want 2", n)
	}
}

func TestFeatureConditionSkipEmitsHook(t *testing.T) {
	reg := hook.NewRegistry(nil)
	capture := &lifecycleCapture{}
	reg.Register(capture)

	wf := newBuilder().
		Group("never", func(checkout) bool { return false },
			pass(func(c checkout) checkout { c.Total = 1; return c })).
		WithHooks(reg).
		MustBuild()

	if res := wf.Execute(context.Background(), order{}); res.IsLeft() {
		t.Fatalf("Execute returned Left(%v)", res.MustLeft())
	}
	capture.mu.Lock()
	defer capture.mu.Unlock()
	if len(capture.skipped) != 1 || capture.skipped[0] != "never" {
		t.Errorf("skipped = %v, want [never]", capture.skipped)
	}
}
