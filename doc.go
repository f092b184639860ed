// Package stageflow is an in-process workflow execution engine. A
// workflow is declared once through a Builder as an ordered pipeline of
// typed stages and then executed any number of times concurrently.
//
// A workflow is parameterized over four types: the request R it accepts,
// the payload P its activities fold over, the success value S it
// produces, and the domain error E any stage can abort with. Stage
// results are expressed with either.Either and either.Option rather
// than Go's error convention, so the failure channel carries the
// caller's own error type end to end.
//
// Each execution proceeds through fixed phases: validations and guards
// inspect the request, the payload factory builds the working state,
// activities and features transform it, finally activities clean up,
// and the result selector produces the success value. The first Left
// short-circuits the main pipeline; finally activities still run
// whenever the payload was constructed.
//
// Features are higher-order stages: gated groups, context features with
// feature-local state, detached fire-and-forget chains, and parallel
// fan-outs joined by an explicit merge function.
//
// Basic usage:
//
//	wf := stageflow.New[Order, Checkout, Receipt, CheckoutError](
//	    "checkout", newCheckout, selectReceipt).
//	    Validate("order-not-empty", orderNotEmpty).
//	    Guard("customer-active", customerActive).
//	    Do("price", price).
//	    DoIf("apply-discount", hasCoupon, applyDiscount).
//	    Parallel("enrich", nil, stageflow.ZeroFieldMerge[Checkout](),
//	        stageflow.NewBranch("tax", computeTax),
//	        stageflow.NewBranch("shipping", computeShipping)).
//	    Finally("release-hold", releaseHold).
//	    MustBuild()
//
//	res := wf.Execute(ctx, order)
//	if receipt, ok := res.Right(); ok {
//	    // success
//	}
//
// Cross-cutting behavior attaches through the middleware package
// (logging, panic recovery, deadlines, rate limiting, OpenTelemetry
// traces and metrics) and the hook package (run and stage lifecycle
// extensions, including Handle delivery for detached work).
package stageflow
