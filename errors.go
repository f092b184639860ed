package stageflow

import "errors"

var (
	// Configuration errors returned by Build.
	ErrNoPayloadFactory = errors.New("stageflow: no payload factory configured")
	ErrNoResultSelector = errors.New("stageflow: no result selector configured")
	ErrNoMerge          = errors.New("stageflow: parallel feature requires a merge function")
	ErrNoBranches       = errors.New("stageflow: parallel feature requires at least one branch")
	ErrNoErrorAdapter   = errors.New("stageflow: middleware requires an error adapter")
	ErrNilStage         = errors.New("stageflow: nil stage function registered")
)
