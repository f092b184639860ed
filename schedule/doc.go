// Package schedule fires workflows on cron schedules.
//
// A Scheduler runs a single tick loop and evaluates registered entries
// against their parsed cron expressions. Expressions use the standard
// 5-field syntax plus descriptors like "@every 30s". Each firing runs
// on its own goroutine, so one slow workflow never delays another
// entry's schedule.
//
//	sched := schedule.NewScheduler(logger)
//	sched.Add("nightly-report", "0 2 * * *", func(ctx context.Context) {
//	    wf.Execute(ctx, reportRequest{})
//	})
//	sched.Start(ctx)
//	defer sched.Stop()
//
// The scheduler is in-process and single-instance; running the same
// schedule from several processes fires it once per process.
package schedule
