// Package resilience bounds outbound provider calls.
//
// Two patterns are provided:
//
//   - Timeout: a call that outlives its deadline fails with ErrTimeout.
//   - Bulkhead: at most MaxConcurrent calls run at once; callers wait up to
//     MaxWait for a slot and then fail with ErrBulkheadFull.
//
// Executor composes them, bulkhead outermost, so a call waiting for a slot
// does not spend its timeout budget.
//
// Failed calls are never retried here. Repeat suppression for identical
// requests lives in the guard package.
//
//	exec := resilience.NewExecutor(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4})),
//	    resilience.WithTimeout(10*time.Second),
//	)
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    resp, err = p.Search(ctx, req)
//	    return err
//	})
package resilience
