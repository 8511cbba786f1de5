// Package health reports whether the cache backend is usable.
//
// A Checker produces a Result with a Status of healthy, degraded or
// unhealthy. The Aggregator runs registered checkers in parallel under one
// deadline and folds their results into a Report whose overall status is the
// worst individual status.
//
// Two checkers ship with the package:
//
//   - StorageChecker pings a storage.RawStore and degrades when the round
//     trip is slow.
//   - RoundTripChecker writes a probe value through a storage.Adapter, reads
//     it back and deletes it, catching codec and key mismatches that a ping
//     cannot see.
package health
