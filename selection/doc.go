// Package selection tracks which single search result a user has picked
// across several provider result pools.
//
// A Reconciler owns one pool per provider. Selecting an item in one pool
// clears every other pool in the same step, so no caller ever observes two
// providers reporting a selection. Selecting the already selected item
// toggles back to the empty state.
//
// Commit hands the final pick to the caller as a flat Selection value.
// An empty commit is a normal outcome, reported with ok == false.
package selection
