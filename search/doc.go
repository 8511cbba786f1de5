// Package search runs narration-driven media searches across providers.
//
// A Service owns the shared pieces: the provider set, the result cache, the
// in-flight call collapse and the call bounds. A Session is one user's pass
// over one scene: it owns the selection state, a repeat-fetch guard per
// provider and a sequencer that discards results from superseded searches.
//
// For each provider a Session.Search call:
//
//  1. picks the query: the explicit text, or the synthesized phrase for
//     phrase providers and the synthesized word terms for word providers;
//  2. derives the cache key from provider, query, page and page size;
//  3. answers from the cache when a fresh entry exists;
//  4. otherwise consults the session's guard, reporting Suppressed when the
//     same key was attempted inside the window;
//  5. dispatches the call, sharing it with concurrent identical calls and
//     bounding it with a bulkhead and a timeout;
//  6. reports failures as an empty pool plus an error, without retrying;
//  7. caches successes and updates the selection pool, unless a newer
//     search has started, in which case the outcome is Stale.
//
// Commit persists the session's final pick per scene; Service.LastSelection
// reads it back.
package search
