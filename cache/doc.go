// Package cache provides TTL-bound caching of query results with
// deterministic key derivation.
//
// Entries are stored through a storage.Adapter as {data, timestamp} and are
// expired lazily at read time: an entry is stale once its age reaches the
// maximum age. DeriveKey is the single place query identity is computed.
package cache
