// Package storage persists encoded values in a key-value medium.
//
// A RawStore is the minimal capability the rest of the module needs from a
// backend: read, write and delete one string per key. Memory, SQLite and
// Redis backends are provided. A Codec turns JSON-serializable values into
// opaque tokens and back; the Adapter joins the two and absorbs read and
// decode failures so callers only ever observe "absent".
//
// The default ObfuscatingCodec is reversible obfuscation, not encryption.
// SignedCodec detects tampering but the payload remains readable.
package storage
