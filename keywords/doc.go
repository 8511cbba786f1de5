// Package keywords turns narration text into provider search queries.
//
// Two query shapes come out of one narration:
//
//   - a word list for word-oriented providers (WordTerms), and
//   - a bounded natural-language phrase for phrase-oriented providers,
//     assembled from suggestion clauses (Suggestions, Combine).
//
// Everything here is deterministic: the same narration always yields the same
// bundle, which is what makes query results cacheable.
package keywords
