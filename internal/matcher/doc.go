// Package matcher decides which catalog search result, if any, corresponds to a
// scraped (title, artist) query.
//
// Matching is tiered. A candidate must first be valid ([Valid]): a playable
// track with an id whose artist equals the query artist ignoring case. The
// first valid candidate whose title equals the query title ignoring case is an
// exact match; failing that, the first valid candidate whose title is equal
// after [Normalizer.Normalize] is a normalized match. When neither exists and
// guided mode is on, a [Disambiguator] is asked to pick one of the deduplicated
// [Choices].
//
// [Batch] runs the searches of a whole tracklist through a bounded worker pool
// and then resolves every query in input order, so prompts never interleave.
package matcher
