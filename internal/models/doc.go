// Package models defines the domain types shared by the plx packages.
//
// The package contains two categories of types:
//
// 1. Matching values: plain structs passed between the scraper, the matcher and the catalog adapters
//   - [Query] : a scraped (title, artist) pair
//   - [Candidate] : one catalog search result
//   - [MatchVerdict] : the tiered outcome of matching a single query
//   - [BatchResult] : the ordered verdicts of a whole tracklist plus counters
//   - [Tracklist], [Playlist], [PlaylistEntry], [PushReport] : scrape input and playlist output
//
// 2. Persistent Entities: database-backed records of past runs
//   - [Run] : one build of a playlist from a tracklist
//   - [RunTrack] : the verdict recorded for one track of a run
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps and validation.
package models
