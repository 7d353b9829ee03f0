// Package models defines the data model for the image harvesting pipeline.
//
// The package contains two categories of types:
//
// 1. Wire types decoded from the remote listing API:
//   - [ListingItem] : One record from the paginated listing, pre-extraction
//   - [FlexInt] : Integer field that tolerates numeric strings in JSON
//
// 2. Pipeline types owned by this process:
//   - [ImageRecord] : A candidate record enriched with the downloaded comment and rendered tags
//   - [DedupKey] : The (ordered tags, user comment) pair used for exact-match membership tests
//
// A record is persisted only when [ImageRecord.Validate] passes, which requires
// both a non-empty tag sequence and a non-empty user comment.
package models
