// Package repositories implements SQLite persistence for harvested image
// records.
//
// The images table is append-only and carries no uniqueness constraint:
// duplicate rejection is content-based and happens upstream in the dedup
// engine, so the store accepts whatever the controller hands it. Tags are
// stored as a JSON array in a TEXT column.
//
// Key operations on [ImageRepository]:
//   - [ImageRepository.LoadDedupKeys] : bulk read of (tags, comment) pairs at startup
//   - [ImageRepository.Insert] : single-record insert with immediate commit
//   - [ImageRepository.CountByCommentPrefix] : username + truncated-comment duplicate probe
//   - [ImageRepository.List] : newest-first read-back for export and stats
package repositories
