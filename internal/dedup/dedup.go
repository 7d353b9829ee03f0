// Package dedup classifies candidate records as new, exact-store
// duplicates, or in-memory near-duplicates.
//
// The two gates are intentionally different granularities and are kept
// independent: the store gate compares username plus the first
// [PrefixLength] comment characters (comments carry volatile suffixes),
// while the memory gate compares the full (ordered tags, comment) pair
// against the set loaded at startup.
package dedup

import (
	"fmt"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"imagehound/internal/models"
)

// PrefixLength is the number of leading comment characters compared by the
// store gate.
const PrefixLength = 100

// Store is the persistence surface the engine probes for exact-store
// duplicates.
type Store interface {
	CountByCommentPrefix(username, comment string, n int) (int, error)
}

// Engine holds the store handle and the in-memory set of previously seen
// (tags, comment) pairs.
type Engine struct {
	store Store
	seen  map[models.DedupKey]struct{}
}

// NewEngine creates an Engine seeded with the dedup keys loaded from the
// store at startup.
func NewEngine(store Store, keys []models.DedupKey) *Engine {
	seen := make(map[models.DedupKey]struct{}, len(keys))
	for _, key := range keys {
		seen[key] = struct{}{}
	}

	return &Engine{store: store, seen: seen}
}

// IsStoreDuplicate reports whether the store holds a record for this
// username whose comment matches the candidate's on the first
// [PrefixLength] characters. A store error returns (false, err): callers
// fail open and log.
func (e *Engine) IsStoreDuplicate(username, comment string) (bool, error) {
	count, err := e.store.CountByCommentPrefix(username, comment, PrefixLength)
	if err != nil {
		return false, fmt.Errorf("duplicate check failed: %w", err)
	}

	return count > 0, nil
}

// IsMemoryDuplicate reports whether the full (ordered tags, comment) pair
// has been seen before, either loaded at startup or remembered this run.
func (e *Engine) IsMemoryDuplicate(tags []string, comment string) bool {
	_, ok := e.seen[models.NewDedupKey(tags, comment)]
	return ok
}

// Remember records a pair after a successful insert so same-run repeats
// are caught without a query round trip.
func (e *Engine) Remember(tags []string, comment string) {
	e.seen[models.NewDedupKey(tags, comment)] = struct{}{}
}

// Len returns the number of known pairs.
func (e *Engine) Len() int {
	return len(e.seen)
}

// Similarity returns the ratio of matching content between two comments in
// [0, 1], computed as 2*matched/total over the diff's equal runs.
func Similarity(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	dmp := diffmatchpatch.New()
	matched := 0
	for _, d := range dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			matched += utf8.RuneCountInString(d.Text)
		}
	}

	return float64(2*matched) / float64(total)
}

// SimilarToRecent reports whether the comment's similarity to any record in
// the history buffer exceeds the threshold. Informational: the controller
// logs near-matches but never rejects on them.
func SimilarToRecent(comment string, history []*models.ImageRecord, threshold float64) bool {
	for _, prev := range history {
		if prev == nil {
			continue
		}
		if Similarity(comment, prev.UserComment) > threshold {
			return true
		}
	}
	return false
}
