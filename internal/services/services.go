package services

import (
	"context"

	"imagehound/internal/models"
)

// Lister fetches one page of the remote content listing.
type Lister interface {
	// FetchPage returns the ordered listing items for the given page number,
	// each with its derived web URL attached. Network failures and
	// non-success statuses surface as errors; the caller decides policy.
	FetchPage(ctx context.Context, page int) ([]models.ListingItem, error)
}

// CommentFetcher downloads an item's content and extracts its embedded
// user comment.
type CommentFetcher interface {
	// FetchComment returns (comment, true, nil) when a decodable comment is
	// present, ("", false, nil) when the content carries none, and an error
	// only for hard download or filesystem failures.
	FetchComment(ctx context.Context, item models.ListingItem) (string, bool, error)
}

// TagExtractor collects the rendered tag set for an item's web URL.
type TagExtractor interface {
	// ExtractTags returns the non-empty trimmed tag texts found on the page.
	// An empty slice with a nil error signals extraction failure after
	// exhausted retries; a non-nil error is fatal to the run.
	ExtractTags(ctx context.Context, webURL string) ([]string, error)

	// Close releases the rendering session.
	Close() error
}
