// Package services implements the three external collaborators of the
// ingestion pipeline.
//
// # Interfaces
//
// The harvesting controller depends only on the small interfaces declared in
// services.go, so each collaborator can be swapped for a test double:
//   - [Lister] : paginated listing fetch from the remote gallery API
//   - [CommentFetcher] : content download plus embedded user-comment extraction
//   - [TagExtractor] : rendered-page tag collection
//
// # Implementations
//
// [GalleryService] talks to the JSON listing endpoint with a static bearer
// key. A failed page fetch is an error for the caller to swallow, never a
// fatal condition.
//
// [ContentService] downloads each item to a uniquely named temporary file,
// reads the EXIF UserComment tag, and applies the UTF-16-BE → UTF-8 → ASCII
// decode ladder. A missing or undecodable comment is a soft miss, not an
// error.
//
// [BrowserExtractor] owns a headless chromedp session. Recoverable faults
// (wait timeout, zero tags) retry with a fixed delay; session-level faults
// tear the browser down and reinitialize it. Exhausted retries yield an
// empty tag slice, which callers treat as "skip this item". Repeated
// session-initialization failure is fatal to the run.
package services
