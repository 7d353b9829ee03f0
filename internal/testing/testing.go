// package testing contains shared testing utilities
package testing

import (
	"context"
	"net/http"
	"os"
	"testing"

	"imagehound/internal/models"
)

// MockLister is a test double for [services.Lister]. Pages are served from
// the PageFunc when set, otherwise every page is empty.
type MockLister struct {
	PageFunc func(page int) ([]models.ListingItem, error)
	Calls    []int
}

func (m *MockLister) FetchPage(ctx context.Context, page int) ([]models.ListingItem, error) {
	m.Calls = append(m.Calls, page)
	if m.PageFunc == nil {
		return nil, nil
	}
	return m.PageFunc(page)
}

// MockCommentFetcher is a test double for [services.CommentFetcher].
type MockCommentFetcher struct {
	CommentFunc func(item models.ListingItem) (string, bool, error)
	Calls       int
}

func (m *MockCommentFetcher) FetchComment(ctx context.Context, item models.ListingItem) (string, bool, error) {
	m.Calls++
	if m.CommentFunc == nil {
		return "", false, nil
	}
	return m.CommentFunc(item)
}

// MockTagExtractor is a test double for [services.TagExtractor].
type MockTagExtractor struct {
	TagsFunc func(webURL string) ([]string, error)
	Calls    int
	Closed   bool
}

func (m *MockTagExtractor) ExtractTags(ctx context.Context, webURL string) ([]string, error) {
	m.Calls++
	if m.TagsFunc == nil {
		return nil, nil
	}
	return m.TagsFunc(webURL)
}

func (m *MockTagExtractor) Close() error {
	m.Closed = true
	return nil
}

// MockInserter is a test double for the controller's persistence surface.
type MockInserter struct {
	Records []*models.ImageRecord
	Err     error
}

func (m *MockInserter) Insert(record *models.ImageRecord) error {
	if m.Err != nil {
		return m.Err
	}
	m.Records = append(m.Records, record)
	return nil
}

// MockDedupStore is a test double for the dedup engine's store probe.
type MockDedupStore struct {
	CountFunc func(username, comment string, n int) (int, error)
	Calls     int
}

func (m *MockDedupStore) CountByCommentPrefix(username, comment string, n int) (int, error) {
	m.Calls++
	if m.CountFunc == nil {
		return 0, nil
	}
	return m.CountFunc(username, comment, n)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}
