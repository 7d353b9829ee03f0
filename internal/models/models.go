package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexInt is an int64 that unmarshals from either a JSON number or a
// numeric string. Listing payloads are inconsistent about quoting ids.
type FlexInt int64

// UnmarshalJSON decodes a JSON number, a quoted digit string, or null.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer value %q: %w", s, err)
	}

	*f = FlexInt(n)
	return nil
}

// ListingItem is one record returned by the paginated remote listing.
//
// WebURL is not part of the wire format; it is derived from the listing
// base URL and the item id when a page is fetched.
type ListingItem struct {
	ID        FlexInt `json:"id"`
	URL       string  `json:"url"`
	Hash      string  `json:"hash"`
	CreatedAt string  `json:"createdAt"`
	PostID    FlexInt `json:"postId"`
	Username  string  `json:"username"`
	WebURL    string  `json:"-"`
}

// ImageRecord is a candidate record pending the dedup decision: a listing
// item enriched with its downloaded user comment and rendered tags.
type ImageRecord struct {
	ID          int64      `json:"id"`
	URL         string     `json:"url"`
	Hash        string     `json:"hash"`
	CreatedAt   *time.Time `json:"createdAt"`
	PostID      int64      `json:"postId"`
	Username    string     `json:"username"`
	WebURL      string     `json:"web_url"`
	Tags        []string   `json:"tags"`
	UserComment string     `json:"user_comment"`
}

// NewImageRecord assembles a candidate record from a listing item plus the
// extracted tags and comment. The creation timestamp is normalized via
// [StandardizeDate]; an unparseable timestamp yields a nil CreatedAt and a
// non-nil error alongside the otherwise usable record, so callers can log
// the bad value without dropping the item.
func NewImageRecord(item ListingItem, tags []string, userComment string) (*ImageRecord, error) {
	createdAt, err := StandardizeDate(item.CreatedAt)
	return &ImageRecord{
		ID:          int64(item.ID),
		URL:         item.URL,
		Hash:        item.Hash,
		CreatedAt:   createdAt,
		PostID:      int64(item.PostID),
		Username:    item.Username,
		WebURL:      item.WebURL,
		Tags:        tags,
		UserComment: userComment,
	}, err
}

// Validate checks that the record is persistable: both the tag sequence
// and the user comment must be non-empty.
func (r *ImageRecord) Validate() error {
	if len(r.Tags) == 0 {
		return fmt.Errorf("record %d has no tags", r.ID)
	}
	if strings.TrimSpace(r.UserComment) == "" {
		return fmt.Errorf("record %d has no user comment", r.ID)
	}
	return nil
}

// Map returns the record as a generic map with numeric-looking string
// fields coerced via [CoerceNumericFields]. Used at formatting time.
func (r *ImageRecord) Map() map[string]any {
	m := map[string]any{
		"id":           r.ID,
		"url":          r.URL,
		"hash":         r.Hash,
		"postId":       r.PostID,
		"username":     r.Username,
		"web_url":      r.WebURL,
		"tags":         r.Tags,
		"user_comment": r.UserComment,
	}
	if r.CreatedAt != nil {
		m["createdAt"] = r.CreatedAt.Format(time.RFC3339)
	} else {
		m["createdAt"] = nil
	}
	CoerceNumericFields(m)
	return m
}

// DedupKey is the derived (ordered tags, full comment) pair used for
// exact-match membership testing. It ignores id, url, and timestamps.
type DedupKey struct {
	Tags    string
	Comment string
}

// tagSeparator joins the ordered tag sequence into a single comparable
// string. The unit separator never occurs in rendered tag text.
const tagSeparator = "\x1f"

// NewDedupKey derives the membership key for a (tags, comment) pair.
// Tag order is significant: the same tags in a different order produce a
// different key.
func NewDedupKey(tags []string, comment string) DedupKey {
	return DedupKey{Tags: strings.Join(tags, tagSeparator), Comment: comment}
}

// StandardizeDate normalizes a listing timestamp to canonical RFC 3339.
// Returns (nil, nil) for an absent value and (nil, err) when parsing fails.
func StandardizeDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date %q: %w", value, err)
	}

	return &t, nil
}

// CoerceNumericFields converts numeric-looking string values in place:
// digit strings become int64, other parseable strings become float64.
// Nested maps are coerced recursively.
func CoerceNumericFields(m map[string]any) {
	for key, value := range m {
		switch v := value.(type) {
		case map[string]any:
			CoerceNumericFields(v)
		case string:
			if isDigits(v) {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil {
					m[key] = n
					continue
				}
			}
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				m[key] = f
			}
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
