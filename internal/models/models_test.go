package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexInt(t *testing.T) {
	t.Run("decodes a JSON number", func(t *testing.T) {
		var v struct {
			ID FlexInt `json:"id"`
		}
		if err := json.Unmarshal([]byte(`{"id": 12345}`), &v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.ID != 12345 {
			t.Errorf("expected 12345, got %d", v.ID)
		}
	})

	t.Run("decodes a quoted digit string", func(t *testing.T) {
		var v struct {
			ID FlexInt `json:"id"`
		}
		if err := json.Unmarshal([]byte(`{"id": "98765"}`), &v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.ID != 98765 {
			t.Errorf("expected 98765, got %d", v.ID)
		}
	})

	t.Run("decodes null as zero", func(t *testing.T) {
		var v struct {
			ID FlexInt `json:"id"`
		}
		if err := json.Unmarshal([]byte(`{"id": null}`), &v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.ID != 0 {
			t.Errorf("expected 0, got %d", v.ID)
		}
	})

	t.Run("rejects a non-numeric string", func(t *testing.T) {
		var v struct {
			ID FlexInt `json:"id"`
		}
		if err := json.Unmarshal([]byte(`{"id": "abc"}`), &v); err == nil {
			t.Error("expected an error for non-numeric id")
		}
	})
}

func TestListingItemDecoding(t *testing.T) {
	payload := `{
		"id": "42",
		"url": "https://cdn.example.com/42.jpg",
		"hash": "abc123",
		"createdAt": "2024-03-01T12:30:00Z",
		"postId": 420,
		"username": "alice"
	}`

	var item ListingItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.ID != 42 || item.PostID != 420 {
		t.Errorf("expected id=42 postId=420, got id=%d postId=%d", item.ID, item.PostID)
	}
	if item.Username != "alice" {
		t.Errorf("expected username alice, got %q", item.Username)
	}
	if item.WebURL != "" {
		t.Error("WebURL must not come from the wire")
	}
}

func TestImageRecord(t *testing.T) {
	item := ListingItem{
		ID:        7,
		URL:       "https://cdn.example.com/7.jpg",
		Hash:      "h7",
		CreatedAt: "2024-03-01T12:30:00Z",
		PostID:    70,
		Username:  "alice",
		WebURL:    "https://gallery.example.com/api/v1/images/7",
	}

	t.Run("assembles from a listing item", func(t *testing.T) {
		record, err := NewImageRecord(item, []string{"a", "b"}, "hello world")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if record.ID != 7 || record.PostID != 70 {
			t.Errorf("unexpected ids: %d %d", record.ID, record.PostID)
		}
		if record.CreatedAt == nil {
			t.Fatal("expected a parsed timestamp")
		}
		if !record.CreatedAt.Equal(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)) {
			t.Errorf("unexpected timestamp: %v", record.CreatedAt)
		}
		if err := record.Validate(); err != nil {
			t.Errorf("expected valid record, got %v", err)
		}
	})

	t.Run("surfaces an unparseable timestamp", func(t *testing.T) {
		bad := item
		bad.CreatedAt = "yesterday"
		record, err := NewImageRecord(bad, []string{"a"}, "hello")
		if err == nil {
			t.Error("expected a parse error for a bad timestamp")
		}
		if record == nil {
			t.Fatal("record must still be assembled")
		}
		if record.CreatedAt != nil {
			t.Error("expected nil CreatedAt for a bad timestamp")
		}
		if err := record.Validate(); err != nil {
			t.Errorf("record must remain usable, got %v", err)
		}
	})

	t.Run("rejects empty tags", func(t *testing.T) {
		record, _ := NewImageRecord(item, nil, "hello")
		if err := record.Validate(); err == nil {
			t.Error("expected validation failure for empty tags")
		}
	})

	t.Run("rejects an empty comment", func(t *testing.T) {
		record, _ := NewImageRecord(item, []string{"a"}, "  ")
		if err := record.Validate(); err == nil {
			t.Error("expected validation failure for empty comment")
		}
	})
}

func TestDedupKey(t *testing.T) {
	t.Run("same pair produces the same key", func(t *testing.T) {
		a := NewDedupKey([]string{"x", "y"}, "c")
		b := NewDedupKey([]string{"x", "y"}, "c")
		if a != b {
			t.Error("expected equal keys")
		}
	})

	t.Run("tag order is significant", func(t *testing.T) {
		a := NewDedupKey([]string{"x", "y"}, "c")
		b := NewDedupKey([]string{"y", "x"}, "c")
		if a == b {
			t.Error("expected different keys for reordered tags")
		}
	})

	t.Run("ignores id and url", func(t *testing.T) {
		r1 := &ImageRecord{ID: 1, URL: "u1", Tags: []string{"t"}, UserComment: "c"}
		r2 := &ImageRecord{ID: 2, URL: "u2", Tags: []string{"t"}, UserComment: "c"}
		if NewDedupKey(r1.Tags, r1.UserComment) != NewDedupKey(r2.Tags, r2.UserComment) {
			t.Error("keys must depend only on tags and comment")
		}
	})

	t.Run("joined tags do not collide across boundaries", func(t *testing.T) {
		a := NewDedupKey([]string{"ab", "c"}, "x")
		b := NewDedupKey([]string{"a", "bc"}, "x")
		if a == b {
			t.Error("expected distinct keys for different tag splits")
		}
	})
}

func TestStandardizeDate(t *testing.T) {
	t.Run("normalizes a Z-suffixed timestamp", func(t *testing.T) {
		ts, err := StandardizeDate("2024-03-01T12:30:00Z")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ts == nil || ts.UTC().Hour() != 12 {
			t.Errorf("unexpected result: %v", ts)
		}
	})

	t.Run("accepts an explicit offset", func(t *testing.T) {
		ts, err := StandardizeDate("2024-03-01T12:30:00+02:00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ts.UTC().Hour() != 10 {
			t.Errorf("expected 10:30 UTC, got %v", ts.UTC())
		}
	})

	t.Run("returns nil for an absent value", func(t *testing.T) {
		ts, err := StandardizeDate("")
		if err != nil || ts != nil {
			t.Errorf("expected (nil, nil), got (%v, %v)", ts, err)
		}
	})

	t.Run("errors on garbage", func(t *testing.T) {
		if _, err := StandardizeDate("not-a-date"); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestCoerceNumericFields(t *testing.T) {
	t.Run("coerces digit strings to int64", func(t *testing.T) {
		m := map[string]any{"id": "123", "name": "alice"}
		CoerceNumericFields(m)
		if m["id"] != int64(123) {
			t.Errorf("expected int64(123), got %T %v", m["id"], m["id"])
		}
		if m["name"] != "alice" {
			t.Errorf("non-numeric strings must stay put, got %v", m["name"])
		}
	})

	t.Run("coerces float strings to float64", func(t *testing.T) {
		m := map[string]any{"score": "0.75"}
		CoerceNumericFields(m)
		if m["score"] != 0.75 {
			t.Errorf("expected 0.75, got %T %v", m["score"], m["score"])
		}
	})

	t.Run("recurses into nested maps", func(t *testing.T) {
		m := map[string]any{"meta": map[string]any{"count": "9"}}
		CoerceNumericFields(m)
		nested := m["meta"].(map[string]any)
		if nested["count"] != int64(9) {
			t.Errorf("expected int64(9), got %T %v", nested["count"], nested["count"])
		}
	})

	t.Run("leaves non-string values alone", func(t *testing.T) {
		m := map[string]any{"n": 5, "ok": true}
		CoerceNumericFields(m)
		if m["n"] != 5 || m["ok"] != true {
			t.Error("typed values must not change")
		}
	})
}

func TestRecordMap(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	record := &ImageRecord{
		ID:          1,
		URL:         "u",
		Hash:        "h",
		CreatedAt:   &ts,
		PostID:      10,
		Username:    "alice",
		WebURL:      "w",
		Tags:        []string{"a"},
		UserComment: "c",
	}

	m := record.Map()
	if m["createdAt"] != "2024-03-01T12:30:00Z" {
		t.Errorf("unexpected createdAt: %v", m["createdAt"])
	}
	if m["id"] != int64(1) {
		t.Errorf("expected int64 id, got %T", m["id"])
	}
}
