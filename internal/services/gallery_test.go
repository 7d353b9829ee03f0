package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"imagehound/internal/shared"
)

func TestGalleryService(t *testing.T) {
	t.Run("FetchPage", func(t *testing.T) {
		t.Run("decodes items and derives web urls", func(t *testing.T) {
			var gotQuery map[string]string
			var gotAuth string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotQuery = map[string]string{
					"limit": r.URL.Query().Get("limit"),
					"sort":  r.URL.Query().Get("sort"),
					"page":  r.URL.Query().Get("page"),
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"items": [
					{"id": "42", "url": "https://cdn.example.com/42.jpg", "hash": "h42", "createdAt": "2024-03-01T12:00:00Z", "postId": 420, "username": "alice"},
					{"id": 43, "url": "https://cdn.example.com/43.jpg", "hash": "h43", "createdAt": "2024-03-01T12:05:00Z", "postId": 430, "username": "bob"}
				]}`))
			}))
			defer server.Close()

			svc := NewGalleryService(shared.APIConfig{
				BaseURL:  server.URL,
				Key:      "secret-key",
				PageSize: 100,
			}, server.Client())

			items, err := svc.FetchPage(context.Background(), 3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if gotAuth != "Bearer secret-key" {
				t.Errorf("unexpected auth header: %q", gotAuth)
			}
			if gotQuery["limit"] != "100" || gotQuery["sort"] != "Newest" || gotQuery["page"] != "3" {
				t.Errorf("unexpected query: %v", gotQuery)
			}

			if len(items) != 2 {
				t.Fatalf("expected 2 items, got %d", len(items))
			}
			if items[0].ID != 42 || items[0].Username != "alice" {
				t.Errorf("unexpected first item: %+v", items[0])
			}
			if items[0].WebURL != server.URL+"/42" {
				t.Errorf("unexpected web url: %q", items[0].WebURL)
			}
			if items[1].WebURL != server.URL+"/43" {
				t.Errorf("unexpected web url: %q", items[1].WebURL)
			}
		})

		t.Run("returns an empty slice for an empty listing", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"items": []}`))
			}))
			defer server.Close()

			svc := NewGalleryService(shared.APIConfig{BaseURL: server.URL, PageSize: 10}, server.Client())
			items, err := svc.FetchPage(context.Background(), 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(items) != 0 {
				t.Errorf("expected empty page, got %d items", len(items))
			}
		})

		t.Run("wraps non-2xx responses", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer server.Close()

			svc := NewGalleryService(shared.APIConfig{BaseURL: server.URL, PageSize: 10}, server.Client())
			if _, err := svc.FetchPage(context.Background(), 1); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("wraps malformed payloads", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			}))
			defer server.Close()

			svc := NewGalleryService(shared.APIConfig{BaseURL: server.URL, PageSize: 10}, server.Client())
			if _, err := svc.FetchPage(context.Background(), 1); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("wraps transport failures", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			server.Close()

			svc := NewGalleryService(shared.APIConfig{BaseURL: server.URL, PageSize: 10}, nil)
			if _, err := svc.FetchPage(context.Background(), 1); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})
}
