package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"imagehound/internal/models"
	"imagehound/internal/shared"
)

// GalleryService provides paginated access to the remote image listing API.
type GalleryService struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
}

// NewGalleryService creates a new gallery listing client.
func NewGalleryService(cfg shared.APIConfig, client *http.Client) *GalleryService {
	if client == nil {
		client = http.DefaultClient
	}

	return &GalleryService{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.Key,
		pageSize:   cfg.PageSize,
		httpClient: client,
	}
}

// FetchPage retrieves the ordered listing items for the given page, newest
// first, and attaches the derived web URL to each item.
func (g *GalleryService) FetchPage(ctx context.Context, page int) ([]models.ListingItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	query := req.URL.Query()
	query.Set("limit", strconv.Itoa(g.pageSize))
	query.Set("sort", "Newest")
	query.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = query.Encode()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var payload struct {
		Items []models.ListingItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode listing: %v", shared.ErrAPIRequest, err)
	}

	for i := range payload.Items {
		payload.Items[i].WebURL = fmt.Sprintf("%s/%d", g.baseURL, int64(payload.Items[i].ID))
	}

	return payload.Items, nil
}
