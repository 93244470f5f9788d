// Package client provides a Go HTTP client for the lacarta REST API.
//
// Client implements [github.com/lacarta/lacarta/pkg/editor.Authority], so a
// menu editor can run against a remote lacarta server exactly as it runs
// against a fake in tests. The remaining methods cover the back-office
// surface: menu lifecycle, catalog search, reservations, staff time tracking
// and invoices.
//
// All operations marshal requests and responses as JSON, carry the bearer
// token set with SetAuthToken, and surface non-2xx responses as errors that
// include the status code and response body.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lacarta/lacarta/pkg/editor"
	"github.com/lacarta/lacarta/pkg/models"
)

// Client provides strongly-typed access to the lacarta REST API. Instances
// are safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

var _ editor.Authority = (*Client)(nil)

// NewClient creates a new API client. The baseURL should include protocol and
// host without a trailing slash. The client uses a 30-second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetAuthToken sets the bearer token sent with every request.
func (c *Client) SetAuthToken(token string) {
	c.authToken = token
}

// doRequest performs an HTTP request with proper headers.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	return c.httpClient.Do(req)
}

// decodeResponse decodes the JSON response into the target struct.
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Health checks the health status of the server.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// Menu editing, the editor.Authority surface.

// CreateDraft creates a draft menu of the given kind and returns its id.
func (c *Client) CreateDraft(ctx context.Context, kind models.MenuKind) (int64, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/menus", map[string]string{"menu_type": string(kind)})
	if err != nil {
		return 0, err
	}

	var result models.Menu
	if err := decodeResponse(resp, &result); err != nil {
		return 0, err
	}

	return result.ID, nil
}

// GetMenu retrieves a menu with its full section tree.
func (c *Client) GetMenu(ctx context.Context, menuID int64) (*models.Menu, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/menus/%d", menuID), nil)
	if err != nil {
		return nil, err
	}

	var result models.Menu
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListMenus retrieves all menus, optionally including drafts.
func (c *Client) ListMenus(ctx context.Context, includeDrafts bool) ([]*models.Menu, error) {
	path := "/api/menus"
	if includeDrafts {
		path += "?drafts=true"
	}
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result []*models.Menu
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// PatchBasics replaces the flat scalar fields of a menu.
func (c *Client) PatchBasics(ctx context.Context, menuID int64, basics models.Basics) error {
	resp, err := c.doRequest(ctx, http.MethodPatch, fmt.Sprintf("/api/menus/%d/basics", menuID), basics)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}

// PutSections replaces the menu's section skeleton and returns the
// authoritative list in the order sent.
func (c *Client) PutSections(ctx context.Context, menuID int64, sections []models.Section) ([]models.Section, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/menus/%d/sections", menuID), sections)
	if err != nil {
		return nil, err
	}

	var result []models.Section
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// PutSectionDishes replaces one section's ordered dish list.
func (c *Client) PutSectionDishes(ctx context.Context, menuID, sectionID int64, dishes []models.Dish) ([]models.Dish, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/menus/%d/sections/%d/dishes", menuID, sectionID), dishes)
	if err != nil {
		return nil, err
	}

	var result []models.Dish
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// UpsertCatalogEntry creates or updates a shared catalog entry.
func (c *Client) UpsertCatalogEntry(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/catalog/dishes", entry)
	if err != nil {
		return models.CatalogEntry{}, err
	}

	var result models.CatalogEntry
	if err := decodeResponse(resp, &result); err != nil {
		return models.CatalogEntry{}, err
	}

	return result, nil
}

// SearchCatalog returns catalog entries whose title contains the query.
func (c *Client) SearchCatalog(ctx context.Context, query string, limit int) ([]models.CatalogEntry, error) {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/catalog/dishes"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result []models.CatalogEntry
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// Publish marks a draft menu as published.
func (c *Client) Publish(ctx context.Context, menuID int64) error {
	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/menus/%d/publish", menuID), nil)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}

// SetMenuActive toggles whether a menu is offered.
func (c *Client) SetMenuActive(ctx context.Context, menuID int64, active bool) error {
	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/menus/%d/active", menuID), map[string]bool{"active": active})
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}

// DeleteMenu removes a menu and its tree.
func (c *Client) DeleteMenu(ctx context.Context, menuID int64) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/menus/%d", menuID), nil)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}
