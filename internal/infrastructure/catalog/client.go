package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pharmalens/backend/internal/domain"
)

// Client handles communication with the catalog data service, the
// system of record for product data. The recognition flow only reads
// from it: the full name list per request, then a single record lookup.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new catalog data service client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// ListNames fetches every product name with its identifier. Called
// fresh on each recognition request so matches never run against a
// stale snapshot.
func (c *Client) ListNames(ctx context.Context) ([]domain.ProductNameEntry, error) {
	reqURL := fmt.Sprintf("%s/api/products/names", c.baseURL)

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var entries []domain.ProductNameEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: malformed name list: %v", domain.ErrCatalogUnavailable, err)
	}

	return entries, nil
}

// GetByName fetches the full record for an exact product name
func (c *Client) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	reqURL := fmt.Sprintf("%s/api/products/name/%s", c.baseURL, url.PathEscape(name))
	return c.getProduct(ctx, reqURL)
}

// GetByID fetches the full record for a product identifier
func (c *Client) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	reqURL := fmt.Sprintf("%s/api/products/%s", c.baseURL, url.PathEscape(productID))
	return c.getProduct(ctx, reqURL)
}

func (c *Client) getProduct(ctx context.Context, reqURL string) (*domain.Product, error) {
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("%w: malformed product record: %v", domain.ErrCatalogUnavailable, err)
	}

	return &product, nil
}

// get executes a GET request and maps status codes to domain errors
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	return body, nil
}
