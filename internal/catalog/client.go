package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client reads the catalog over HTTP.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

// GetProduct looks a product up through the /api/products/{id} boundary.
func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	err := c.getJSON(ctx, "/api/products/"+url.PathEscape(id), nil, &p)
	return p, err
}

func (c *Client) List(ctx context.Context, crit Criteria) ([]Product, error) {
	q := url.Values{}
	q.Set("minPrice", strconv.FormatFloat(crit.MinPrice, 'f', -1, 64))
	if !math.IsInf(crit.MaxPrice, 1) {
		q.Set("maxPrice", strconv.FormatFloat(crit.MaxPrice, 'f', -1, 64))
	}
	q.Set("inStock", strconv.FormatBool(crit.InStock))
	if crit.Seller != "" {
		q.Set("seller", crit.Seller)
	}
	if crit.Category != "" {
		q.Set("category", crit.Category)
	}

	var out []Product
	err := c.getJSON(ctx, "/products", q, &out)
	return out, err
}

func (c *Client) Search(ctx context.Context, term string, limit int) ([]Product, error) {
	q := url.Values{"q": {term}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out []Product
	err := c.getJSON(ctx, "/products/search", q, &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return errors.Join(ErrBadStatus, err)
	}
	return nil
}
