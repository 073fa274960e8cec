package ecom

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"catalog-sync/core/apiclient"
	"catalog-sync/core/models"
	"catalog-sync/core/utils"
)

// Client talks to the product endpoints of one shop.
type Client struct {
	api    *apiclient.Client
	shopID string
}

// NewClient creates a client for creds.
func NewClient(creds *models.Credentials, cfg Config, opts ...apiclient.Option) (*Client, error) {
	if !creds.Valid() {
		return nil, fmt.Errorf("%w: ecom access token missing", models.ErrNoCredentials)
	}
	api := apiclient.New(string(models.BackendEcom), cfg.BaseURL, creds.AccessToken, cfg.Config, opts...)
	return &Client{api: api, shopID: creds.ShopID}, nil
}

// ShopID returns the shop the credentials belong to.
func (c *Client) ShopID() string { return c.shopID }

// SearchProducts lists products matching query.
func (c *Client) SearchProducts(ctx context.Context, query url.Values, limit int) ([]map[string]any, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	resp, err := c.api.Get(ctx, "products.json", q)
	if err != nil {
		return nil, err
	}
	return list(resp.Data["products"]), nil
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, id string) (map[string]any, error) {
	resp, err := c.api.Get(ctx, "products/"+id+".json", nil)
	if err != nil {
		return nil, err
	}
	p, ok := resp.Data["product"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, apiclient.ErrNotFound)
	}
	return p, nil
}

// UpdateProduct writes fields wrapped in a product object.
func (c *Client) UpdateProduct(ctx context.Context, id string, fields map[string]any) error {
	_, err := c.api.Put(ctx, "products/"+id+".json", map[string]any{"product": fields})
	return err
}

// Image is one product image.
type Image struct {
	ID        string
	Src       string
	SortOrder int
}

// Images lists the images of a product. A missing image list is empty.
func (c *Client) Images(ctx context.Context, id string) ([]Image, error) {
	resp, err := c.api.Get(ctx, "products/"+id+"/images.json", nil)
	if errors.Is(err, apiclient.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	raw := list(resp.Data["images"])
	images := make([]Image, 0, len(raw))
	for _, m := range raw {
		images = append(images, Image{
			ID:        utils.ToString(m["id"]),
			Src:       utils.ToString(m["src"]),
			SortOrder: utils.ToInt(m["sortOrder"]),
		})
	}
	return images, nil
}

// AddImage attaches an image by URL.
func (c *Client) AddImage(ctx context.Context, id, src string, sortOrder int) error {
	_, err := c.api.Post(ctx, "products/"+id+"/images.json", map[string]any{
		"image": map[string]any{"src": src, "sortOrder": sortOrder},
	})
	return err
}

// DeleteImage removes one image.
func (c *Client) DeleteImage(ctx context.Context, id, imageID string) error {
	_, err := c.api.Delete(ctx, "products/"+id+"/images/"+imageID+".json")
	return err
}

func list(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
