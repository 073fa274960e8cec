package retail

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"catalog-sync/core/apiclient"
	"catalog-sync/core/models"
	"catalog-sync/core/utils"
)

// Client talks to the item endpoints of one retail account.
type Client struct {
	api       *apiclient.Client
	accountID string
}

// NewClient creates a client for the account of creds.
func NewClient(creds *models.Credentials, cfg Config, opts ...apiclient.Option) (*Client, error) {
	if !creds.Valid() {
		return nil, fmt.Errorf("%w: retail access token missing", models.ErrNoCredentials)
	}
	if creds.AccountID == "" {
		return nil, fmt.Errorf("%w: retail account id missing", models.ErrNoCredentials)
	}
	api := apiclient.New(string(models.BackendRetail), cfg.BaseURL, creds.AccessToken, cfg.Config, opts...)
	return &Client{api: api, accountID: creds.AccountID}, nil
}

func (c *Client) itemsPath() string {
	return fmt.Sprintf("Account/%s/Item.json", c.accountID)
}

func (c *Client) itemPath(id string) string {
	return fmt.Sprintf("Account/%s/Item/%s.json", c.accountID, id)
}

// SearchItems lists items matching query. A limit of zero leaves the
// backend default.
func (c *Client) SearchItems(ctx context.Context, query url.Values, limit int) ([]map[string]any, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	resp, err := c.api.Get(ctx, c.itemsPath(), q)
	if err != nil {
		return nil, err
	}
	return items(resp.Data["Item"]), nil
}

// GetItem fetches one item by id.
func (c *Client) GetItem(ctx context.Context, id string) (map[string]any, error) {
	resp, err := c.api.Get(ctx, c.itemPath(id), nil)
	if err != nil {
		return nil, err
	}
	item, ok := resp.Data["Item"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, apiclient.ErrNotFound)
	}
	return item, nil
}

// UpdateItem writes fields to one item.
func (c *Client) UpdateItem(ctx context.Context, id string, fields map[string]any) error {
	_, err := c.api.Put(ctx, c.itemPath(id), fields)
	return err
}

// items normalizes the "Item" member, which is an object for a single
// result and a list otherwise.
func items(v any) []map[string]any {
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

func itemID(item map[string]any) string {
	return utils.ToString(item["itemID"])
}
