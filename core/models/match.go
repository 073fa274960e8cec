package models

import "time"

// Backend identifies one of the two partner systems.
type Backend string

const (
	// BackendRetail is the item-based retail backend.
	BackendRetail Backend = "retail"
	// BackendEcom is the product-based webshop backend.
	BackendEcom Backend = "ecom"
)

// Backends lists every supported backend in a stable order.
var Backends = []Backend{BackendRetail, BackendEcom}

// Match is the resolved identity of a SKU across both backends.
type Match struct {
	// SKU is the business key shared by both backends.
	SKU string `json:"sku"`

	// RetailID is the retail item ID. Empty when the SKU has no retail record.
	RetailID string `json:"retail_item_id,omitempty"`

	// EcomID is the eCom product ID. Empty when the SKU has no eCom record.
	EcomID string `json:"ecom_product_id,omitempty"`

	// LastResolved is when the lookup producing this match ran.
	LastResolved time.Time `json:"last_resolved"`

	// Unchecked lists backends that were not queried when the match was
	// resolved. Their empty IDs mean unknown rather than absent.
	Unchecked []Backend `json:"unchecked,omitempty"`
}

// ID returns the record ID for the given backend.
func (m Match) ID(b Backend) string {
	switch b {
	case BackendRetail:
		return m.RetailID
	case BackendEcom:
		return m.EcomID
	default:
		return ""
	}
}

// Has reports whether the match carries a record ID for the given backend.
func (m Match) Has(b Backend) bool {
	return m.ID(b) != ""
}

// WithID returns a copy of the match with the backend ID set.
func (m Match) WithID(b Backend, id string) Match {
	switch b {
	case BackendRetail:
		m.RetailID = id
	case BackendEcom:
		m.EcomID = id
	}
	return m
}

// Checked reports whether the backend was queried for this match.
func (m Match) Checked(b Backend) bool {
	for _, u := range m.Unchecked {
		if u == b {
			return false
		}
	}
	return true
}

// IsStale reports whether the match is older than maxAge at the given instant.
// A match that was never resolved is always stale.
func (m Match) IsStale(now time.Time, maxAge time.Duration) bool {
	if m.LastResolved.IsZero() {
		return true
	}
	return now.Sub(m.LastResolved) > maxAge
}

// Credentials is a bearer token plus the backend-specific account identifier.
// The sync core only reads credentials; refreshing them is the job of the
// auth tooling that writes them.
type Credentials struct {
	// AccessToken is sent as a bearer token.
	AccessToken string `json:"access_token" mapstructure:"access_token"`

	// AccountID is the retail account identifier.
	AccountID string `json:"account_id,omitempty" mapstructure:"account_id"`

	// ShopID is the eCom shop identifier.
	ShopID string `json:"shop_id,omitempty" mapstructure:"shop_id"`

	// ExpiresAt is the unix expiry of the access token, zero when unknown.
	ExpiresAt int64 `json:"expires_at,omitempty" mapstructure:"expires_at"`
}

// Valid reports whether the credentials carry a token.
func (c *Credentials) Valid() bool {
	return c != nil && c.AccessToken != ""
}

// Expired reports whether the token expires within five minutes of now.
func (c *Credentials) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == 0 {
		return false
	}
	return now.Unix() > c.ExpiresAt-300
}
