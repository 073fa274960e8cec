package retail

import (
	"catalog-sync/core/apiclient"
	"catalog-sync/core/models"
)

// Config holds the retail backend settings.
type Config struct {
	// BaseURL is the API root, account paths are appended to it.
	BaseURL string `mapstructure:"base_url" default:"https://api.lightspeedapp.com/API/V3" validate:"required,url"`
	// AccessToken overrides the token file when set.
	AccessToken string `mapstructure:"access_token" default:""`
	// AccountID overrides the account of the token file when set.
	AccountID string `mapstructure:"account_id" default:""`

	apiclient.Config `mapstructure:",squash"`
}

// Credentials returns the configured credentials, possibly empty.
func (c Config) Credentials() models.Credentials {
	return models.Credentials{AccessToken: c.AccessToken, AccountID: c.AccountID}
}
