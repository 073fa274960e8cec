package ecom

import (
	"catalog-sync/core/apiclient"
	"catalog-sync/core/models"
)

// Config holds the eCom backend settings.
type Config struct {
	// BaseURL is the API root including the language segment.
	BaseURL string `mapstructure:"base_url" default:"https://api.webshopapp.com/en" validate:"required,url"`
	// AccessToken overrides the token file when set.
	AccessToken string `mapstructure:"access_token" default:""`
	// ShopID overrides the shop of the token file when set.
	ShopID string `mapstructure:"shop_id" default:""`
	// ImageMode is the default image update mode.
	ImageMode string `mapstructure:"image_mode" default:"append" validate:"oneof=append replace skip"`

	apiclient.Config `mapstructure:",squash"`
}

// Credentials returns the configured credentials, possibly empty.
func (c Config) Credentials() models.Credentials {
	return models.Credentials{AccessToken: c.AccessToken, ShopID: c.ShopID}
}
