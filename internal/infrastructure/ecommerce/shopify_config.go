package ecommerce

import (
	"errors"
	"strings"
)

// ShopifyConfig holds configuration for the Shopify REST Admin API
type ShopifyConfig struct {
	// ShopDomain is the shop host, e.g. "example.myshopify.com". A value with
	// a scheme ("http://127.0.0.1:8080") is used as the base URL as is.
	ShopDomain string
	// AccessToken is the Admin API access token of a custom app
	AccessToken string
	// APIKey and Password authenticate a private app with HTTP basic auth
	APIKey   string
	Password string
	// APIVersion selects /admin/api/{version}; empty means the unversioned /admin path
	APIVersion string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// PageSize is the number of customers requested per page (max 250)
	PageSize int
	// MaxRetries is the number of retries after a 429 response
	MaxRetries int
}

const (
	// ShopifyDefaultAPIVersion is the API version used when none is configured
	ShopifyDefaultAPIVersion = "2024-01"
	// ShopifyMaxPageSize is the largest page Shopify returns
	ShopifyMaxPageSize = 250

	shopifyDefaultPageSize   = 50
	shopifyDefaultTimeout    = 30
	shopifyDefaultMaxRetries = 3
)

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingShopDomain = errors.New("shopify: shop domain is required")
	ErrShopifyConfigMissingCredential = errors.New("shopify: access token or api key and password are required")
)

// NewShopifyConfig creates a new Shopify configuration with defaults
func NewShopifyConfig(shopDomain, accessToken string) *ShopifyConfig {
	return &ShopifyConfig{
		ShopDomain:     shopDomain,
		AccessToken:    accessToken,
		APIVersion:     ShopifyDefaultAPIVersion,
		TimeoutSeconds: shopifyDefaultTimeout,
		PageSize:       shopifyDefaultPageSize,
		MaxRetries:     shopifyDefaultMaxRetries,
	}
}

// Validate validates the Shopify configuration and fills defaults
func (c *ShopifyConfig) Validate() error {
	if strings.TrimSpace(c.ShopDomain) == "" {
		return ErrShopifyConfigMissingShopDomain
	}
	if c.AccessToken == "" && (c.APIKey == "" || c.Password == "") {
		return ErrShopifyConfigMissingCredential
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = shopifyDefaultTimeout
	}
	if c.PageSize <= 0 {
		c.PageSize = shopifyDefaultPageSize
	}
	if c.PageSize > ShopifyMaxPageSize {
		c.PageSize = ShopifyMaxPageSize
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return nil
}

// UsesAccessToken reports whether requests authenticate with the access token header
func (c *ShopifyConfig) UsesAccessToken() bool {
	return c.AccessToken != ""
}

// BaseURL returns the Admin API root, e.g. https://example.myshopify.com/admin/api/2024-01
func (c *ShopifyConfig) BaseURL() string {
	host := strings.TrimRight(strings.TrimSpace(c.ShopDomain), "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	if c.APIVersion == "" {
		return host + "/admin"
	}
	return host + "/admin/api/" + c.APIVersion
}
