package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tomnomnom/linkheader"
	"go.uber.org/zap"

	"github.com/erp/shopify-sync/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from the Shopify API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// defaultRetryAfter is the wait after a 429 response with no usable Retry-After header
const defaultRetryAfter = 2 * time.Second

// ErrShopifyInvalidCustomerID indicates a missing or malformed customer ID
var ErrShopifyInvalidCustomerID = errors.New("shopify: invalid customer ID")

// ShopifyAdapter implements CustomerPlatform for the Shopify REST Admin API
type ShopifyAdapter struct {
	config        *ShopifyConfig
	httpClient    *http.Client
	logger        *zap.Logger
	retryInterval time.Duration
}

// NewShopifyAdapter creates a new Shopify adapter with the given configuration
func NewShopifyAdapter(config *ShopifyConfig, logger *zap.Logger) (*ShopifyAdapter, error) {
	if config == nil {
		return nil, integration.ErrPlatformNotConfigured
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ShopifyAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger:        logger.Named("shopify"),
		retryInterval: defaultRetryAfter,
	}, nil
}

// ---------------------------------------------------------------------------
// Customer Operations
// ---------------------------------------------------------------------------

// ListCustomers returns one page of customers using cursor based pagination
func (a *ShopifyAdapter) ListCustomers(ctx context.Context, req *integration.CustomerListRequest) (*integration.CustomerListResponse, error) {
	pageSize := a.config.PageSize
	cursor := ""
	if req != nil {
		if req.PageSize > 0 {
			pageSize = min(req.PageSize, ShopifyMaxPageSize)
		}
		cursor = req.Cursor
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageSize))
	if cursor != "" {
		// Shopify rejects other filters alongside page_info
		query.Set("page_info", cursor)
	}

	var page ShopifyCustomersResponse
	header, err := a.doJSON(ctx, http.MethodGet, "/customers.json", query, nil, &page)
	if err != nil {
		return nil, err
	}

	customers := make([]integration.RemoteCustomer, 0, len(page.Customers))
	for _, raw := range page.Customers {
		var c ShopifyCustomer
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
		}
		customers = append(customers, c.toRemoteCustomer(raw))
	}

	next := nextPageInfo(header.Get("Link"))
	return &integration.CustomerListResponse{
		Customers:  customers,
		NextCursor: next,
		HasMore:    next != "",
	}, nil
}

// CreateCustomerAddress creates an address on the customer and returns it with its Shopify ID
func (a *ShopifyAdapter) CreateCustomerAddress(ctx context.Context, customerID string, address *integration.RemoteAddress) (*integration.RemoteAddress, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}
	if address == nil {
		return nil, integration.ErrInvalidRemoteAddress
	}

	path := fmt.Sprintf("/customers/%s/addresses.json", url.PathEscape(customerID))
	body := map[string]any{"address": addressPayload(address, false)}

	var resp ShopifyCustomerAddressResponse
	if _, err := a.doJSON(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.CustomerAddress.ID == "" {
		return nil, fmt.Errorf("%w: customer_address.id missing", integration.ErrPlatformInvalidResponse)
	}

	created := resp.CustomerAddress.toRemoteAddress()
	return &created, nil
}

// UpdateCustomerAddress updates the address identified by address.ID
func (a *ShopifyAdapter) UpdateCustomerAddress(ctx context.Context, customerID string, address *integration.RemoteAddress) (*integration.RemoteAddress, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}
	if address == nil || address.ID == "" {
		return nil, fmt.Errorf("%w: missing address id", integration.ErrInvalidRemoteAddress)
	}

	path := fmt.Sprintf("/customers/%s/addresses/%s.json", url.PathEscape(customerID), url.PathEscape(address.ID))
	body := map[string]any{"address": addressPayload(address, true)}

	var resp ShopifyCustomerAddressResponse
	if _, err := a.doJSON(ctx, http.MethodPut, path, nil, body, &resp); err != nil {
		return nil, err
	}

	updated := resp.CustomerAddress.toRemoteAddress()
	if updated.ID == "" {
		updated.ID = address.ID
	}
	return &updated, nil
}

// ---------------------------------------------------------------------------
// Generic requests
// ---------------------------------------------------------------------------

// Get sends a GET request and returns the decoded JSON body
func (a *ShopifyAdapter) Get(ctx context.Context, path string, query url.Values) (map[string]any, error) {
	var out map[string]any
	if _, err := a.doJSON(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Post sends body as JSON and returns the decoded JSON response
func (a *ShopifyAdapter) Post(ctx context.Context, path string, body any) (map[string]any, error) {
	var out map[string]any
	if _, err := a.doJSON(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Put sends body as JSON and returns the decoded JSON response
func (a *ShopifyAdapter) Put(ctx context.Context, path string, body any) (map[string]any, error) {
	var out map[string]any
	if _, err := a.doJSON(ctx, http.MethodPut, path, nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// HTTP Request Helper
// ---------------------------------------------------------------------------

// doJSON sends a request, retrying on 429, and decodes the response into out
func (a *ShopifyAdapter) doJSON(ctx context.Context, method, path string, query url.Values, body any, out any) (http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	endpoint := a.config.BaseURL() + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	attempt := 0
	operation := func() (http.Header, error) {
		attempt++
		respBody, header, status, err := a.doRequest(ctx, method, endpoint, payload)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		if status.code == http.StatusTooManyRequests {
			return nil, newRateLimitedError(status, respBody, header.Get("Retry-After"))
		}
		if status.code < 200 || status.code >= 300 {
			return nil, backoff.Permanent(integration.NewPlatformError(status.code, status.text, string(respBody)))
		}

		if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return nil, backoff.Permanent(fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err))
			}
		}
		return header, nil
	}

	header, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(a.retryInterval)),
		backoff.WithMaxTries(uint(a.config.MaxRetries)+1),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			a.logger.Warn("shopify rate limited, retrying",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("retry_after", wait),
			)
		}),
	)
	if err != nil {
		return nil, unwrapRetryError(err)
	}
	return header, nil
}

// rateLimitedError is a 429 response. wait carries the Retry-After delay
// when the response sent a usable one.
type rateLimitedError struct {
	platform *integration.PlatformError
	wait     *backoff.RetryAfterError
}

func newRateLimitedError(status responseStatus, body []byte, retryAfterHeader string) *rateLimitedError {
	e := &rateLimitedError{platform: integration.NewPlatformError(status.code, status.text, string(body))}
	if d, ok := retryAfter(retryAfterHeader); ok {
		e.wait = &backoff.RetryAfterError{Duration: d}
	}
	return e
}

func (e *rateLimitedError) Error() string { return e.platform.Error() }

func (e *rateLimitedError) Unwrap() []error {
	if e.wait == nil {
		return []error{e.platform}
	}
	return []error{e.platform, e.wait}
}

// unwrapRetryError strips the retry wrappers so callers see the
// PlatformError or transport error itself.
func unwrapRetryError(err error) error {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	var limited *rateLimitedError
	if errors.As(err, &limited) {
		return limited.platform
	}
	return err
}

type responseStatus struct {
	code int
	text string
}

// doRequest performs a single HTTP round trip
func (a *ShopifyAdapter) doRequest(ctx context.Context, method, endpoint string, payload []byte) ([]byte, http.Header, responseStatus, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, responseStatus{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.config.UsesAccessToken() {
		req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)
	} else {
		req.SetBasicAuth(a.config.APIKey, a.config.Password)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, responseStatus{}, ctxErr
		}
		return nil, nil, responseStatus{}, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	// Limit response body size to prevent memory exhaustion
	limitedReader := io.LimitReader(resp.Body, maxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, nil, responseStatus{}, fmt.Errorf("failed to read response: %w", err)
	}

	return body, resp.Header, responseStatus{code: resp.StatusCode, text: resp.Status}, nil
}

// ---------------------------------------------------------------------------
// Helper Functions
// ---------------------------------------------------------------------------

// nextPageInfo extracts the page_info cursor of the rel="next" link
func nextPageInfo(linkHeader string) string {
	for _, link := range linkheader.Parse(linkHeader).FilterByRel("next") {
		u, err := url.Parse(link.URL)
		if err != nil {
			return ""
		}
		return u.Query().Get("page_info")
	}
	return ""
}

// retryAfter parses a Retry-After header in (possibly fractional) seconds
func retryAfter(value string) (time.Duration, bool) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func validateCustomerID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrShopifyInvalidCustomerID
	}
	return nil
}

// Ensure ShopifyAdapter implements CustomerPlatform
var _ integration.CustomerPlatform = (*ShopifyAdapter)(nil)
