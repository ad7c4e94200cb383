package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ---------------------------------------------------------------------------
// Platform Errors
// ---------------------------------------------------------------------------

var (
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformNotEnabled      = errors.New("integration: platform not enabled")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")
	ErrPlatformQuotaExceeded   = errors.New("integration: platform quota exceeded")

	ErrInvalidRemoteCustomer = errors.New("integration: invalid remote customer")
	ErrInvalidRemoteAddress  = errors.New("integration: invalid remote address")
)

// PlatformError is returned for every non-2xx response from the platform.
// Its text starts with the HTTP status code, e.g. "402 Payment Required".
type PlatformError struct {
	StatusCode int
	Status     string
	Body       string
}

// NewPlatformError creates a PlatformError, filling Status from the code when empty
func NewPlatformError(statusCode int, status, body string) *PlatformError {
	if status == "" {
		status = http.StatusText(statusCode)
	}
	// net/http reports Status as "402 Payment Required"
	status = strings.TrimSpace(strings.TrimPrefix(status, fmt.Sprintf("%d", statusCode)))
	return &PlatformError{StatusCode: statusCode, Status: status, Body: body}
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Status)
}

// Is maps the status code onto the platform sentinel errors
func (e *PlatformError) Is(target error) bool {
	switch target {
	case ErrPlatformQuotaExceeded:
		return e.StatusCode == http.StatusPaymentRequired
	case ErrPlatformAuthFailed:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrPlatformRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrPlatformRequestFailed:
		switch e.StatusCode {
		case http.StatusPaymentRequired, http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return false
		}
		return true
	}
	return false
}

// IsQuotaExceeded reports whether err signals that the shop ran out of API quota.
// Such errors abort a sync run instead of being skipped.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrPlatformQuotaExceeded)
}

// ---------------------------------------------------------------------------
// Remote value objects
// ---------------------------------------------------------------------------

// RemoteAddress is a customer address as exchanged with Shopify
type RemoteAddress struct {
	ID       string `json:"id,omitempty"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
	Zip      string `json:"zip"`
	Phone    string `json:"phone,omitempty"`
}

// RemoteCustomer is a customer as listed by Shopify
type RemoteCustomer struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Addresses []RemoteAddress
	// Raw is the undecoded customer payload, kept for audit logs
	Raw []byte
}

// DisplayName returns "first last" when a first name is present (a missing
// last name leaves a trailing space), otherwise the email.
func (c *RemoteCustomer) DisplayName() string {
	if c.FirstName != "" {
		return c.FirstName + " " + c.LastName
	}
	return c.Email
}

// Validate checks the fields a mirrored customer cannot do without
func (c *RemoteCustomer) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRemoteCustomer)
	}
	return nil
}

// Payload returns the raw payload as text for audit logs
func (c *RemoteCustomer) Payload() string {
	return string(c.Raw)
}

// ---------------------------------------------------------------------------
// Requests / Responses
// ---------------------------------------------------------------------------

// CustomerListRequest requests one page of customers
type CustomerListRequest struct {
	PageSize int    `json:"page_size"`
	Cursor   string `json:"cursor,omitempty"`
}

// CustomerListResponse is one page of customers
type CustomerListResponse struct {
	Customers  []RemoteCustomer `json:"customers"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

// ---------------------------------------------------------------------------
// CustomerPlatform Port
// ---------------------------------------------------------------------------

// CustomerPlatform is the port for the Shopify customer API
type CustomerPlatform interface {
	// ListCustomers returns one page of customers. An empty cursor requests the first page.
	ListCustomers(ctx context.Context, req *CustomerListRequest) (*CustomerListResponse, error)

	// CreateCustomerAddress creates an address for a customer and returns it with its new ID
	CreateCustomerAddress(ctx context.Context, customerID string, address *RemoteAddress) (*RemoteAddress, error)

	// UpdateCustomerAddress updates the address identified by address.ID
	UpdateCustomerAddress(ctx context.Context, customerID string, address *RemoteAddress) (*RemoteAddress, error)
}
