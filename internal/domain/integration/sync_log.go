package integration

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SyncLogStatus represents the outcome recorded by a sync log entry
type SyncLogStatus string

const (
	SyncLogStatusQueued  SyncLogStatus = "Queued"
	SyncLogStatusSuccess SyncLogStatus = "Success"
	SyncLogStatusError   SyncLogStatus = "Error"
)

// String returns the string representation of SyncLogStatus
func (s SyncLogStatus) String() string {
	return string(s)
}

// Sync log methods
const (
	MethodCreateCustomer        = "create_customer"
	MethodCreateCustomerAddress = "create_customer_address"
	MethodSyncCustomers         = "sync_customers"
	MethodUpdateAddressDetails  = "update_address_details"
)

// MaxLogTitleLength is the width of the shopify_logs.title column, in characters
const MaxLogTitleLength = 255

// TruncateLogTitle cuts title to MaxLogTitleLength characters
func TruncateLogTitle(title string) string {
	if utf8.RuneCountInString(title) <= MaxLogTitleLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:MaxLogTitleLength])
}

// SyncLogEntry is one audit record of the Shopify integration
type SyncLogEntry struct {
	ID          uuid.UUID
	Title       string
	Status      SyncLogStatus
	Method      string
	Message     string
	RequestData string
	Exception   bool
	CreatedAt   time.Time
}

// NewErrorLogEntry creates an error entry titled with the error text. The
// full text stays in message.
func NewErrorLogEntry(method string, err error, message, requestData string) SyncLogEntry {
	title := ""
	if err != nil {
		title = TruncateLogTitle(err.Error())
	}
	return SyncLogEntry{
		ID:          uuid.New(),
		Title:       title,
		Status:      SyncLogStatusError,
		Method:      method,
		Message:     message,
		RequestData: requestData,
		Exception:   true,
		CreatedAt:   time.Now(),
	}
}

// SyncLogRepository defines the interface for sync log persistence
type SyncLogRepository interface {
	// Save inserts a log entry
	Save(ctx context.Context, entry *SyncLogEntry) error

	// FindRecent returns the newest entries first
	FindRecent(ctx context.Context, limit int) ([]SyncLogEntry, error)
}

// AuditLogger records sync log entries. Log never fails the caller.
type AuditLogger interface {
	Log(ctx context.Context, entry SyncLogEntry)
}
